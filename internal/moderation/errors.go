package moderation

import (
	"fmt"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

var (
	ErrReportNotFound        = fmt.Errorf("report %w", apperr.ErrNotFound)
	ErrSelfReport            = fmt.Errorf("%w: cannot report yourself", apperr.ErrSelfAction)
	ErrSelfBan               = fmt.Errorf("%w: cannot ban or unban yourself", apperr.ErrSelfAction)
	ErrInvalidStatus         = fmt.Errorf("%w: unknown report status", apperr.ErrValidation)
	ErrReasonRequired        = fmt.Errorf("%w: reason is required", apperr.ErrValidation)
	ErrNotAdmin              = fmt.Errorf("moderation: %w", apperr.ErrForbidden)
	ErrReportVersionMismatch = fmt.Errorf("report changed concurrently: %w", apperr.ErrConflict)
)
