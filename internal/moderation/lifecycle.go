// internal/moderation/lifecycle.go
// Report creation and status transitions. Any status may follow any other so
// moderators can reopen or correct a decision; nothing moves on its own.

package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
)

// ParseStatus accepts the four status names, ignoring case and surrounding space
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// NewReport builds a report in NEEDS_REVIEW. rawSeverity goes through
// trust.NormalizeSeverity, so anything non-numeric becomes severity 1.
func NewReport(reporterID, reportedID int64, reason string, rawSeverity any, contextNote *string, now time.Time) (*Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfReport
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	return &Report{
		ReporterID:  reporterID,
		ReportedID:  reportedID,
		Reason:      reason,
		ContextNote: trimmedOrNil(contextNote),
		Severity:    trust.NormalizeSeverityDefault(rawSeverity),
		Status:      StatusNeedsReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Valid reports whether s is one of the four workflow statuses
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ApplyStatus moves the report to status on behalf of moderatorID and returns
// the previous status. A nil note keeps the current resolution note; a blank
// one clears it.
func (r *Report) ApplyStatus(status Status, note *string, moderatorID int64, now time.Time) (Status, error) {
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, string(status))
	}

	previous := r.Status
	r.Status = status
	if note != nil {
		r.ResolutionNote = trimmedOrNil(note)
	}
	r.LastModeratorID = &moderatorID
	r.UpdatedAt = now
	return previous, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
