package moderation

import (
	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
)

// SubmitReportRequest is the body of POST /reports. Severity stays untyped
// until trust.NormalizeSeverity coerces it.
type SubmitReportRequest struct {
	ReportedID  int64   `json:"reported_id" validate:"required,gt=0"`
	Reason      string  `json:"reason" validate:"required,max=500"`
	Severity    any     `json:"severity"`
	ContextNote *string `json:"context_note" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	ResolutionNote *string `json:"resolution_note" validate:"omitempty,max=2000"`
}

type AdjustTrustRequest struct {
	Delta *int `json:"delta"`
	SetTo *int `json:"set_to"`
}

func (r *AdjustTrustRequest) adjustment() trust.Adjustment {
	return trust.Adjustment{Delta: r.Delta, SetTo: r.SetTo}
}

type BanRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}
