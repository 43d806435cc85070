// internal/moderation/models.go

package moderation

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Status is where a report sits in the review workflow
type Status string

const (
	StatusNeedsReview      Status = "NEEDS_REVIEW"
	StatusUnderReview      Status = "UNDER_REVIEW"
	StatusResolvedAction   Status = "RESOLVED_ACTION"
	StatusResolvedNoAction Status = "RESOLVED_NO_ACTION"
)

// Statuses lists every accepted status in workflow order
var Statuses = []Status{
	StatusNeedsReview,
	StatusUnderReview,
	StatusResolvedAction,
	StatusResolvedNoAction,
}

// Open reports still need a moderator
func (s Status) Open() bool {
	return s == StatusNeedsReview || s == StatusUnderReview
}

type Report struct {
	ID              int64     `json:"id" db:"id"`
	ReporterID      int64     `json:"reporter_id" db:"reporter_id"`
	ReportedID      int64     `json:"reported_id" db:"reported_id"`
	Reason          string    `json:"reason" db:"reason"`
	ContextNote     *string   `json:"context_note,omitempty" db:"context_note"`
	Severity        int       `json:"severity" db:"severity"`
	Status          Status    `json:"status" db:"status"`
	ResolutionNote  *string   `json:"resolution_note" db:"resolution_note"`
	LastModeratorID *int64    `json:"last_moderator_id" db:"last_moderator_id"`
	Version         int64     `json:"-" db:"version"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Action names stored in moderation_actions
const (
	ActionReportStatus = "report_status"
	ActionTrustAdjust  = "trust_adjust"
	ActionBan          = "ban"
	ActionUnban        = "unban"
)

// ModerationAction is an append-only audit row, written only when a
// moderation action actually changed something.
type ModerationAction struct {
	ID           int64          `json:"id" db:"id"`
	Action       string         `json:"action" db:"action"`
	ModeratorID  int64          `json:"moderator_id" db:"moderator_id"`
	TargetUserID *int64         `json:"target_user_id,omitempty" db:"target_user_id"`
	ReportID     *int64         `json:"report_id,omitempty" db:"report_id"`
	Detail       types.JSONText `json:"detail" db:"detail"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// ReportedUser is a row of the admin review queue
type ReportedUser struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	Username    string         `json:"username" db:"username"`
	TrustScore  int            `json:"trust_score" db:"trust_score"`
	Banned      bool           `json:"banned" db:"banned"`
	ReportCount int            `json:"report_count" db:"report_count"`
	OpenReports int            `json:"open_reports" db:"open_reports"`
	MaxSeverity int            `json:"max_severity" db:"max_severity"`
	Reasons     pq.StringArray `json:"reasons" db:"reasons"`
	LastReport  time.Time      `json:"last_report" db:"last_report"`
}

// ReportFilter narrows the admin report listing
type ReportFilter struct {
	Status     *Status
	ReportedID *int64
	Offset     int
	Limit      int
}

// ReportPage is one page of the admin report listing
type ReportPage struct {
	Reports []*Report `json:"reports"`
	Total   int       `json:"total"`
	Offset  int       `json:"offset"`
	Limit   int       `json:"limit"`
}

// SubmitReportResult is returned to the reporter's client
type SubmitReportResult struct {
	Report         *Report `json:"report"`
	Deduction      int     `json:"deduction"`
	NextTrustScore int     `json:"next_trust_score"`
}

// TrustResult is the outcome of a manual trust adjustment
type TrustResult struct {
	UserID     int64 `json:"user_id"`
	TrustScore int   `json:"trust_score"`
	Changed    bool  `json:"changed"`
}
