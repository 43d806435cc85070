// internal/moderation/service.go

package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/lock"
	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	// reportedUsersThreshold is the report count that puts a user in the review queue
	reportedUsersThreshold = 3
)

type ReportService interface {
	// SubmitReport files a report and immediately deducts trust from the reported user
	SubmitReport(ctx context.Context, reporterID int64, req *SubmitReportRequest) (*SubmitReportResult, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	ListReports(ctx context.Context, filter ReportFilter) (*ReportPage, error)
	ReportedUsers(ctx context.Context) ([]*ReportedUser, error)
	ActionHistory(ctx context.Context, userID int64, limit int) ([]*ModerationAction, error)
}

type reportService struct {
	users  users.Repository
	repo   Repository
	locker lock.Locker
	events Publisher
	window time.Duration
	now    func() time.Time
}

// NewReportService wires the reporting flow. events may be nil.
func NewReportService(usersRepo users.Repository, repo Repository, locker lock.Locker, events Publisher, window time.Duration) ReportService {
	if events == nil {
		events = nopPublisher{}
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &reportService{
		users:  usersRepo,
		repo:   repo,
		locker: locker,
		events: events,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) SubmitReport(ctx context.Context, reporterID int64, req *SubmitReportRequest) (*SubmitReportResult, error) {
	report, err := NewReport(reporterID, req.ReportedID, req.Reason, req.Severity, req.ContextNote, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, reporterID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.UserKey(req.ReportedID))
	if err != nil {
		conflict(err, "user")
		return nil, err
	}
	defer unlock()

	reported, err := s.users.GetByID(ctx, req.ReportedID)
	if err != nil {
		return nil, err
	}

	deduction := trust.ApplyDeduction(float64(reported.TrustScore), report.Severity)
	reported.TrustScore = deduction.NextScore

	if err := s.repo.CreateReportWithDeduction(ctx, report, reported); err != nil {
		conflict(err, "user")
		return nil, err
	}

	reportsSubmitted.Inc()
	trustDeductions.Observe(float64(deduction.Deduction))

	log.Info().
		Int64("report_id", report.ID).
		Int64("reporter_id", reporterID).
		Int64("reported_id", report.ReportedID).
		Int("severity", report.Severity).
		Int("deduction", deduction.Deduction).
		Int("next_trust_score", deduction.NextScore).
		Msg("Report submitted")

	s.events.Publish(Event{Type: EventReportCreated, Data: report})

	return &SubmitReportResult{
		Report:         report,
		Deduction:      deduction.Deduction,
		NextTrustScore: deduction.NextScore,
	}, nil
}

func (s *reportService) GetReport(ctx context.Context, id int64) (*Report, error) {
	return s.repo.GetReport(ctx, id)
}

func (s *reportService) ListReports(ctx context.Context, filter ReportFilter) (*ReportPage, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	reports, total, err := s.repo.ListReports(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ReportPage{Reports: reports, Total: total, Offset: filter.Offset, Limit: filter.Limit}, nil
}

func (s *reportService) ReportedUsers(ctx context.Context) ([]*ReportedUser, error) {
	return s.repo.ReportedUsers(ctx, s.now().Add(-s.window), reportedUsersThreshold, maxPageSize)
}

func (s *reportService) ActionHistory(ctx context.Context, userID int64, limit int) ([]*ModerationAction, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListActions(ctx, userID, limit)
}

// conflict counts lost races and lock timeouts
func conflict(err error, entity string) {
	if errors.Is(err, apperr.ErrConflict) {
		conflictsTotal.WithLabelValues(entity).Inc()
	}
}
