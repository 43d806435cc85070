// internal/moderation/repository.go

package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

type Repository interface {
	// CreateReportWithDeduction inserts report and stores reported's new trust
	// score in one transaction. The user write is a version compare-and-swap.
	CreateReportWithDeduction(ctx context.Context, report *Report, reported *users.UserProfile) error

	GetReport(ctx context.Context, id int64) (*Report, error)
	// UpdateReportStatus is a compare-and-swap on report.Version
	UpdateReportStatus(ctx context.Context, report *Report) error
	ListReports(ctx context.Context, filter ReportFilter) ([]*Report, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// ReportedUsers returns users with at least minReports reports since since
	ReportedUsers(ctx context.Context, since time.Time, minReports, limit int) ([]*ReportedUser, error)

	RecordAction(ctx context.Context, action *ModerationAction) error
	ListActions(ctx context.Context, targetUserID int64, limit int) ([]*ModerationAction, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const reportColumns = `
    id, reporter_id, reported_id, reason, context_note, severity, status,
    resolution_note, last_moderator_id, version, created_at, updated_at`

// foreign_key_violation
const pqForeignKeyViolation = "23503"

func (r *postgresRepository) CreateReportWithDeduction(ctx context.Context, report *Report, reported *users.UserProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
        UPDATE users
        SET trust_score = $2, version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $3
        RETURNING version, updated_at
    `, reported.ID, reported.TrustScore, reported.Version).Scan(&reported.Version, &reported.UpdatedAt)
	if err == sql.ErrNoRows {
		return users.ErrVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("deduct trust for user %d: %w", reported.ID, err)
	}

	err = tx.QueryRowxContext(ctx, `
        INSERT INTO reports (reporter_id, reported_id, reason, context_note, severity, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, version
    `,
		report.ReporterID, report.ReportedID, report.Reason, report.ContextNote,
		report.Severity, report.Status, report.CreatedAt, report.UpdatedAt,
	).Scan(&report.ID, &report.Version)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return users.ErrUserNotFound
		}
		return fmt.Errorf("insert report: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) GetReport(ctx context.Context, id int64) (*Report, error) {
	var report Report
	err := r.db.GetContext(ctx, &report, `SELECT`+reportColumns+` FROM reports WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}
	return &report, nil
}

func (r *postgresRepository) UpdateReportStatus(ctx context.Context, report *Report) error {
	query := `
        UPDATE reports
        SET status = $2, resolution_note = $3, last_moderator_id = $4,
            updated_at = $5, version = version + 1
        WHERE id = $1 AND version = $6
        RETURNING version
    `

	err := r.db.QueryRowxContext(
		ctx, query,
		report.ID, report.Status, report.ResolutionNote, report.LastModeratorID,
		report.UpdatedAt, report.Version,
	).Scan(&report.Version)
	if err == sql.ErrNoRows {
		return ErrReportVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("update report %d: %w", report.ID, err)
	}
	return nil
}

func (r *postgresRepository) ListReports(ctx context.Context, filter ReportFilter) ([]*Report, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ReportedID != nil {
		args = append(args, *filter.ReportedID)
		where = append(where, fmt.Sprintf("reported_id = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT` + reportColumns + ` FROM reports` + clause +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	reports := []*Report{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	return reports, total, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM reports GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count reports by status: %w", err)
	}

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *postgresRepository) ReportedUsers(ctx context.Context, since time.Time, minReports, limit int) ([]*ReportedUser, error) {
	query := `
        SELECT
            u.id AS user_id,
            u.username,
            u.trust_score,
            u.banned,
            COUNT(r.id) AS report_count,
            COUNT(r.id) FILTER (WHERE r.status IN ('NEEDS_REVIEW', 'UNDER_REVIEW')) AS open_reports,
            MAX(r.severity) AS max_severity,
            array_agg(DISTINCT r.reason) AS reasons,
            MAX(r.created_at) AS last_report
        FROM users u
        JOIN reports r ON u.id = r.reported_id
        WHERE r.created_at > $1
        GROUP BY u.id, u.username, u.trust_score, u.banned
        HAVING COUNT(r.id) >= $2
        ORDER BY COUNT(r.id) DESC, MAX(r.created_at) DESC, u.id
        LIMIT $3
    `

	reported := []*ReportedUser{}
	if err := r.db.SelectContext(ctx, &reported, query, since, minReports, limit); err != nil {
		return nil, fmt.Errorf("list reported users: %w", err)
	}
	return reported, nil
}

func (r *postgresRepository) RecordAction(ctx context.Context, action *ModerationAction) error {
	query := `
        INSERT INTO moderation_actions (action, moderator_id, target_user_id, report_id, detail)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	return r.db.QueryRowxContext(
		ctx, query,
		action.Action, action.ModeratorID, action.TargetUserID, action.ReportID, action.Detail,
	).Scan(&action.ID, &action.CreatedAt)
}

func (r *postgresRepository) ListActions(ctx context.Context, targetUserID int64, limit int) ([]*ModerationAction, error) {
	query := `
        SELECT id, action, moderator_id, target_user_id, report_id, detail, created_at
        FROM moderation_actions
        WHERE target_user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `

	actions := []*ModerationAction{}
	if err := r.db.SelectContext(ctx, &actions, query, targetUserID, limit); err != nil {
		return nil, fmt.Errorf("list actions for user %d: %w", targetUserID, err)
	}
	return actions, nil
}
