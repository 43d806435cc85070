package moderation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-nearby/internal/users"
)

// MemoryRepository keeps reports and audit rows in process. It backs tests
// and the STORE=memory development mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   users.Repository
	reports map[int64]*Report
	actions []*ModerationAction
	nextID  int64
}

func NewMemoryRepository(usersRepo users.Repository) *MemoryRepository {
	return &MemoryRepository{
		users:   usersRepo,
		reports: make(map[int64]*Report),
	}
}

func (r *MemoryRepository) CreateReportWithDeduction(ctx context.Context, report *Report, reported *users.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.users.GetByID(ctx, report.ReporterID); err != nil {
		return err
	}
	if err := r.users.UpdateTrustScore(ctx, reported); err != nil {
		return err
	}

	r.nextID++
	report.ID = r.nextID
	report.Version = 0
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetReport(ctx context.Context, id int64) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *report
	return &cp, nil
}

func (r *MemoryRepository) UpdateReportStatus(ctx context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reports[report.ID]
	if !ok {
		return ErrReportNotFound
	}
	if stored.Version != report.Version {
		return ErrReportVersionMismatch
	}

	report.Version++
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *MemoryRepository) ListReports(ctx context.Context, filter ReportFilter) ([]*Report, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Report
	for _, report := range r.reports {
		if filter.Status != nil && report.Status != *filter.Status {
			continue
		}
		if filter.ReportedID != nil && report.ReportedID != *filter.ReportedID {
			continue
		}
		cp := *report
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && filter.Limit < end-start {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, report := range r.reports {
		counts[report.Status]++
	}
	return counts, nil
}

func (r *MemoryRepository) ReportedUsers(ctx context.Context, since time.Time, minReports, limit int) ([]*ReportedUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := make(map[int64]*ReportedUser)
	reasons := make(map[int64]map[string]struct{})
	for _, report := range r.reports {
		if !report.CreatedAt.After(since) {
			continue
		}
		ru, ok := byUser[report.ReportedID]
		if !ok {
			u, err := r.users.GetByID(ctx, report.ReportedID)
			if err != nil {
				return nil, err
			}
			ru = &ReportedUser{UserID: u.ID, Username: u.Username, TrustScore: u.TrustScore, Banned: u.Banned}
			byUser[report.ReportedID] = ru
			reasons[report.ReportedID] = make(map[string]struct{})
		}
		ru.ReportCount++
		if report.Status.Open() {
			ru.OpenReports++
		}
		if report.Severity > ru.MaxSeverity {
			ru.MaxSeverity = report.Severity
		}
		if report.CreatedAt.After(ru.LastReport) {
			ru.LastReport = report.CreatedAt
		}
		reasons[report.ReportedID][report.Reason] = struct{}{}
	}

	out := []*ReportedUser{}
	for id, ru := range byUser {
		if ru.ReportCount < minReports {
			continue
		}
		for reason := range reasons[id] {
			ru.Reasons = append(ru.Reasons, reason)
		}
		sort.Strings(ru.Reasons)
		out = append(out, ru)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportCount != out[j].ReportCount {
			return out[i].ReportCount > out[j].ReportCount
		}
		if !out[i].LastReport.Equal(out[j].LastReport) {
			return out[i].LastReport.After(out[j].LastReport)
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) RecordAction(ctx context.Context, action *ModerationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	action.ID = int64(len(r.actions) + 1)
	action.CreatedAt = time.Now().UTC()
	cp := *action
	r.actions = append(r.actions, &cp)
	return nil
}

func (r *MemoryRepository) ListActions(ctx context.Context, targetUserID int64, limit int) ([]*ModerationAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*ModerationAction{}
	for i := len(r.actions) - 1; i >= 0; i-- {
		a := r.actions[i]
		if a.TargetUserID == nil || *a.TargetUserID != targetUserID {
			continue
		}
		cp := *a
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
