package moderation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-nearby/internal/trust"
)

func intPtr(v int) *int { return &v }

func submit(t *testing.T, f *fixture, severity any) *Report {
	t.Helper()
	result, err := f.reports.SubmitReport(context.Background(), reporterID, &SubmitReportRequest{
		ReportedID: reportedID,
		Reason:     "spam",
		Severity:   severity,
	})
	require.NoError(t, err)
	return result.Report
}

func TestDispatcherRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := submit(t, f, 1)

	_, err := f.dispatcher.UpdateReportStatus(ctx, nonAdmin, report.ID, "UNDER_REVIEW", nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.dispatcher.AdjustTrust(ctx, nonAdmin, reportedID, trust.Adjustment{Delta: intPtr(5)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.dispatcher.BanUser(ctx, nonAdmin, reportedID, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.dispatcher.UnbanUser(ctx, nonAdmin, reportedID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	actions, err := f.repo.ListActions(ctx, reportedID, 0)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestUpdateReportStatusAnyToAny(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := submit(t, f, 1)

	steps := []struct {
		raw  string
		want Status
	}{
		{"RESOLVED_ACTION", StatusResolvedAction},
		{" needs_review ", StatusNeedsReview},
		{"resolved_no_action", StatusResolvedNoAction},
		{"UNDER_REVIEW", StatusUnderReview},
	}
	for _, step := range steps {
		updated, err := f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, step.raw, nil)
		require.NoError(t, err, step.raw)
		assert.Equal(t, step.want, updated.Status)
		require.NotNil(t, updated.LastModeratorID)
		assert.Equal(t, adminID, *updated.LastModeratorID)
	}

	stored, err := f.repo.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, stored.Status)

	actions, err := f.repo.ListActions(ctx, reportedID, 0)
	require.NoError(t, err)
	assert.Len(t, actions, len(steps))
	assert.Equal(t, ActionReportStatus, actions[0].Action)
	require.NotNil(t, actions[0].ReportID)
	assert.Equal(t, report.ID, *actions[0].ReportID)
}

func TestUpdateReportStatusNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := submit(t, f, 1)

	updated, err := f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, "RESOLVED_ACTION", strPtr("  warned  "))
	require.NoError(t, err)
	require.NotNil(t, updated.ResolutionNote)
	assert.Equal(t, "warned", *updated.ResolutionNote)

	updated, err = f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, "UNDER_REVIEW", nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolutionNote)
	assert.Equal(t, "warned", *updated.ResolutionNote)

	updated, err = f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, "UNDER_REVIEW", strPtr(" "))
	require.NoError(t, err)
	assert.Nil(t, updated.ResolutionNote)
}

func TestUpdateReportStatusErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := submit(t, f, 1)

	_, err := f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, "CLOSED", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.dispatcher.UpdateReportStatus(ctx, admin, 999, "UNDER_REVIEW", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := f.repo.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsReview, stored.Status)
}

func TestAdjustTrust(t *testing.T) {
	tests := []struct {
		name    string
		adj     trust.Adjustment
		want    int
		changed bool
		err     error
	}{
		{"negative delta", trust.Adjustment{Delta: intPtr(-30)}, 70, true, nil},
		{"delta clamps high", trust.Adjustment{Delta: intPtr(500)}, 100, false, nil},
		{"delta clamps low", trust.Adjustment{Delta: intPtr(-500)}, 0, true, nil},
		{"set to", trust.Adjustment{SetTo: intPtr(42)}, 42, true, nil},
		{"set to clamps", trust.Adjustment{SetTo: intPtr(-3)}, 0, true, nil},
		{"set to same", trust.Adjustment{SetTo: intPtr(100)}, 100, false, nil},
		{"both", trust.Adjustment{Delta: intPtr(1), SetTo: intPtr(1)}, 0, false, apperr.ErrValidation},
		{"neither", trust.Adjustment{}, 0, false, apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			result, err := f.dispatcher.AdjustTrust(ctx, admin, reportedID, tt.adj)
			actions, listErr := f.repo.ListActions(ctx, reportedID, 0)
			require.NoError(t, listErr)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, actions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.TrustScore)
			assert.Equal(t, tt.changed, result.Changed)

			u, err := f.users.GetByID(ctx, reportedID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.TrustScore)

			if tt.changed {
				require.Len(t, actions, 1)
				assert.Equal(t, ActionTrustAdjust, actions[0].Action)
				assert.Equal(t, adminID, actions[0].ModeratorID)

				var detail map[string]interface{}
				require.NoError(t, json.Unmarshal(actions[0].Detail, &detail))
				assert.EqualValues(t, 100, detail["from"])
				assert.EqualValues(t, tt.want, detail["to"])
				assert.Equal(t, []string{EventTrustAdjusted}, f.events.types())
			} else {
				assert.Empty(t, actions)
				assert.Empty(t, f.events.types())
			}
		})
	}
}

func TestAdjustTrustUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatcher.AdjustTrust(context.Background(), admin, 404, trust.Adjustment{Delta: intPtr(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustTrustLeavesReportsAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	report := submit(t, f, 3)

	_, err := f.dispatcher.AdjustTrust(ctx, admin, reportedID, trust.Adjustment{SetTo: intPtr(100)})
	require.NoError(t, err)

	stored, err := f.repo.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsReview, stored.Status)
	assert.Equal(t, report.Version, stored.Version)

	// and resolving a report does not restore trust
	_, err = f.dispatcher.AdjustTrust(ctx, admin, reportedID, trust.Adjustment{SetTo: intPtr(50)})
	require.NoError(t, err)
	_, err = f.dispatcher.UpdateReportStatus(ctx, admin, report.ID, "RESOLVED_NO_ACTION", nil)
	require.NoError(t, err)

	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.Equal(t, 50, u.TrustScore)
}

func TestConcurrentAdjustTrust(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.dispatcher.AdjustTrust(ctx, admin, reportedID, trust.Adjustment{Delta: intPtr(-2)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.Equal(t, 100-2*n, u.TrustScore)

	actions, err := f.repo.ListActions(ctx, reportedID, 0)
	require.NoError(t, err)
	assert.Len(t, actions, n)
}

func TestBanUnbanIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	state, err := f.dispatcher.BanUser(ctx, admin, reportedID, strPtr("scam"))
	require.NoError(t, err)
	assert.True(t, state.Banned)
	require.NotNil(t, state.BannedAt)
	require.NotNil(t, state.BanReason)
	assert.Equal(t, "scam", *state.BanReason)
	bannedAt := *state.BannedAt

	// same reason and no reason are both no-ops
	again, err := f.dispatcher.BanUser(ctx, admin, reportedID, strPtr("scam"))
	require.NoError(t, err)
	assert.True(t, again.Banned)
	assert.Equal(t, bannedAt, *again.BannedAt)

	again, err = f.dispatcher.BanUser(ctx, admin, reportedID, nil)
	require.NoError(t, err)
	assert.Equal(t, "scam", *again.BanReason)

	actions, err := f.repo.ListActions(ctx, reportedID, 0)
	require.NoError(t, err)
	assert.Len(t, actions, 1)

	// a new reason is recorded without moving banned_at
	again, err = f.dispatcher.BanUser(ctx, admin, reportedID, strPtr("harassment"))
	require.NoError(t, err)
	assert.Equal(t, "harassment", *again.BanReason)
	assert.Equal(t, bannedAt, *again.BannedAt)

	state, err = f.dispatcher.UnbanUser(ctx, admin, reportedID)
	require.NoError(t, err)
	assert.False(t, state.Banned)
	assert.Nil(t, state.BannedAt)
	assert.Nil(t, state.BanReason)

	state, err = f.dispatcher.UnbanUser(ctx, admin, reportedID)
	require.NoError(t, err)
	assert.False(t, state.Banned)

	actions, err = f.repo.ListActions(ctx, reportedID, 0)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, ActionUnban, actions[0].Action)
	assert.Equal(t, ActionBan, actions[1].Action)
	assert.Equal(t, ActionBan, actions[2].Action)

	assert.Equal(t, []string{EventUserBanned, EventUserBanned, EventUserUnbanned}, f.events.types())

	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.False(t, u.Banned)
	assert.Equal(t, 100, u.TrustScore)
}

func TestBanErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.dispatcher.BanUser(ctx, admin, adminID, nil)
	assert.ErrorIs(t, err, ErrSelfBan)
	assert.ErrorIs(t, err, apperr.ErrSelfAction)

	_, err = f.dispatcher.UnbanUser(ctx, admin, adminID)
	assert.ErrorIs(t, err, ErrSelfBan)

	_, err = f.dispatcher.BanUser(ctx, admin, 404, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
