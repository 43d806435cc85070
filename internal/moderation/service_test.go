package moderation

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

func TestSubmitReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	result, err := f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{
		ReportedID: reportedID,
		Reason:     "spam",
		Severity:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.Deduction)
	assert.Equal(t, 90, result.NextTrustScore)
	assert.Equal(t, StatusNeedsReview, result.Report.Status)
	assert.NotZero(t, result.Report.ID)

	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.Equal(t, 90, u.TrustScore)

	stored, err := f.reports.GetReport(ctx, result.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Severity)

	assert.Equal(t, []string{EventReportCreated}, f.events.types())
}

func TestSubmitReportSeverityInputs(t *testing.T) {
	tests := []struct {
		name      string
		severity  any
		deduction int
		next      int
	}{
		{"json number string", json.Number("1.8"), 2, 98},
		{"numeric string clamps", "200", 198, 0},
		{"missing", nil, 2, 98},
		{"garbage", "very bad", 2, 98},
		{"float", 10.0, 20, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			result, err := f.reports.SubmitReport(context.Background(), reporterID, &SubmitReportRequest{
				ReportedID: reportedID,
				Reason:     "spam",
				Severity:   tt.severity,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.deduction, result.Deduction)
			assert.Equal(t, tt.next, result.NextTrustScore)
		})
	}
}

func TestSubmitReportErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{ReportedID: reporterID, Reason: "spam"})
	assert.ErrorIs(t, err, ErrSelfReport)

	_, err = f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{ReportedID: 404, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.reports.SubmitReport(ctx, 404, &SubmitReportRequest{ReportedID: reportedID, Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{ReportedID: reportedID, Reason: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// nothing was deducted by the failed attempts
	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.Equal(t, 100, u.TrustScore)
}

func TestConcurrentReportsAllDeduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 30
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reporter := reporterID
			if i%2 == 0 {
				reporter = bystander
			}
			_, err := f.reports.SubmitReport(ctx, reporter, &SubmitReportRequest{
				ReportedID: reportedID,
				Reason:     "spam",
				Severity:   1,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	u, err := f.users.GetByID(ctx, reportedID)
	require.NoError(t, err)
	assert.Equal(t, 100-2*n, u.TrustScore)

	page, err := f.reports.ListReports(ctx, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, n, page.Total)
}

func TestListReportsAndReportedUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{ReportedID: reportedID, Reason: "spam", Severity: 2})
		require.NoError(t, err)
	}
	first, err := f.reports.SubmitReport(ctx, reporterID, &SubmitReportRequest{ReportedID: bystander, Reason: "fake profile", Severity: 7})
	require.NoError(t, err)
	_, err = f.reports.SubmitReport(ctx, bystander, &SubmitReportRequest{ReportedID: reportedID, Reason: "harassment", Severity: 9})
	require.NoError(t, err)

	_, err = f.dispatcher.UpdateReportStatus(ctx, admin, first.Report.ID, "RESOLVED_NO_ACTION", nil)
	require.NoError(t, err)

	open := StatusNeedsReview
	page, err := f.reports.ListReports(ctx, ReportFilter{Status: &open, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Reports, 2)
	assert.Equal(t, 2, page.Limit)

	target := bystander
	page, err = f.reports.ListReports(ctx, ReportFilter{ReportedID: &target})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, StatusResolvedNoAction, page.Reports[0].Status)

	queue, err := f.reports.ReportedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, reportedID, queue[0].UserID)
	assert.Equal(t, 4, queue[0].ReportCount)
	assert.Equal(t, 4, queue[0].OpenReports)
	assert.Equal(t, 9, queue[0].MaxSeverity)
	assert.Equal(t, []string{"harassment", "spam"}, []string(queue[0].Reasons))
	assert.Equal(t, 100-3*4-18, queue[0].TrustScore)

	counts, err := f.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[StatusNeedsReview])
	assert.Equal(t, 1, counts[StatusResolvedNoAction])
	assert.Equal(t, 0, counts[StatusUnderReview])
}

func TestMemoryListReportsHugeLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	submit(t, f, 1)
	submit(t, f, 2)

	var (
		reports []*Report
		total   int
		err     error
	)
	require.NotPanics(t, func() {
		reports, total, err = f.repo.ListReports(ctx, ReportFilter{Offset: 1, Limit: math.MaxInt})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, reports, 1)
}
