package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func newReportFixture(t *testing.T) (*ReportService, *ticketFixture) {
	t.Helper()
	f := newTicketFixture(t)
	return NewReportService(f.tickets, f.users), f
}

func TestTicketStatsScoping(t *testing.T) {
	reports, f := newReportFixture(t)
	ctx := context.Background()

	ticket := f.pendingTicket(t)
	f.pendingTicket(t)
	_, err := f.service.Accept(ctx, f.staff, ticket.ID, "")
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.someone, TicketCreateInput{
		Complaint: "Bob needs a replacement mouse for his desk",
		Type:      domain.TicketTypeReplacement,
		RoomNo:    "12",
	})
	require.NoError(t, err)

	own, err := reports.TicketStats(ctx, f.raiser)
	require.NoError(t, err)
	assert.EqualValues(t, 2, own.Total)
	assert.EqualValues(t, 1, own.Open)
	assert.EqualValues(t, 1, own.Pending)
	assert.EqualValues(t, 2, own.Incidental)

	all, err := reports.TicketStats(ctx, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.EqualValues(t, 1, all.Replacement)
}

func TestBuildWindowsDay(t *testing.T) {
	windows := buildWindows(ViewTypeDay, nil, nil)
	assert.Len(t, windows, 30)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].To, windows[i].From, "windows must tile the range")
	}
}

func TestBuildWindowsDayExplicitRange(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)
	windows := buildWindows(ViewTypeDay, &start, &end)
	require.Len(t, windows, 7)
	assert.Equal(t, "2026-01-01", windows[0].Label)
	assert.Equal(t, "2026-01-07", windows[6].Label)
}

func TestBuildWindowsMonth(t *testing.T) {
	windows := buildWindows(ViewTypeMonth, nil, nil)
	assert.Len(t, windows, 6)

	start := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	explicit := buildWindows(ViewTypeMonth, &start, &end)
	require.Len(t, explicit, 4)
	assert.Equal(t, "2025-11", explicit[0].Label)
	assert.Equal(t, "2026-02", explicit[3].Label)
}

func TestBucketTickets(t *testing.T) {
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	windows := []PerformanceWindow{
		{Label: "2026-03-10", From: day, To: day.AddDate(0, 0, 1)},
		{Label: "2026-03-11", From: day.AddDate(0, 0, 1), To: day.AddDate(0, 0, 2)},
	}
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusResolved, CreatedAt: day.Add(2 * time.Hour)},
		{Status: domain.TicketStatusOpen, CreatedAt: day.Add(3 * time.Hour)},
		{Status: domain.TicketStatusPending, CreatedAt: day.Add(4 * time.Hour)},
		{Status: domain.TicketStatusRejected, CreatedAt: day.AddDate(0, 0, 1).Add(time.Hour)},
		{Status: domain.TicketStatusResolved, CreatedAt: day.AddDate(0, 0, 5)}, // outside both windows
	}

	buckets := bucketTickets(tickets, windows)
	require.Len(t, buckets, 2)

	first := buckets[0]
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.Accepted, "pending tickets do not count as accepted")
	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 1, first.Open)
	assert.Equal(t, 0, first.Rejected)

	second := buckets[1]
	assert.Equal(t, 1, second.Total)
	assert.Equal(t, 1, second.Rejected)
}

func TestStaffPerformanceAuthorization(t *testing.T) {
	reports, f := newReportFixture(t)
	ctx := context.Background()

	_, err := reports.StaffPerformance(ctx, f.staff, PerformanceInput{StaffID: f.staff2.ID, ViewType: ViewTypeDay})
	assertErrorCode(t, err, "FORBIDDEN")

	report, err := reports.StaffPerformance(ctx, f.staff, PerformanceInput{ViewType: ViewTypeDay})
	require.NoError(t, err)
	require.Len(t, report.Staff, 1, "it_staff is pinned to itself")
	assert.Equal(t, f.staff.ID, report.Staff[0].StaffID)

	report, err = reports.StaffPerformance(ctx, f.admin, PerformanceInput{ViewType: ViewTypeDay})
	require.NoError(t, err)
	assert.Len(t, report.Staff, 3, "admin sees the whole roster")
}

func TestStaffPerformanceRejectsNonStaffTarget(t *testing.T) {
	reports, f := newReportFixture(t)
	_, err := reports.StaffPerformance(context.Background(), f.admin, PerformanceInput{StaffID: f.raiser.ID, ViewType: ViewTypeDay})
	assertErrorCode(t, err, "VALIDATION_FAILED")
}

func TestStaffPerformanceCountsAssignedTickets(t *testing.T) {
	reports, f := newReportFixture(t)
	ctx := context.Background()

	ticket := f.pendingTicket(t)
	_, err := f.service.Accept(ctx, f.staff, ticket.ID, "")
	require.NoError(t, err)
	_, err = f.service.Complete(ctx, f.staff, ticket.ID, "fixed")
	require.NoError(t, err)

	report, err := reports.StaffPerformance(ctx, f.staff, PerformanceInput{ViewType: ViewTypeDay})
	require.NoError(t, err)
	require.Len(t, report.Staff, 1)

	var total, completed int
	for _, window := range report.Staff[0].Windows {
		total += window.Total
		completed += window.Completed
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, completed)
}

func TestStaffDirectory(t *testing.T) {
	reports, _ := newReportFixture(t)
	staff, err := reports.StaffDirectory(context.Background())
	require.NoError(t, err)
	assert.Len(t, staff, 3)
	for _, member := range staff {
		assert.True(t, member.Role.IsStaff())
	}
}

