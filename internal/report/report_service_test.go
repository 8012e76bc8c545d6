package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"
	"github.com/xnk3-aplus/360-Base/internal/basehr"
	"github.com/xnk3-aplus/360-Base/internal/identity"
	"github.com/xnk3-aplus/360-Base/internal/leave"
	"github.com/xnk3-aplus/360-Base/internal/report"
	reporterrors "github.com/xnk3-aplus/360-Base/internal/report/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loc = time.UTC

// --- fakes, one struct per source ---

type fakeDirectory struct {
	dir       *identity.Directory
	err       error
	refreshed int
}

func (f *fakeDirectory) Directory(context.Context) (*identity.Directory, error) {
	return f.dir, f.err
}

func (f *fakeDirectory) Refresh(context.Context) error {
	f.refreshed++
	return f.err
}

type fakeCheckin struct {
	events []attendance.CheckinEvent
	err    error
}

func (f *fakeCheckin) Logs(context.Context, time.Time, time.Time) ([]attendance.CheckinEvent, error) {
	return f.events, f.err
}

type fakeTimeoff struct {
	requests []attendance.TimeoffRequest
	err      error
}

func (f *fakeTimeoff) List(context.Context, basehr.TimeoffListOptions, basehr.NameLookup) ([]attendance.TimeoffRequest, error) {
	return f.requests, f.err
}

type fakeGoal struct {
	cycle    basehr.Cycle
	hasCycle bool
	checkins []basehr.GoalCheckin
	err      error
}

func (f *fakeGoal) CurrentCycle(context.Context, time.Time) (basehr.Cycle, bool, error) {
	return f.cycle, f.hasCycle, f.err
}

func (f *fakeGoal) CycleCheckins(context.Context, string) ([]basehr.GoalCheckin, error) {
	return f.checkins, f.err
}

type fakeTasks struct {
	tasks []basehr.Task
	err   error
}

func (f *fakeTasks) ProjectNames(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeTasks) UserTasks(context.Context, string, time.Time, time.Time, map[string]string) ([]basehr.Task, error) {
	return f.tasks, f.err
}

type fakeJobs struct {
	jobs []basehr.Job
	err  error
}

func (f *fakeJobs) JobsForUser(context.Context, string) ([]basehr.Job, error) {
	return f.jobs, f.err
}

type fakeFeed struct {
	items []basehr.FeedItem
	err   error
}

func (f *fakeFeed) Feed(context.Context, map[string]string) ([]basehr.FeedItem, error) {
	return f.items, f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakePublisher struct {
	generated int
	emailed   int
}

func (f *fakePublisher) PublishReportGenerated(context.Context, *report.EmployeeReport) error {
	f.generated++
	return nil
}

func (f *fakePublisher) PublishReportEmailSent(context.Context, *report.EmployeeReport) error {
	f.emailed++
	return nil
}

// --- fixtures ---

func testDirectory() *identity.Directory {
	return identity.NewDirectory([]identity.Employee{
		{ID: "7", Username: "an.nguyen", DisplayName: "Nguyễn Văn An", Email: "an@acme.vn"},
		{ID: "8", Username: "binh.tran", DisplayName: "Trần Thị Bình"},
	})
}

func julyWorkday(name string, day int) []attendance.CheckinEvent {
	return []attendance.CheckinEvent{
		{EmployeeName: name, Time: time.Date(2025, time.July, day, 8, 0, 0, 0, loc)},
		{EmployeeName: name, Time: time.Date(2025, time.July, day, 17, 30, 0, 0, loc), IsCheckout: true},
	}
}

func testRules() attendance.Rules {
	r := attendance.DefaultRules()
	r.AsOf = time.Date(2025, time.July, 12, 23, 0, 0, 0, loc)
	return r
}

func newService(t *testing.T, dir *fakeDirectory, sources report.Sources, mailer report.Mailer, publisher report.EventPublisher) *report.Service {
	t.Helper()
	return report.NewService(
		dir,
		identity.NewResolver(),
		leave.NewClassifier(0.15),
		sources,
		testRules(),
		loc,
		mailer,
		nil,
		publisher,
	)
}

func TestService_GenerateFullReport(t *testing.T) {
	var events []attendance.CheckinEvent
	for d := 1; d <= 4; d++ {
		events = append(events, julyWorkday("Nguyễn Văn An", d)...)
		events = append(events, julyWorkday("Trần Thị Bình", d)...)
	}
	for d := 7; d <= 11; d++ {
		events = append(events, julyWorkday("Nguyễn Văn An", d)...)
		events = append(events, julyWorkday("Trần Thị Bình", d)...)
	}

	timeoffs := []attendance.TimeoffRequest{{
		ID:           "to-1",
		EmployeeName: "Nguyễn Văn An",
		Username:     "an.nguyen",
		StartDate:    time.Date(2025, time.July, 3, 0, 0, 0, 0, loc),
		EndDate:      time.Date(2025, time.July, 3, 0, 0, 0, 0, loc),
		State:        "approved",
		Reason:       "bị sốt phải đi khám bệnh",
	}}

	sources := report.Sources{
		Checkin: &fakeCheckin{events: events},
		Timeoff: &fakeTimeoff{requests: timeoffs},
		Goal: &fakeGoal{
			cycle:    basehr.Cycle{Name: "Q3/2025", Path: "q3-2025"},
			hasCycle: true,
			checkins: []basehr.GoalCheckin{
				{ID: "c1", UserID: "7", Since: time.Date(2025, time.July, 8, 10, 0, 0, 0, loc)},
				{ID: "c2", UserID: "9", Since: time.Date(2025, time.July, 8, 10, 0, 0, 0, loc)},
			},
		},
		Tasks: &fakeTasks{tasks: []basehr.Task{
			{ID: "t1", Name: "Báo cáo quý", Complete: 100},
			{ID: "t2", Name: "Kế hoạch tháng", Complete: 40},
		}},
		Jobs: &fakeJobs{jobs: []basehr.Job{{ID: "j1", Name: "Duyệt đề xuất", UserID: "7"}}},
		Feed: &fakeFeed{items: []basehr.FeedItem{
			{ID: "f1", AuthorID: "7", Since: time.Date(2025, time.July, 2, 9, 0, 0, 0, loc)},
			{ID: "f2", AuthorID: "8", Since: time.Date(2025, time.July, 2, 9, 0, 0, 0, loc)},
			{ID: "f3", AuthorID: "7", Since: time.Date(2025, time.June, 2, 9, 0, 0, 0, loc)},
		}},
	}

	publisher := &fakePublisher{}
	svc := newService(t, &fakeDirectory{dir: testDirectory()}, sources, nil, publisher)

	rep, err := svc.Generate(context.Background(), "nguyen van an", 2025, time.July)
	require.NoError(t, err)

	// identity resolved through normalization
	assert.Equal(t, "Nguyễn Văn An", rep.EmployeeName)
	assert.Equal(t, "an@acme.vn", rep.Email)

	require.NotNil(t, rep.Attendance)
	assert.Equal(t, 1, rep.Attendance.Summary.DaysTimeoff)
	assert.Equal(t, 8, rep.Attendance.Summary.DaysPresent)

	require.Len(t, rep.Leaves, 1)
	assert.Equal(t, leave.CategorySick, rep.Leaves[0].Category.Key)

	require.NotNil(t, rep.Tasks)
	assert.Equal(t, 2, rep.Tasks.Total)
	assert.Equal(t, 1, rep.Tasks.Completed)
	assert.Equal(t, 50.0, rep.Tasks.CompletionRate)

	require.NotNil(t, rep.OKR)
	assert.Equal(t, "Q3/2025", rep.OKR.CycleName)
	assert.Equal(t, 1, rep.OKR.CheckinCount) // other user's checkin excluded

	require.NotNil(t, rep.Workflow)
	assert.Equal(t, 1, rep.Workflow.JobCount)

	require.NotNil(t, rep.Feed)
	assert.Equal(t, 1, rep.Feed.PostCount) // other author and other month excluded

	assert.Empty(t, rep.SectionErrors)
	assert.Equal(t, 1, publisher.generated)
}

func TestService_SectionDegradation(t *testing.T) {
	sources := report.Sources{
		Checkin: &fakeCheckin{err: errors.New("checkin down")},
		Timeoff: &fakeTimeoff{},
		Jobs:    &fakeJobs{err: errors.New("workflow down")},
	}
	svc := newService(t, &fakeDirectory{dir: testDirectory()}, sources, nil, nil)

	rep, err := svc.Generate(context.Background(), "Nguyễn Văn An", 2025, time.July)
	require.NoError(t, err)

	assert.Nil(t, rep.Attendance)
	assert.Contains(t, rep.SectionErrors, "checkin")
	assert.Contains(t, rep.SectionErrors, "workflow")
}

func TestService_UnknownEmployee(t *testing.T) {
	sources := report.Sources{
		Checkin: &fakeCheckin{events: julyWorkday("Trần Thị Bình", 1)},
		Timeoff: &fakeTimeoff{},
	}
	svc := newService(t, &fakeDirectory{dir: testDirectory()}, sources, nil, nil)

	_, err := svc.Generate(context.Background(), "Người Không Tồn Tại", 2025, time.July)
	assert.ErrorIs(t, err, reporterrors.ErrEmployeeNotFound)
}

func TestService_InvalidInput(t *testing.T) {
	svc := newService(t, &fakeDirectory{dir: testDirectory()}, report.Sources{}, nil, nil)

	_, err := svc.Generate(context.Background(), "  ", 2025, time.July)
	assert.ErrorIs(t, err, reporterrors.ErrInvalidPeriod)

	_, err = svc.Generate(context.Background(), "An", 1800, time.July)
	assert.ErrorIs(t, err, reporterrors.ErrInvalidPeriod)
}

func TestService_SendRequiresMailerAndRecipient(t *testing.T) {
	sources := report.Sources{Checkin: &fakeCheckin{events: julyWorkday("Trần Thị Bình", 1)}}

	t.Run("mailer disabled", func(t *testing.T) {
		svc := newService(t, &fakeDirectory{dir: testDirectory()}, sources, nil, nil)
		rep, err := svc.Generate(context.Background(), "Trần Thị Bình", 2025, time.July)
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Send(context.Background(), rep), reporterrors.ErrMailerDisabled)
	})

	t.Run("no email on record", func(t *testing.T) {
		svc := newService(t, &fakeDirectory{dir: testDirectory()}, sources, &fakeMailer{}, nil)
		rep, err := svc.Generate(context.Background(), "Trần Thị Bình", 2025, time.July)
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Send(context.Background(), rep), reporterrors.ErrNoRecipient)
	})

	t.Run("delivered", func(t *testing.T) {
		mailer := &fakeMailer{}
		publisher := &fakePublisher{}
		svc := newService(t, &fakeDirectory{dir: testDirectory()},
			report.Sources{Checkin: &fakeCheckin{events: julyWorkday("Nguyễn Văn An", 1)}},
			mailer, publisher)

		rep, err := svc.Generate(context.Background(), "Nguyễn Văn An", 2025, time.July)
		require.NoError(t, err)
		require.NoError(t, svc.Send(context.Background(), rep))

		assert.Equal(t, []string{"an@acme.vn"}, mailer.sent)
		assert.Equal(t, 1, publisher.emailed)
	})
}

func TestService_RunBatchIsolation(t *testing.T) {
	var events []attendance.CheckinEvent
	events = append(events, julyWorkday("Nguyễn Văn An", 1)...)
	events = append(events, julyWorkday("Trần Thị Bình", 1)...)

	mailer := &fakeMailer{}
	svc := newService(t, &fakeDirectory{dir: testDirectory()},
		report.Sources{Checkin: &fakeCheckin{events: events}, Timeoff: &fakeTimeoff{}},
		mailer, nil)

	result, err := svc.RunBatch(context.Background(), 2025, time.July, true)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Generated)
	// Bình has no email; her delivery fails, An's succeeds
	assert.Equal(t, 1, result.Emailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Trần Thị Bình", result.Failures[0].EmployeeName)
	assert.Equal(t, "deliver", result.Failures[0].Stage)
}

func TestService_RunBatchWithoutDirectory(t *testing.T) {
	svc := newService(t, &fakeDirectory{err: errors.New("account down")}, report.Sources{}, nil, nil)
	_, err := svc.RunBatch(context.Background(), 2025, time.July, false)
	assert.ErrorIs(t, err, reporterrors.ErrDirectoryUnavailable)
}

func TestService_RefreshDirectory(t *testing.T) {
	dir := &fakeDirectory{dir: testDirectory()}
	svc := newService(t, dir, report.Sources{}, nil, nil)

	require.NoError(t, svc.RefreshDirectory(context.Background()))
	assert.Equal(t, 1, dir.refreshed)
}
