package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"
	"github.com/xnk3-aplus/360-Base/internal/basehr"
	"github.com/xnk3-aplus/360-Base/internal/identity"
	"github.com/xnk3-aplus/360-Base/internal/leave"
	reporterrors "github.com/xnk3-aplus/360-Base/internal/report/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upstream source contracts. The concrete implementations live in
// internal/basehr; handlers and tests inject fakes.

type CheckinSource interface {
	Logs(ctx context.Context, start, end time.Time) ([]attendance.CheckinEvent, error)
}

type TimeoffSource interface {
	List(ctx context.Context, opts basehr.TimeoffListOptions, names basehr.NameLookup) ([]attendance.TimeoffRequest, error)
}

type DirectorySource interface {
	Directory(ctx context.Context) (*identity.Directory, error)
	Refresh(ctx context.Context) error
}

type GoalSource interface {
	CurrentCycle(ctx context.Context, ref time.Time) (basehr.Cycle, bool, error)
	CycleCheckins(ctx context.Context, cyclePath string) ([]basehr.GoalCheckin, error)
}

type TaskSource interface {
	ProjectNames(ctx context.Context) (map[string]string, error)
	UserTasks(ctx context.Context, userID string, start, end time.Time, projectNames map[string]string) ([]basehr.Task, error)
}

type JobSource interface {
	JobsForUser(ctx context.Context, userID string) ([]basehr.Job, error)
}

type FeedSource interface {
	Feed(ctx context.Context, authorNames map[string]string) ([]basehr.FeedItem, error)
}

type UserMapSource interface {
	UserIDNames(ctx context.Context) (map[string]string, error)
}

// Classifier is the leave-reason classifier contract.
type Classifier interface {
	Classify(reason string) leave.Result
}

// Sources bundles every upstream the report can draw from. Optional
// sources may be nil; their sections are simply omitted.
type Sources struct {
	Checkin CheckinSource
	Timeoff TimeoffSource
	Goal    GoalSource
	Tasks   TaskSource
	Jobs    JobSource
	Feed    FeedSource
	UserMap UserMapSource
}

// Service assembles, renders and delivers the monthly activity report.
type Service struct {
	directory  DirectorySource
	resolver   *identity.Resolver
	classifier Classifier
	sources    Sources
	rules      attendance.Rules
	loc        *time.Location

	renderer  *HTMLRenderer
	mailer    Mailer
	insight   InsightGenerator
	publisher EventPublisher

	logger *zap.Logger
}

func NewService(
	directory DirectorySource,
	resolver *identity.Resolver,
	classifier Classifier,
	sources Sources,
	rules attendance.Rules,
	loc *time.Location,
	mailer Mailer,
	insight InsightGenerator,
	publisher EventPublisher,
	logger ...*zap.Logger,
) *Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	if loc == nil {
		loc = time.Local
	}
	if resolver == nil {
		resolver = identity.NewResolver(l)
	}
	if mailer == nil {
		mailer = noopMailer{}
	}
	if insight == nil {
		insight = noopInsight{}
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	return &Service{
		directory:  directory,
		resolver:   resolver,
		classifier: classifier,
		sources:    sources,
		rules:      rules,
		loc:        loc,
		renderer:   NewHTMLRenderer(),
		mailer:     mailer,
		insight:    insight,
		publisher:  publisher,
		logger:     l,
	}
}

// monthWindow is [first instant of the month, last instant of its final day].
func (s *Service) monthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

func validPeriod(year int, month time.Month) bool {
	return year >= 2000 && year <= 2100 && month >= time.January && month <= time.December
}

// Generate builds the full report for one employee. Sections degrade
// independently: any upstream failure is recorded in SectionErrors and the
// rest of the report still comes out.
func (s *Service) Generate(ctx context.Context, employeeName string, year int, month time.Month) (*EmployeeReport, error) {
	if strings.TrimSpace(employeeName) == "" || !validPeriod(year, month) {
		return nil, reporterrors.ErrInvalidPeriod
	}

	rep := &EmployeeReport{
		RunID:         uuid.NewString(),
		EmployeeName:  employeeName,
		Year:          year,
		Month:         month,
		GeneratedAt:   time.Now().In(s.loc),
		SectionErrors: map[string]string{},
	}
	start, end := s.monthWindow(year, month)

	dir := s.loadDirectory(ctx, rep)

	employee, resolved := identity.Employee{}, false
	if dir != nil {
		employee, resolved = s.resolver.Resolve(employeeName, dir)
		if resolved {
			rep.EmployeeName = employee.DisplayName
			rep.Email = employee.Email
			rep.Username = employee.Username
		}
	}

	events, timeoffs := s.loadAttendanceInputs(ctx, rep, start, end, dir)

	// a name in no source at all is "unknown person", which must stay
	// distinct from "known employee with zero activity"; with every source
	// down there is no basis for the distinction, so skip the check
	hadAnySource := dir != nil || events != nil || timeoffs != nil
	if !resolved && hadAnySource && !s.knownInSources(employeeName, events, timeoffs) {
		return nil, reporterrors.ErrEmployeeNotFound
	}

	if events != nil {
		analyzer := attendance.NewAnalyzer(s.rules, s.loc, events, timeoffs, dir, s.resolver, s.logger)
		rep.Attendance = analyzer.AnalyzeEmployee(rep.EmployeeName, year, month)
	}

	rep.Leaves = s.classifyLeaves(rep.EmployeeName, timeoffs, start, end)

	if resolved && employee.ID != "" {
		s.fillTaskSection(ctx, rep, employee.ID, start, end)
		s.fillWorkflowSection(ctx, rep, employee.ID)
		s.fillOKRSection(ctx, rep, employee.ID, start, end)
		s.fillFeedSection(ctx, rep, employee.ID, start, end)
	} else if !resolved {
		rep.SectionErrors["identity"] = "employee not found in directory; task, OKR, workflow and feed sections skipped"
	}

	if insight, err := s.insight.Commentary(ctx, rep); err != nil {
		rep.SectionErrors["insight"] = err.Error()
	} else {
		rep.Insight = insight
	}

	if len(rep.SectionErrors) == 0 {
		rep.SectionErrors = nil
	}

	s.publishGenerated(ctx, rep)
	return rep, nil
}

func (s *Service) loadDirectory(ctx context.Context, rep *EmployeeReport) *identity.Directory {
	if s.directory == nil {
		return nil
	}
	dir, err := s.directory.Directory(ctx)
	if err != nil {
		s.logger.Warn("directory unavailable, identity features degraded", zap.Error(err))
		rep.SectionErrors["directory"] = err.Error()
		return nil
	}
	return dir
}

func (s *Service) loadAttendanceInputs(
	ctx context.Context,
	rep *EmployeeReport,
	start, end time.Time,
	dir *identity.Directory,
) ([]attendance.CheckinEvent, []attendance.TimeoffRequest) {
	var events []attendance.CheckinEvent
	if s.sources.Checkin != nil {
		var err error
		events, err = s.sources.Checkin.Logs(ctx, start, end)
		if err != nil {
			rep.SectionErrors["checkin"] = err.Error()
			events = nil
		} else if events == nil {
			events = []attendance.CheckinEvent{}
		}
	}

	var timeoffs []attendance.TimeoffRequest
	if s.sources.Timeoff != nil {
		var names basehr.NameLookup
		if dir != nil {
			names = dir
		}
		var err error
		timeoffs, err = s.sources.Timeoff.List(ctx, basehr.TimeoffListOptions{
			StartDateFrom: start.AddDate(0, -1, 0), // catch intervals straddling the month start
			StartDateTo:   end,
		}, names)
		if err != nil {
			rep.SectionErrors["timeoff"] = err.Error()
			timeoffs = nil
		}
	}
	return events, timeoffs
}

func (s *Service) knownInSources(name string, events []attendance.CheckinEvent, timeoffs []attendance.TimeoffRequest) bool {
	seen := make(map[string]bool)
	var candidates []string
	for _, ev := range events {
		if !seen[ev.EmployeeName] {
			seen[ev.EmployeeName] = true
			candidates = append(candidates, ev.EmployeeName)
		}
	}
	for _, to := range timeoffs {
		if !seen[to.EmployeeName] {
			seen[to.EmployeeName] = true
			candidates = append(candidates, to.EmployeeName)
		}
	}
	_, ok := s.resolver.Match(name, candidates)
	return ok
}

// classifyLeaves classifies every leave request of the employee that
// overlaps the month.
func (s *Service) classifyLeaves(employeeName string, timeoffs []attendance.TimeoffRequest, start, end time.Time) []ClassifiedLeave {
	if s.classifier == nil {
		return nil
	}

	var names []string
	for _, to := range timeoffs {
		names = append(names, to.EmployeeName)
	}
	matched, ok := s.resolver.Match(employeeName, names)
	if !ok {
		return nil
	}

	var out []ClassifiedLeave
	for _, to := range timeoffs {
		if to.EmployeeName != matched {
			continue
		}
		if to.EndDate.Before(start) || to.StartDate.After(end) {
			continue
		}
		res := s.classifier.Classify(to.Reason)
		out = append(out, ClassifiedLeave{
			Request:    to,
			Category:   res.Category,
			Confidence: res.Confidence,
		})
	}
	return out
}

func (s *Service) fillTaskSection(ctx context.Context, rep *EmployeeReport, userID string, start, end time.Time) {
	if s.sources.Tasks == nil {
		return
	}

	projectNames, err := s.sources.Tasks.ProjectNames(ctx)
	if err != nil {
		// names are decoration; tasks still render without them
		s.logger.Warn("project name lookup failed", zap.Error(err))
		projectNames = nil
	}

	tasks, err := s.sources.Tasks.UserTasks(ctx, userID, start, end, projectNames)
	if err != nil {
		rep.SectionErrors["tasks"] = err.Error()
		return
	}

	section := &TaskSection{Total: len(tasks), Items: tasks}
	now := time.Now().In(s.loc)
	for _, t := range tasks {
		switch {
		case t.IsDone():
			section.Completed++
		case !t.Deadline.IsZero() && t.Deadline.Before(now):
			section.Overdue++
		default:
			section.InProgress++
		}
	}
	if section.Total > 0 {
		section.CompletionRate = float64(section.Completed) / float64(section.Total) * 100
	}
	rep.Tasks = section
}

func (s *Service) fillWorkflowSection(ctx context.Context, rep *EmployeeReport, userID string) {
	if s.sources.Jobs == nil {
		return
	}
	jobs, err := s.sources.Jobs.JobsForUser(ctx, userID)
	if err != nil {
		rep.SectionErrors["workflow"] = err.Error()
		return
	}
	rep.Workflow = &WorkflowSection{JobCount: len(jobs), Jobs: jobs}
}

func (s *Service) fillOKRSection(ctx context.Context, rep *EmployeeReport, userID string, start, end time.Time) {
	if s.sources.Goal == nil {
		return
	}

	cycle, ok, err := s.sources.Goal.CurrentCycle(ctx, end)
	if err != nil {
		rep.SectionErrors["okr"] = err.Error()
		return
	}
	if !ok {
		return
	}

	checkins, err := s.sources.Goal.CycleCheckins(ctx, cycle.Path)
	if err != nil {
		rep.SectionErrors["okr"] = err.Error()
		return
	}

	section := &OKRSection{CycleName: cycle.Name}
	for _, ci := range checkins {
		if ci.UserID != userID {
			continue
		}
		if ci.Since.Before(start) || ci.Since.After(end) {
			continue
		}
		section.Checkins = append(section.Checkins, ci)
		section.CheckinCount++
		if section.LastCheckinAt == nil || ci.Since.After(*section.LastCheckinAt) {
			t := ci.Since
			section.LastCheckinAt = &t
		}
	}
	rep.OKR = section
}

func (s *Service) fillFeedSection(ctx context.Context, rep *EmployeeReport, userID string, start, end time.Time) {
	if s.sources.Feed == nil {
		return
	}

	var authorNames map[string]string
	if s.sources.UserMap != nil {
		names, err := s.sources.UserMap.UserIDNames(ctx)
		if err != nil {
			s.logger.Warn("user id map lookup failed", zap.Error(err))
		} else {
			authorNames = names
		}
	}

	items, err := s.sources.Feed.Feed(ctx, authorNames)
	if err != nil {
		rep.SectionErrors["feed"] = err.Error()
		return
	}

	section := &FeedSection{}
	for _, it := range items {
		if it.AuthorID != userID {
			continue
		}
		if it.Since.Before(start) || it.Since.After(end) {
			continue
		}
		section.Items = append(section.Items, it)
		section.PostCount++
	}
	rep.Feed = section
}

// RenderHTML renders the report into the email layout.
func (s *Service) RenderHTML(rep *EmployeeReport) (string, error) {
	return s.renderer.Render(rep)
}

// Send renders and emails the report to the employee's directory address.
func (s *Service) Send(ctx context.Context, rep *EmployeeReport) error {
	if _, ok := s.mailer.(noopMailer); ok {
		return reporterrors.ErrMailerDisabled
	}
	if rep.Email == "" {
		return reporterrors.ErrNoRecipient
	}

	html, err := s.renderer.Render(rep)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Báo cáo hoạt động tháng %02d/%d - %s", rep.Month, rep.Year, rep.EmployeeName)
	if err := s.mailer.Send(ctx, rep.Email, subject, html); err != nil {
		return err
	}

	s.publishEmailSent(ctx, rep)
	s.logger.Info("report emailed",
		zap.String("employee", rep.EmployeeName),
		zap.String("recipient", rep.Email),
	)
	return nil
}

// RunBatch generates and delivers a report for every directory member.
// Failures are isolated per employee and collected, never fatal.
func (s *Service) RunBatch(ctx context.Context, year int, month time.Month, deliver bool) (*BatchResult, error) {
	if !validPeriod(year, month) {
		return nil, reporterrors.ErrInvalidPeriod
	}
	if s.directory == nil {
		return nil, reporterrors.ErrDirectoryUnavailable
	}

	dir, err := s.directory.Directory(ctx)
	if err != nil {
		return nil, reporterrors.ErrDirectoryUnavailable
	}

	result := &BatchResult{
		RunID:     uuid.NewString(),
		Year:      year,
		Month:     month,
		StartedAt: time.Now().In(s.loc),
	}

	for _, employee := range dir.Employees() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		rep, err := s.Generate(ctx, employee.DisplayName, year, month)
		if err != nil {
			result.Failures = append(result.Failures, BatchError{
				EmployeeName: employee.DisplayName,
				Stage:        "generate",
				Error:        err.Error(),
			})
			s.logger.Warn("report generation failed",
				zap.String("employee", employee.DisplayName),
				zap.Error(err),
			)
			continue
		}
		result.Generated++

		if deliver {
			if err := s.Send(ctx, rep); err != nil {
				result.Failures = append(result.Failures, BatchError{
					EmployeeName: employee.DisplayName,
					Stage:        "deliver",
					Error:        err.Error(),
				})
				continue
			}
			result.Emailed++
		}
	}

	result.Took = time.Since(result.StartedAt)
	s.logger.Info("batch run finished",
		zap.String("run_id", result.RunID),
		zap.Int("generated", result.Generated),
		zap.Int("emailed", result.Emailed),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// RefreshDirectory forces a directory reload on the next access.
func (s *Service) RefreshDirectory(ctx context.Context) error {
	if s.directory == nil {
		return reporterrors.ErrDirectoryUnavailable
	}
	return s.directory.Refresh(ctx)
}

func (s *Service) publishGenerated(ctx context.Context, rep *EmployeeReport) {
	if err := s.publisher.PublishReportGenerated(ctx, rep); err != nil {
		s.logger.Warn("report.generated publish failed", zap.Error(err))
	}
}

func (s *Service) publishEmailSent(ctx context.Context, rep *EmployeeReport) {
	if err := s.publisher.PublishReportEmailSent(ctx, rep); err != nil {
		s.logger.Warn("report.email_sent publish failed", zap.Error(err))
	}
}
