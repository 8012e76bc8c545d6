package basehr

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultWeworkBaseURL = "https://wework.base.vn"

// Task is one work item from the wework product. Completion lives in two
// fields upstream: a percentage and an optional completion timestamp.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Complete    float64   `json:"complete"`
	Since       time.Time `json:"since"`
	StartTime   time.Time `json:"start_time"`
	Deadline    time.Time `json:"deadline"`
	CompletedAt time.Time `json:"completed_at"`
}

// IsDone reports completion either by timestamp or by a 100% progress mark.
func (t Task) IsDone() bool {
	return !t.CompletedAt.IsZero() || t.Complete >= 100
}

// TouchesPeriod reports whether the task belongs in a reporting window:
// created, completed or due inside it, or open across it.
func (t Task) TouchesPeriod(start, end time.Time) bool {
	within := func(ts time.Time) bool {
		return !ts.IsZero() && !ts.Before(start) && !ts.After(end)
	}
	if within(t.Since) || within(t.CompletedAt) || within(t.Deadline) {
		return true
	}
	// still open: created before the window ends and not finished before it
	// starts
	created := t.Since
	if created.IsZero() {
		created = t.StartTime
	}
	if !created.IsZero() && created.Before(end) {
		return t.CompletedAt.IsZero() || !t.CompletedAt.Before(start)
	}
	return false
}

// WeworkClient pulls per-user tasks from the wework product.
type WeworkClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewWeworkClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *WeworkClient {
	l := zap.L().Named("basehr.wework")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.wework")
	}
	if baseURL == "" {
		baseURL = defaultWeworkBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &WeworkClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

type namedListResponse struct {
	Projects []struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"projects"`
	Departments []struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	} `json:"departments"`
}

// ProjectNames maps project and department ids to display names. Tasks only
// carry the id.
func (c *WeworkClient) ProjectNames(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)

	var projects namedListResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v3/project/list", authValues(c.token), &projects); err != nil {
		return nil, err
	}
	for _, p := range projects.Projects {
		out[p.ID.String()] = p.Name
	}

	var depts namedListResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v3/department/list", authValues(c.token), &depts); err != nil {
		return nil, err
	}
	for _, d := range depts.Departments {
		out[d.ID.String()] = d.Name
	}

	return out, nil
}

type userTasksResponse struct {
	Tasks []struct {
		ID            flexString  `json:"id"`
		Name          string      `json:"name"`
		ProjectID     flexString  `json:"project_id"`
		Complete      flexFloat   `json:"complete"`
		Since         unixSeconds `json:"since"`
		StartTime     unixSeconds `json:"start_time"`
		Deadline      unixSeconds `json:"deadline"`
		CompletedTime unixSeconds `json:"completed_time"`
	} `json:"tasks"`
}

// UserTasks fetches every task assigned to the user and restricts them to
// the reporting window. projectNames may be nil.
func (c *WeworkClient) UserTasks(ctx context.Context, userID string, start, end time.Time, projectNames map[string]string) ([]Task, error) {
	form := authValues(c.token)
	form.Set("user", userID)

	var resp userTasksResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v3/user/tasks", form, &resp); err != nil {
		return nil, err
	}

	var tasks []Task
	for _, t := range resp.Tasks {
		task := Task{
			ID:          t.ID.String(),
			Name:        t.Name,
			ProjectID:   t.ProjectID.String(),
			Complete:    float64(t.Complete),
			Since:       t.Since.Time(c.loc),
			StartTime:   t.StartTime.Time(c.loc),
			Deadline:    t.Deadline.Time(c.loc),
			CompletedAt: t.CompletedTime.Time(c.loc),
		}
		if name, ok := projectNames[task.ProjectID]; ok {
			task.ProjectName = name
		} else {
			task.ProjectName = "Chưa phân loại"
		}
		if task.TouchesPeriod(start, end) {
			tasks = append(tasks, task)
		}
	}

	c.logger.Info("wework tasks loaded",
		zap.String("user_id", userID),
		zap.Int("in_period", len(tasks)),
		zap.Int("total", len(resp.Tasks)),
	)
	return tasks, nil
}
