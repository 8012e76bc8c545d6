package basehr

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultWorkflowBaseURL = "https://workflow.base.vn"
	maxWorkflowPages       = 10
)

// Job is one workflow job assigned to a user.
type Job struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	UserID   string    `json:"user_id"`
	Workflow string    `json:"workflow"`
	Stage    string    `json:"stage"`
	Since    time.Time `json:"since"`
	Deadline time.Time `json:"deadline"`
}

// WorkflowClient pulls jobs from the workflow product. The jobs endpoint
// has no per-user filter, so the full pages are fetched and filtered here.
type WorkflowClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewWorkflowClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *WorkflowClient {
	l := zap.L().Named("basehr.workflow")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.workflow")
	}
	if baseURL == "" {
		baseURL = defaultWorkflowBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &WorkflowClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

type workflowJobsResponse struct {
	Code flexInt `json:"code"`
	Jobs []struct {
		ID       flexString  `json:"id"`
		Name     string      `json:"name"`
		UserID   flexString  `json:"user_id"`
		Workflow string      `json:"workflow"`
		Stage    string      `json:"stage"`
		Since    unixSeconds `json:"since"`
		Deadline unixSeconds `json:"deadline"`
	} `json:"jobs"`
}

// Jobs walks the page_id-paginated job list.
func (c *WorkflowClient) Jobs(ctx context.Context) ([]Job, error) {
	var all []Job
	for page := 0; page < maxWorkflowPages; page++ {
		form := authValues(c.token)
		form.Set("page_id", strconv.Itoa(page))

		var resp workflowJobsResponse
		if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/jobs/get", form, &resp); err != nil {
			return nil, err
		}
		if resp.Code.Int() != 1 || len(resp.Jobs) == 0 {
			break
		}
		for _, j := range resp.Jobs {
			all = append(all, Job{
				ID:       j.ID.String(),
				Name:     j.Name,
				UserID:   j.UserID.String(),
				Workflow: j.Workflow,
				Stage:    j.Stage,
				Since:    j.Since.Time(c.loc),
				Deadline: j.Deadline.Time(c.loc),
			})
		}
	}

	c.logger.Info("workflow jobs loaded", zap.Int("jobs", len(all)))
	return all, nil
}

// JobsForUser filters the full job list down to one user id.
func (c *WorkflowClient) JobsForUser(ctx context.Context, userID string) ([]Job, error) {
	all, err := c.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	var jobs []Job
	for _, j := range all {
		if j.UserID == userID {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}
