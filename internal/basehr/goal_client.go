package basehr

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultGoalBaseURL = "https://goal.base.vn"
	maxGoalPages       = 50
)

// Cycle is one OKR cycle. Only quarterly cycles drive the report.
type Cycle struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	StartTime time.Time `json:"start_time"`
}

// GoalCheckin is one OKR progress check-in.
type GoalCheckin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UserID       string    `json:"user_id"`
	KRID         string    `json:"kr_id"`
	CurrentValue float64   `json:"current_value"`
	Since        time.Time `json:"since"`
}

// GoalClient pulls OKR cycles and check-ins from the goal product.
type GoalClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewGoalClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *GoalClient {
	l := zap.L().Named("basehr.goal")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.goal")
	}
	if baseURL == "" {
		baseURL = defaultGoalBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &GoalClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

type cycleListResponse struct {
	Cycles []struct {
		Name      string      `json:"name"`
		Path      string      `json:"path"`
		Metatype  string      `json:"metatype"`
		StartTime unixSeconds `json:"start_time"`
	} `json:"cycles"`
}

// QuarterlyCycles lists quarterly cycles, newest first.
func (c *GoalClient) QuarterlyCycles(ctx context.Context) ([]Cycle, error) {
	var resp cycleListResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/cycle/list", authValues(c.token), &resp); err != nil {
		return nil, err
	}

	var cycles []Cycle
	for _, cy := range resp.Cycles {
		if cy.Metatype != "quarterly" || cy.StartTime.IsZero() {
			continue
		}
		cycles = append(cycles, Cycle{
			Name:      cy.Name,
			Path:      cy.Path,
			StartTime: cy.StartTime.Time(c.loc),
		})
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].StartTime.After(cycles[j].StartTime) })

	c.logger.Info("quarterly cycles loaded", zap.Int("cycles", len(cycles)))
	return cycles, nil
}

// CurrentCycle picks the newest quarterly cycle whose start is not in the
// future of ref.
func (c *GoalClient) CurrentCycle(ctx context.Context, ref time.Time) (Cycle, bool, error) {
	cycles, err := c.QuarterlyCycles(ctx)
	if err != nil {
		return Cycle{}, false, err
	}
	for _, cy := range cycles {
		if !cy.StartTime.After(ref) {
			return cy, true, nil
		}
	}
	return Cycle{}, false, nil
}

type cycleCheckinsResponse struct {
	Checkins []struct {
		ID           flexString  `json:"id"`
		Name         string      `json:"name"`
		UserID       flexString  `json:"user_id"`
		CurrentValue flexFloat   `json:"current_value"`
		Since        unixSeconds `json:"since"`
		ObjExport    struct {
			ID flexString `json:"id"`
		} `json:"obj_export"`
	} `json:"checkins"`
}

// CycleCheckins walks the paginated check-in feed for a cycle.
func (c *GoalClient) CycleCheckins(ctx context.Context, cyclePath string) ([]GoalCheckin, error) {
	var all []GoalCheckin
	for page := 1; page <= maxGoalPages; page++ {
		form := authValues(c.token)
		form.Set("path", cyclePath)
		form.Set("page", strconv.Itoa(page))

		var resp cycleCheckinsResponse
		if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/cycle/checkins", form, &resp); err != nil {
			return nil, err
		}
		if len(resp.Checkins) == 0 {
			break
		}
		for _, ci := range resp.Checkins {
			all = append(all, GoalCheckin{
				ID:           ci.ID.String(),
				Name:         ci.Name,
				UserID:       ci.UserID.String(),
				KRID:         ci.ObjExport.ID.String(),
				CurrentValue: float64(ci.CurrentValue),
				Since:        ci.Since.Time(c.loc),
			})
		}
		// short page ends the feed
		if len(resp.Checkins) < 10 {
			break
		}
	}

	c.logger.Info("goal checkins loaded",
		zap.String("cycle", cyclePath),
		zap.Int("checkins", len(all)),
	)
	return all, nil
}
