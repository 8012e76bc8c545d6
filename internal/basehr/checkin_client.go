package basehr

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"

	"go.uber.org/zap"
)

const defaultCheckinBaseURL = "https://checkin.base.vn"

// CheckinClient pulls raw punch logs from the check-in product.
type CheckinClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewCheckinClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *CheckinClient {
	l := zap.L().Named("basehr.checkin")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.checkin")
	}
	if baseURL == "" {
		baseURL = defaultCheckinBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &CheckinClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

type checkinLogsResponse struct {
	Code flexInt `json:"code"`
	Logs []struct {
		ID    flexString `json:"id"`
		Code  string     `json:"code"`
		Name  string     `json:"name"`
		Email string     `json:"email"`
		// keyed by the day's epoch timestamp
		Logs map[string]struct {
			Logs []struct {
				Time     unixSeconds `json:"time"`
				Checkout flexInt     `json:"checkout"`
				Note     string      `json:"note"`
			} `json:"logs"`
		} `json:"logs"`
	} `json:"logs"`
}

// Logs fetches every punch between start and end, flattened and sorted by
// employee then time.
func (c *CheckinClient) Logs(ctx context.Context, start, end time.Time) ([]attendance.CheckinEvent, error) {
	form := authValues(c.token)
	form.Set("start_date", strconv.FormatInt(start.Unix(), 10))
	form.Set("end_date", strconv.FormatInt(end.Unix(), 10))

	var resp checkinLogsResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/getlogs", form, &resp); err != nil {
		return nil, err
	}
	if resp.Code.Int() != 1 {
		c.logger.Warn("getlogs returned non-success code", zap.Int("code", resp.Code.Int()))
		return nil, errUpstreamCode("getlogs", resp.Code.Int())
	}

	var events []attendance.CheckinEvent
	for _, employee := range resp.Logs {
		if employee.Name == "" {
			continue
		}
		for _, day := range employee.Logs {
			for _, punch := range day.Logs {
				if punch.Time.IsZero() {
					continue
				}
				events = append(events, attendance.CheckinEvent{
					EmployeeName: employee.Name,
					Time:         punch.Time.Time(c.loc),
					IsCheckout:   punch.Checkout.Int() != 0,
					Note:         punch.Note,
				})
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].EmployeeName != events[j].EmployeeName {
			return events[i].EmployeeName < events[j].EmployeeName
		}
		return events[i].Time.Before(events[j].Time)
	})

	c.logger.Info("checkin logs loaded",
		zap.Int("events", len(events)),
		zap.Time("from", start),
		zap.Time("to", end),
	)
	return events, nil
}
