package basehr

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/attendance"

	"go.uber.org/zap"
)

const defaultTimeoffBaseURL = "https://timeoff.base.vn"

// NameLookup resolves a username into a display name. Satisfied by
// identity.Directory.
type NameLookup interface {
	NameByUsername(username string) string
}

// TimeoffClient pulls leave requests from the time-off product.
type TimeoffClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewTimeoffClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *TimeoffClient {
	l := zap.L().Named("basehr.timeoff")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.timeoff")
	}
	if baseURL == "" {
		baseURL = defaultTimeoffBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &TimeoffClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

// TimeoffListOptions narrows the listing window. Zero fields are omitted.
type TimeoffListOptions struct {
	StartDateFrom time.Time
	StartDateTo   time.Time
	EndDateFrom   time.Time
	EndDateTo     time.Time
}

type timeoffListResponse struct {
	Timeoffs []struct {
		ID        flexString  `json:"id"`
		Username  string      `json:"username"`
		State     string      `json:"state"`
		Metatype  string      `json:"metatype"`
		StartDate unixSeconds `json:"start_date"`
		EndDate   unixSeconds `json:"end_date"`
		Form      []struct {
			Name  string     `json:"name"`
			Value flexString `json:"value"`
		} `json:"form"`
		Shifts []struct {
			Shifts []struct {
				Value    string    `json:"value"`
				NumLeave flexFloat `json:"num_leave"`
			} `json:"shifts"`
		} `json:"shifts"`
		Data struct {
			FinalApproved struct {
				Username string `json:"username"`
			} `json:"final_approved"`
		} `json:"data"`
	} `json:"timeoffs"`
}

// The leave form is free-form per workflow; these field names are the ones
// HR actually uses, in priority order.
var reasonFormFields = []string{
	"Lý do xin nghỉ phép",
	"Lý do xin nghỉ",
	"Lý do",
	"Lý do cá nhân",
	"Bận việc cá nhân",
	"Việc riêng",
}

// List fetches leave requests. names fills in display names for the
// requester and final approver; a nil lookup leaves usernames as-is.
func (c *TimeoffClient) List(ctx context.Context, opts TimeoffListOptions, names NameLookup) ([]attendance.TimeoffRequest, error) {
	form := authValues(c.token)
	form.Set("items_per_page", "100")
	setUnix := func(key string, t time.Time) {
		if !t.IsZero() {
			form.Set(key, strconv.FormatInt(t.Unix(), 10))
		}
	}
	setUnix("start_date_from", opts.StartDateFrom)
	setUnix("start_date_to", opts.StartDateTo)
	setUnix("end_date_from", opts.EndDateFrom)
	setUnix("end_date_to", opts.EndDateTo)

	var resp timeoffListResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/timeoff/list", form, &resp); err != nil {
		return nil, err
	}

	requests := make([]attendance.TimeoffRequest, 0, len(resp.Timeoffs))
	for _, to := range resp.Timeoffs {
		formData := make(map[string]string, len(to.Form))
		for _, field := range to.Form {
			if field.Name != "" && field.Value != "" {
				formData[field.Name] = field.Value.String()
			}
		}

		var markers []string
		var leaveDays float64
		for _, day := range to.Shifts {
			for _, shift := range day.Shifts {
				if shift.Value != "" {
					markers = append(markers, shift.Value)
				}
				leaveDays += float64(shift.NumLeave)
			}
		}

		employeeName := to.Username
		approver := to.Data.FinalApproved.Username
		if names != nil {
			employeeName = names.NameByUsername(to.Username)
			if approver != "" {
				approver = names.NameByUsername(approver)
			}
		}

		requests = append(requests, attendance.TimeoffRequest{
			ID:           to.ID.String(),
			EmployeeName: employeeName,
			Username:     to.Username,
			StartDate:    to.StartDate.Time(c.loc),
			EndDate:      to.EndDate.Time(c.loc),
			State:        to.State,
			Metatype:     to.Metatype,
			Reason:       extractReason(formData, to.Metatype),
			ShiftMarkers: markers,
			LeaveDays:    leaveDays,
			Approver:     approver,
		})
	}

	c.logger.Info("timeoff requests loaded", zap.Int("requests", len(requests)))
	return requests, nil
}

// extractReason walks the known form fields in priority order, then falls
// back to a synthetic reason derived from the request metatype so business
// trips and outside work still classify correctly.
func extractReason(formData map[string]string, metatype string) string {
	for _, field := range reasonFormFields {
		if v := strings.TrimSpace(formData[field]); v != "" {
			return v
		}
	}
	switch metatype {
	case "business":
		return "business"
	case "outside":
		return "remote"
	}
	return ""
}
