package basehr

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/identity"

	"go.uber.org/zap"
)

const defaultAccountBaseURL = "https://account.base.vn"

// AccountClient loads the employee directory from the account product. It
// implements identity.Loader so the directory cache can own refresh policy.
type AccountClient struct {
	client    *Client
	baseURL   string
	token     string
	groupPath string
	loc       *time.Location
	logger    *zap.Logger
}

func NewAccountClient(client *Client, baseURL, token, groupPath string, loc *time.Location, logger ...*zap.Logger) *AccountClient {
	l := zap.L().Named("basehr.account")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.account")
	}
	if baseURL == "" {
		baseURL = defaultAccountBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &AccountClient{client: client, baseURL: baseURL, token: token, groupPath: groupPath, loc: loc, logger: l}
}

type groupGetResponse struct {
	Group struct {
		Members []struct {
			ID       flexString  `json:"id"`
			Username string      `json:"username"`
			Name     string      `json:"name"`
			Email    string      `json:"email"`
			Since    unixSeconds `json:"since"`
		} `json:"members"`
	} `json:"group"`
}

// LoadDirectory fetches the configured group's members.
func (c *AccountClient) LoadDirectory(ctx context.Context) ([]identity.Employee, error) {
	form := authValues(c.token)
	form.Set("path", c.groupPath)

	var resp groupGetResponse
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/group/get", form, &resp); err != nil {
		return nil, err
	}

	employees := make([]identity.Employee, 0, len(resp.Group.Members))
	for _, m := range resp.Group.Members {
		if m.Username == "" || m.Name == "" {
			continue
		}
		employees = append(employees, identity.Employee{
			ID:          m.ID.String(),
			Username:    m.Username,
			DisplayName: m.Name,
			Email:       m.Email,
			JoinedAt:    m.Since.Time(c.loc),
		})
	}

	c.logger.Info("directory members loaded",
		zap.String("group", c.groupPath),
		zap.Int("members", len(employees)),
	)
	return employees, nil
}

// UserIDNames returns the whole tenant's id -> display-name map from
// users/get_list. Workflow jobs and feed items reference authors by numeric
// id only.
func (c *AccountClient) UserIDNames(ctx context.Context) (map[string]string, error) {
	var raw json.RawMessage
	if err := c.client.postForm(ctx, c.baseURL+"/extapi/v1/users/get_list", authValues(c.token), &raw); err != nil {
		return nil, err
	}

	// the endpoint answers either {"users": [...]} or a bare array
	type userRow struct {
		ID   flexString `json:"id"`
		Name string     `json:"name"`
	}
	var envelope struct {
		Users []userRow `json:"users"`
	}
	if err := json.Unmarshal(unwrapFirst(raw), &envelope); err != nil || len(envelope.Users) == 0 {
		var list []userRow
		if err := json.Unmarshal(raw, &list); err == nil {
			envelope.Users = list
		}
	}

	out := make(map[string]string, len(envelope.Users))
	for _, u := range envelope.Users {
		if u.ID != "" && u.Name != "" {
			out[u.ID.String()] = u.Name
		}
	}
	c.logger.Info("user id map loaded", zap.Int("users", len(out)))
	return out, nil
}
