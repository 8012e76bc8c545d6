package basehr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	basehrerrors "github.com/xnk3-aplus/360-Base/internal/basehr/errors"
	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second

	// pagination loops must not hammer the upstream
	defaultRequestsPerSecond = 5
)

// Client is the shared transport for every Base product API. The products
// differ only in host and payload shape; authentication, form encoding,
// throttling and error mapping are identical across them.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewClient(timeout time.Duration, logger ...*zap.Logger) *Client {
	l := zap.L().Named("basehr.client")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.client")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		logger:  l,
	}
}

// authValues picks the token field the endpoint expects. Tokens issued by
// the v2 console contain a tilde and go into access_token_v2.
func authValues(token string) url.Values {
	key := "access_token"
	if strings.Contains(token, "~") {
		key = "access_token_v2"
	}
	return url.Values{key: []string{token}}
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.Wrap(err, apperror.CodeUpstreamUnavailable, "request throttled past deadline", http.StatusBadGateway)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "building upstream request", http.StatusInternalServerError)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, endpoint, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperror.Wrap(err, apperror.CodeUpstreamUnavailable, "request throttled past deadline", http.StatusBadGateway)
	}

	full := endpoint
	if len(query) > 0 {
		full = endpoint + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "building upstream request", http.StatusInternalServerError)
	}

	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upstream call failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return apperror.Wrap(err, apperror.CodeUpstreamUnavailable, basehrerrors.ErrUpstreamUnavailable.Message, http.StatusBadGateway)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("upstream returned non-200",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return apperror.Wrap(
			fmt.Errorf("status %d from %s", resp.StatusCode, endpoint),
			apperror.CodeUpstreamUnavailable,
			basehrerrors.ErrUpstreamRejected.Message,
			http.StatusBadGateway,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeUpstreamUnavailable, basehrerrors.ErrMalformedPayload.Message, http.StatusBadGateway)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Warn("upstream payload unmarshal failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return apperror.Wrap(err, apperror.CodeUpstreamUnavailable, basehrerrors.ErrMalformedPayload.Message, http.StatusBadGateway)
	}

	c.logger.Debug("upstream call",
		zap.String("endpoint", endpoint),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// errUpstreamCode maps a non-success application-level code into the shared
// upstream error. The extapi signals success with code == 1.
func errUpstreamCode(endpoint string, code int) error {
	return apperror.Wrap(
		fmt.Errorf("code %d from %s", code, endpoint),
		apperror.CodeUpstreamUnavailable,
		basehrerrors.ErrUpstreamRejected.Message,
		http.StatusBadGateway,
	)
}
