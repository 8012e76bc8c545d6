package basehr

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultInsideBaseURL = "https://inside.base.vn"
	maxInsidePages       = 10
	insidePageSize       = 20
)

// FeedItem is one post from the internal social feed: company news or a
// user article.
type FeedItem struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // "news" or "article"
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Link       string    `json:"link,omitempty"`
	Since      time.Time `json:"since"`
}

// InsideClient pulls the social feed. Unlike the other products this API is
// GET with query-string auth.
type InsideClient struct {
	client  *Client
	baseURL string
	token   string
	loc     *time.Location
	logger  *zap.Logger
}

func NewInsideClient(client *Client, baseURL, token string, loc *time.Location, logger ...*zap.Logger) *InsideClient {
	l := zap.L().Named("basehr.inside")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("basehr.inside")
	}
	if baseURL == "" {
		baseURL = defaultInsideBaseURL
	}
	if loc == nil {
		loc = time.Local
	}
	return &InsideClient{client: client, baseURL: baseURL, token: token, loc: loc, logger: l}
}

type insideFeedResponse struct {
	Code    flexInt          `json:"code"`
	News    []insideFeedItem `json:"news"`
	Updates []insideFeedItem `json:"updates"`
}

type insideFeedItem struct {
	ID      flexString  `json:"id"`
	Name    string      `json:"name"`
	Content string      `json:"content"`
	UserID  flexString  `json:"user_id"`
	Link    string      `json:"link"`
	Since   unixSeconds `json:"since"`
}

// Feed fetches company news and user articles, newest pages first, merged
// into one slice. authorNames may be nil.
func (c *InsideClient) Feed(ctx context.Context, authorNames map[string]string) ([]FeedItem, error) {
	news, err := c.paginate(ctx, "/extapi/v2/companynews/get", "news", authorNames)
	if err != nil {
		return nil, err
	}
	articles, err := c.paginate(ctx, "/extapi/v2/articles/get", "article", authorNames)
	if err != nil {
		return nil, err
	}
	return append(news, articles...), nil
}

func (c *InsideClient) paginate(ctx context.Context, path, itemType string, authorNames map[string]string) ([]FeedItem, error) {
	var all []FeedItem
	for page := 1; page <= maxInsidePages; page++ {
		query := url.Values{
			"access_token": []string{c.token},
			"page":         []string{strconv.Itoa(page)},
		}

		var resp insideFeedResponse
		if err := c.client.getJSON(ctx, c.baseURL+path, query, &resp); err != nil {
			return nil, err
		}
		items := resp.News
		if itemType == "article" {
			items = resp.Updates
		}
		if resp.Code.Int() != 1 || len(items) == 0 {
			break
		}

		for _, it := range items {
			item := FeedItem{
				ID:       it.ID.String(),
				Type:     itemType,
				Name:     StripHTML(it.Name),
				Content:  StripHTML(it.Content),
				AuthorID: it.UserID.String(),
				Link:     convertInsideLink(it.Link),
				Since:    it.Since.Time(c.loc),
			}
			if name, ok := authorNames[item.AuthorID]; ok {
				item.AuthorName = name
			}
			all = append(all, item)
		}
		if len(items) < insidePageSize {
			break
		}
	}

	c.logger.Info("inside feed loaded",
		zap.String("type", itemType),
		zap.Int("items", len(all)),
	)
	return all, nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// StripHTML flattens rich-text content to plain text.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	text = html.UnescapeString(text)
	text = htmlTagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// convertInsideLink rewrites the app-scheme deep links the API returns into
// browsable URLs.
func convertInsideLink(link string) string {
	const scheme = "base-inside://"
	if strings.HasPrefix(link, scheme) {
		return "https://inside.base.vn/" + strings.TrimPrefix(link, scheme)
	}
	return link
}
