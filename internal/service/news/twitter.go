package news

import (
	"context"
	"fmt"
	"strconv"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

const twitterSourceName = "X (Twitter)"

// TwitterSource searches recent posts through the API v2 recent-search
// endpoint. Without a bearer token the source is disabled and yields a
// single hint item instead of failing.
type TwitterSource struct {
	bearer   string
	baseURL  string
	http     *xhttp.Client
	maxItems int
}

func NewTwitterSource(bearer string, hc *xhttp.Client, maxItems int) *TwitterSource {
	if maxItems <= 0 {
		maxItems = 5
	}
	// the API rejects max_results below 10
	if maxItems < 10 {
		maxItems = 10
	}
	return &TwitterSource{
		bearer:   bearer,
		baseURL:  "https://api.twitter.com/2/tweets/search/recent",
		http:     hc,
		maxItems: maxItems,
	}
}

func (s *TwitterSource) Name() string { return twitterSourceName }

type tweetSearchResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		AuthorID  string `json:"author_id"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

func (s *TwitterSource) Search(ctx context.Context, query string) ([]models.NewsItem, error) {
	if s.bearer == "" {
		return []models.NewsItem{{
			Title:  "[X search disabled: set TWITTER_BEARER_TOKEN]",
			Source: twitterSourceName,
			URL:    "https://developer.twitter.com/en/portal/dashboard",
		}}, nil
	}

	var payload tweetSearchResponse
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + s.bearer,
		},
		QueryParams: map[string][]string{
			"query":        {fmt.Sprintf("(%s) lang:en -is:retweet", query)},
			"max_results":  {strconv.Itoa(s.maxItems)},
			"tweet.fields": {"created_at,text"},
			"expansions":   {"author_id"},
			"user.fields":  {"username"},
		},
	}, &payload)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}

	users := make(map[string]string, len(payload.Includes.Users))
	for _, u := range payload.Includes.Users {
		users[u.ID] = u.Username
	}

	items := make([]models.NewsItem, 0, len(payload.Data))
	for _, t := range payload.Data {
		username := users[t.AuthorID]
		if username == "" {
			username = "i"
		}
		items = append(items, models.NewsItem{
			Title:  truncateRunes(t.Text, 200),
			Source: twitterSourceName,
			URL:    fmt.Sprintf("https://x.com/%s/status/%s", username, t.ID),
			Time:   t.CreatedAt,
		})
	}
	return items, nil
}

func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
