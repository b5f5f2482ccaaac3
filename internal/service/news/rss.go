package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

// browser-like UA; Google News rejects default Go clients
const rssUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	redirectArgRe = regexp.MustCompile(`url=([^&]+)`)
)

// GoogleNewsSource searches one publisher through the Google News RSS
// feed, filtered with a site: operator.
type GoogleNewsSource struct {
	label   string // e.g. "Bloomberg"
	site    string // e.g. "bloomberg.com"
	baseURL string
	http    *xhttp.Client
	maxItems int
}

func NewGoogleNewsSource(label, site string, hc *xhttp.Client, maxItems int) *GoogleNewsSource {
	if maxItems <= 0 {
		maxItems = 5
	}
	return &GoogleNewsSource{
		label:    label,
		site:     site,
		baseURL:  "https://news.google.com/rss/search",
		http:     hc,
		maxItems: maxItems,
	}
}

func (s *GoogleNewsSource) Name() string { return s.label }

type rssFeed struct {
	Items   []rssItem `xml:"channel>item"`
	Entries []rssItem `xml:"entry"` // Atom fallback
}

type rssItem struct {
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	ID        string `xml:"id"`
	PubDate   string `xml:"pubDate"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	Source    string `xml:"source"`
}

func (s *GoogleNewsSource) Search(ctx context.Context, query string) ([]models.NewsItem, error) {
	var raw []byte
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL,
		Headers: map[string]string{
			"User-Agent": rssUserAgent,
		},
		QueryParams: map[string][]string{
			"q":    {fmt.Sprintf("%s site:%s", query, s.site)},
			"hl":   {"en-US"},
			"gl":   {"US"},
			"ceid": {"US:en"},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", s.label, err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("%s feed parse: %w", s.label, err)
	}

	entries := feed.Items
	if len(entries) == 0 {
		entries = feed.Entries
	}
	if len(entries) > s.maxItems {
		entries = entries[:s.maxItems]
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, e := range entries {
		title := stripHTML(e.Title)
		if title == "" {
			continue
		}
		source := strings.TrimSpace(e.Source)
		if source == "" {
			source = s.label
		}
		items = append(items, models.NewsItem{
			Title:  title,
			Source: source,
			URL:    resolveLink(firstNonEmpty(e.Link, e.ID)),
			Time:   firstNonEmpty(e.PubDate, e.Published, e.Updated),
		})
	}
	return items, nil
}

// resolveLink unwraps Google News redirect links that carry the original
// URL in a query parameter.
func resolveLink(link string) string {
	if link == "" || !strings.Contains(link, "news.google.com") {
		return link
	}
	if m := redirectArgRe.FindStringSubmatch(link); m != nil {
		if orig, err := url.QueryUnescape(m[1]); err == nil {
			return orig
		}
	}
	return link
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
