package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/compete-app/compete-backend/models"
)

const newsFetchTimeout = 10 * time.Second

const maxFeedBytes = 2 << 20

type NewsService interface {
	// Fetch returns items from the first feed URL that yields a parseable
	// feed. It never returns an error to callers: an empty slice stands in
	// for "news unavailable right now".
	Fetch(ctx context.Context) []models.NewsItem
}

type newsService struct {
	feedURLs   []string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewNewsService(feedURLs []string, logger *slog.Logger) NewsService {
	return &newsService{
		feedURLs:   feedURLs,
		httpClient: &http.Client{Timeout: newsFetchTimeout},
		logger:     logger,
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func (s *newsService) Fetch(ctx context.Context) []models.NewsItem {
	for _, u := range s.feedURLs {
		items, err := s.fetchOne(ctx, u)
		if err != nil {
			s.logger.Warn("news feed fetch failed", slog.String("url", u), slog.Any("error", err))
			continue
		}
		if len(items) > 0 {
			return items
		}
	}
	return []models.NewsItem{}
}

func (s *newsService) fetchOne(ctx context.Context, feedURL string) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}

	items, err := parseRSS(body)
	if err != nil {
		// Some feed mirrors truncate mid-document; keep the complete items.
		repaired, repairErr := parseRSS(repairTruncatedFeed(body))
		if repairErr != nil {
			return nil, err
		}
		items = repaired
	}
	return items, nil
}

func parseRSS(body []byte) ([]models.NewsItem, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(feed.Channel.Items))
	for _, it := range feed.Channel.Items {
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			Description: strings.TrimSpace(it.Description),
			PubDate:     strings.TrimSpace(it.PubDate),
		})
	}
	return items, nil
}

// repairTruncatedFeed cuts a truncated RSS document back to its last
// complete </item> and re-closes the document tags.
func repairTruncatedFeed(body []byte) []byte {
	text := string(body)
	idx := strings.LastIndex(text, "</item>")
	if idx < 0 {
		return body
	}
	return []byte(text[:idx+len("</item>")] + "</channel></rss>")
}
