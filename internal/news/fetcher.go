package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// ErrNoArticles is returned when the feed parsed fine but has no entries
var ErrNoArticles = errors.New("no articles found in RSS feed")

// Article represents a news article from the RSS feed
type Article struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishDate time.Time
}

// HeadlineFetcher defines the interface for pulling headlines from a feed
type HeadlineFetcher interface {
	// FetchHeadlines returns at most limit headlines in feed order
	FetchHeadlines(ctx context.Context, limit int) ([]string, error)
}

// RSSFetcher implements HeadlineFetcher using RSS/Atom feeds
type RSSFetcher struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewRSSFetcher creates a new RSS-based fetcher
func NewRSSFetcher(feedURL string, timeout time.Duration, userAgent string) *RSSFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout: timeout,
	}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}

	return &RSSFetcher{
		feedURL: feedURL,
		parser:  parser,
	}
}

// FetchArticles fetches all articles from the feed, in feed order
func (f *RSSFetcher) FetchArticles(ctx context.Context) ([]Article, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	if len(feed.Items) == 0 {
		return nil, ErrNoArticles
	}

	return lo.Map(feed.Items, func(item *gofeed.Item, _ int) Article {
		return toArticle(item)
	}), nil
}

// FetchHeadlines fetches the feed and formats the first limit titles as "- <title>"
func (f *RSSFetcher) FetchHeadlines(ctx context.Context, limit int) ([]string, error) {
	articles, err := f.FetchArticles(ctx)
	if err != nil {
		return nil, err
	}
	return Headlines(articles, limit), nil
}

// Headlines formats up to limit article titles as prompt lines, preserving order
func Headlines(articles []Article, limit int) []string {
	if limit < 0 {
		limit = 0
	}
	top := articles[:min(limit, len(articles))]

	return lo.Map(top, func(a Article, _ int) string {
		return FormatHeadline(a.Title)
	})
}

// FormatHeadline renders one title as a bullet line
func FormatHeadline(title string) string {
	return "- " + title
}

func toArticle(item *gofeed.Item) Article {
	article := Article{
		GUID:        item.GUID,
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
	}

	// Parse publish date
	if item.PublishedParsed != nil {
		article.PublishDate = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		article.PublishDate = *item.UpdatedParsed
	}

	return article
}
