package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"chartsync/internal/crossfilter"
	"chartsync/internal/logger"
)

// FeedLoader fetches an RSS or Atom feed and turns its items into records
type FeedLoader struct {
	client *resty.Client
	parser *gofeed.Parser
	log    *logger.Logger
}

// NewFeedLoader creates a loader with its own HTTP client
func NewFeedLoader() *FeedLoader {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	return NewFeedLoaderWithClient(client)
}

// NewFeedLoaderWithClient creates a loader on a shared client
func NewFeedLoaderWithClient(client *resty.Client) *FeedLoader {
	return &FeedLoader{
		client: client,
		parser: gofeed.NewParser(),
		log:    logger.GetGlobalLogger().WithComponent("datasource"),
	}
}

// Fetch downloads and parses the feed at url
func (l *FeedLoader) Fetch(ctx context.Context, url string) ([]crossfilter.Record, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d", url, resp.StatusCode())
	}

	feed, err := l.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", url, err)
	}

	records := FeedRecords(feed)
	l.log.Info("Loaded feed", logger.Fields{"url": url, "items": len(records)})
	return records, nil
}

// FeedRecords flattens feed items. Each record carries feed, title, link, author, category
// and, when the item is dated, published, day, weekday and hour.
func FeedRecords(feed *gofeed.Feed) []crossfilter.Record {
	records := make([]crossfilter.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec := crossfilter.Record{
			"feed":     feed.Title,
			"title":    item.Title,
			"link":     item.Link,
			"author":   "",
			"category": "",
			"count":    1.0,
		}
		if item.Author != nil {
			rec["author"] = item.Author.Name
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			rec["author"] = item.Authors[0].Name
		}
		if len(item.Categories) > 0 {
			rec["category"] = strings.TrimSpace(item.Categories[0])
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil {
			t := published.UTC()
			rec["published"] = t
			rec["day"] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			rec["weekday"] = t.Weekday().String()
			rec["hour"] = float64(t.Hour())
		}
		records = append(records, rec)
	}
	return records
}

// FeedSource binds a loader to a URL
type FeedSource struct {
	URL    string
	Loader *FeedLoader
}

// Load fetches the feed
func (s FeedSource) Load(ctx context.Context) ([]crossfilter.Record, error) {
	loader := s.Loader
	if loader == nil {
		loader = NewFeedLoader()
	}
	return loader.Fetch(ctx, s.URL)
}
