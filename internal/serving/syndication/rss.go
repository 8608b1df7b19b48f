// Package syndication renders stored records as an RSS 2.0 document.
package syndication

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/feeds"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

const (
	// TopN is the number of records exported.
	TopN = 20

	PlaceholderTitle       = "서비스 준비 중입니다"
	placeholderDescription = "곧 따뜻한 뉴스로 찾아뵙겠습니다."
)

// Channel describes the exported feed.
type Channel struct {
	Title       string
	Description string
	Link        string
	Language    string
}

// DefaultChannel is used when no channel is configured.
var DefaultChannel = Channel{
	Title:       "Good News - 따뜻하고 희망찬 뉴스",
	Description: "긍정적인 뉴스만을 골라 전하는 Good News",
	Link:        "http://localhost:8080",
	Language:    "ko-KR",
}

// Querier reads the records to export.
type Querier interface {
	QueryRecords(ctx context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error)
}

// Exporter renders the top stored records.
type Exporter struct {
	store   Querier
	channel Channel
	now     func() time.Time
	log     *slog.Logger
}

// NewExporter creates an exporter for channel.
func NewExporter(store Querier, channel Channel) *Exporter {
	return &Exporter{
		store:   store,
		channel: channel,
		now:     time.Now,
		log:     slog.Default().With("component", "syndication"),
	}
}

// Render returns the feed document. On a repository failure it returns
// a placeholder document and ok=false; it never returns an error.
func (e *Exporter) Render(ctx context.Context) (body []byte, ok bool) {
	records, err := e.store.QueryRecords(ctx, storage.RecordQuery{Category: "all", Limit: TopN})
	if err != nil {
		e.log.Error("Failed to load records for feed", "error", err)
		return e.placeholder(), false
	}

	body, err = e.render(records)
	if err != nil {
		e.log.Error("Failed to encode feed", "error", err)
		return e.placeholder(), false
	}
	return body, true
}

func (e *Exporter) render(records []domain.ClassifiedRecord) ([]byte, error) {
	now := e.now().UTC()
	feed := e.feed(now)
	feed.Ttl = 60
	feed.Items = make([]*feeds.RssItem, 0, len(records))
	for _, r := range records {
		feed.Items = append(feed.Items, &feeds.RssItem{
			Title:       r.Title,
			Description: r.Summary,
			Link:        r.URL,
			Guid:        &feeds.RssGuid{Id: r.URL, IsPermaLink: "true"},
			PubDate:     r.PublishedAt.UTC().Format(time.RFC1123Z),
			Category:    r.Category,
		})
	}
	return encode(feed)
}

func (e *Exporter) placeholder() []byte {
	now := e.now().UTC()
	feed := e.feed(now)
	feed.Items = []*feeds.RssItem{{
		Title:       PlaceholderTitle,
		Description: placeholderDescription,
		Link:        e.channel.Link,
		PubDate:     now.Format(time.RFC1123Z),
	}}
	body, err := encode(feed)
	if err != nil {
		return []byte(xml.Header + fmt.Sprintf("<rss version=\"2.0\"><channel><title>%s</title></channel></rss>", PlaceholderTitle))
	}
	return body
}

func (e *Exporter) feed(now time.Time) *feeds.RssFeed {
	return &feeds.RssFeed{
		Title:         e.channel.Title,
		Description:   e.channel.Description,
		Link:          e.channel.Link,
		Language:      e.channel.Language,
		LastBuildDate: now.Format(time.RFC1123Z),
	}
}

// encode escapes text as character data, so characters outside the XML
// range come out as U+FFFD instead of breaking the document.
func encode(feed *feeds.RssFeed) ([]byte, error) {
	out, err := feeds.ToXML(feed)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
