package syndication

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

type stubQuerier struct {
	records []domain.ClassifiedRecord
	err     error
	last    storage.RecordQuery
}

func (s *stubQuerier) QueryRecords(_ context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error) {
	s.last = q
	return s.records, s.err
}

func TestExporter_RendersItems(t *testing.T) {
	published := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	store := &stubQuerier{records: []domain.ClassifiedRecord{
		{
			RawRecord: domain.RawRecord{
				Title:       "이웃을 도운 청년",
				Summary:     "<p>따뜻한 이야기</p>",
				URL:         "https://news.example/a?x=1&y=2",
				PublishedAt: published,
			},
			Category: "인물",
			Score:    7,
		},
	}}

	body, ok := NewExporter(store, DefaultChannel).Render(context.Background())
	if !ok {
		t.Fatal("expected successful render")
	}
	if store.last.Limit != TopN || store.last.CuratedOnly || store.last.Category != "all" {
		t.Errorf("unexpected query %+v", store.last)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		t.Fatalf("rendered feed does not parse: %v\n%s", err, body)
	}
	if feed.FeedVersion != "2.0" {
		t.Errorf("expected RSS 2.0, got %q", feed.FeedVersion)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Title != "이웃을 도운 청년" {
		t.Errorf("unexpected title %q", item.Title)
	}
	if item.Link != "https://news.example/a?x=1&y=2" {
		t.Errorf("unexpected link %q", item.Link)
	}
	if item.PublishedParsed == nil || !item.PublishedParsed.Equal(published) {
		t.Errorf("unexpected pubDate %v", item.PublishedParsed)
	}
	if len(item.Categories) != 1 || item.Categories[0] != "인물" {
		t.Errorf("unexpected categories %v", item.Categories)
	}
}

func TestExporter_PlaceholderOnStoreError(t *testing.T) {
	store := &stubQuerier{err: errors.New("db down")}

	body, ok := NewExporter(store, DefaultChannel).Render(context.Background())
	if ok {
		t.Fatal("expected placeholder")
	}
	if !strings.Contains(string(body), PlaceholderTitle) {
		t.Errorf("placeholder missing title:\n%s", body)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		t.Fatalf("placeholder does not parse: %v", err)
	}
	if len(feed.Items) != 1 {
		t.Errorf("expected one placeholder item, got %d", len(feed.Items))
	}
}

func TestExporter_ReplacesCharactersOutsideXMLRange(t *testing.T) {
	store := &stubQuerier{records: []domain.ClassifiedRecord{
		{
			RawRecord: domain.RawRecord{
				Title:       "희망\x0b뉴스",
				Summary:     "bad \x01 byte \xff here",
				URL:         "https://news.example/control",
				PublishedAt: time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
			},
			Category: "사회",
			Score:    6,
		},
	}}

	body, ok := NewExporter(store, DefaultChannel).Render(context.Background())
	if !ok {
		t.Fatal("expected successful render")
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("rendered feed is not well-formed: %v\n%s", err, body)
		}
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		t.Fatalf("rendered feed does not parse: %v", err)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(feed.Items))
	}
	title := feed.Items[0].Title
	if !strings.Contains(title, "희망") || !strings.Contains(title, "뉴스") || strings.ContainsRune(title, '\x0b') {
		t.Errorf("unexpected title %q", title)
	}
}
