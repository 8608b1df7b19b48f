package transport

import (
	"errors"
	"testing"
	"time"
)

func TestParseFeed_RSS(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	records, err := ParseFeed([]byte(sampleRSS), "application/rss+xml", now)
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records (linkless item dropped), got %d", len(records))
	}

	first := records[0]
	if first.URL != "https://example.com/a" {
		t.Errorf("unexpected url %s", first.URL)
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Errorf("expected published %v, got %v", want, first.PublishedAt)
	}
	if first.ImageURL != "https://img.example.com/a.jpg" {
		t.Errorf("expected src image to win over data-src, got %q", first.ImageURL)
	}

	if !records[1].PublishedAt.Equal(now) {
		t.Errorf("expected missing date to default to now, got %v", records[1].PublishedAt)
	}
	if records[1].ImageURL != "" {
		t.Errorf("expected no image, got %q", records[1].ImageURL)
	}

	if records[2].ImageURL != "https://img.example.com/thumb.jpg" {
		t.Errorf("expected media thumbnail, got %q", records[2].ImageURL)
	}
}

func TestParseFeed_Atom(t *testing.T) {
	records, err := ParseFeed([]byte(sampleAtom), "application/atom+xml", time.Now())
	if err != nil {
		t.Fatalf("ParseFeed failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].URL != "https://example.com/atom/1" || records[0].Summary != "Atom summary" {
		t.Errorf("unexpected record %+v", records[0])
	}
}

func TestParseFeed_Empty(t *testing.T) {
	if _, err := ParseFeed([]byte("   "), "", time.Now()); !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("expected ErrEmptyFeed, got %v", err)
	}

	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`
	if _, err := ParseFeed([]byte(empty), "", time.Now()); !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("expected ErrEmptyFeed for feed without items, got %v", err)
	}
}

func TestParseFeed_Garbage(t *testing.T) {
	if _, err := ParseFeed([]byte("<html><body>not a feed</body></html>"), "text/html", time.Now()); err == nil {
		t.Error("expected error for non-feed document")
	}
}

func TestExtractImage(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"no image", "<p>hello</p>", ""},
		{"src", `<img src="https://x/1.png">`, "https://x/1.png"},
		{"data-src only", `<img data-src="https://x/lazy.png">`, "https://x/lazy.png"},
		{"src preferred over earlier data-src", `<img data-src="https://x/lazy.png"><img src="https://x/2.png">`, "https://x/2.png"},
		{"blank src skipped", `<img src=" "><img src="https://x/3.png">`, "https://x/3.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractImage(tt.fragment); got != tt.want {
				t.Errorf("ExtractImage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasXMLEncoding(t *testing.T) {
	if !hasXMLEncoding([]byte(`<?xml version="1.0" encoding="EUC-KR"?><rss/>`)) {
		t.Error("expected declaration to be detected")
	}
	if hasXMLEncoding([]byte(`<?xml version="1.0"?><rss/>`)) {
		t.Error("expected no encoding declaration")
	}
	if hasXMLEncoding([]byte(`<rss encoding="x"/>`)) {
		t.Error("attribute outside declaration must not count")
	}
}
