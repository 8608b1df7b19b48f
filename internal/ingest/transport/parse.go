package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html/charset"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// ParseFeed decodes an RSS, Atom or RDF document into records.
// Items without a link are dropped; a missing date defaults to now.
func ParseFeed(body []byte, contentType string, now time.Time) ([]domain.RawRecord, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}

	// gofeed parsers keep per-document state, so one per call.
	feed, err := gofeed.NewParser().Parse(decodeBody(body, contentType))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	records := make([]domain.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if rec, ok := normalizeItem(item, now); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}
	return records, nil
}

func normalizeItem(item *gofeed.Item, now time.Time) (domain.RawRecord, bool) {
	link := strings.TrimSpace(item.Link)
	if link == "" && strings.HasPrefix(item.GUID, "http") {
		link = strings.TrimSpace(item.GUID)
	}
	if link == "" {
		return domain.RawRecord{}, false
	}

	pub := now
	if item.PublishedParsed != nil {
		pub = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		pub = *item.UpdatedParsed
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	image := explicitImage(item)
	if image == "" {
		image = ExtractImage(summary)
	}
	if image == "" && item.Content != "" {
		image = ExtractImage(item.Content)
	}

	return domain.RawRecord{
		Title:       strings.TrimSpace(item.Title),
		Summary:     strings.TrimSpace(summary),
		URL:         link,
		PublishedAt: pub.UTC(),
		ImageURL:    image,
	}, true
}

func explicitImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"thumbnail", "content"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}

// decodeBody transcodes to UTF-8 when only the HTTP header names the
// charset. Documents with an XML encoding declaration are left to the
// feed parser, which honours the declaration itself.
func decodeBody(body []byte, contentType string) io.Reader {
	if contentType == "" || hasXMLEncoding(body) {
		return bytes.NewReader(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	if label == "" || label == "utf-8" || label == "utf8" {
		return bytes.NewReader(body)
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return bytes.NewReader(body)
	}
	return r
}

func hasXMLEncoding(body []byte) bool {
	head := body
	if len(head) > 256 {
		head = head[:256]
	}
	end := bytes.Index(head, []byte("?>"))
	if !bytes.HasPrefix(bytes.TrimSpace(head), []byte("<?xml")) || end < 0 {
		return false
	}
	return bytes.Contains(head[:end], []byte("encoding="))
}
