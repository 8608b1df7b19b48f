package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// RelayJSON asks a feed-to-JSON conversion service for the feed.
type RelayJSON struct {
	opts     Options
	endpoint string
	timeout  time.Duration
	monitor  *Monitor
}

// NewRelayJSON creates the JSON relay strategy against relayEndpoint.
func NewRelayJSON(opts Options, relayEndpoint string, timeout time.Duration, monitor *Monitor) *RelayJSON {
	return &RelayJSON{
		opts:     opts.withDefaults(),
		endpoint: relayEndpoint,
		timeout:  timeout,
		monitor:  monitor,
	}
}

func (r *RelayJSON) Name() string { return "relay_json" }

type relayResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Items   []relayItem `json:"items"`
}

type relayItem struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Link        string          `json:"link"`
	GUID        string          `json:"guid"`
	PubDate     string          `json:"pubDate"`
	Thumbnail   string          `json:"thumbnail"`
	Enclosure   json.RawMessage `json:"enclosure"`
}

// enclosureLink tolerates the relay's habit of sending [] for a missing enclosure.
func (it relayItem) enclosureLink() string {
	raw := bytes.TrimSpace(it.Enclosure)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	var enc struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(raw, &enc); err != nil {
		return ""
	}
	return enc.Link
}

// relayURL adds rss_url to the relay endpoint, keeping any query the
// endpoint already carries (an API key, for instance).
func (r *RelayJSON) relayURL(endpoint string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid relay endpoint: %w", err)
	}
	q := u.Query()
	q.Set("rss_url", endpoint)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *RelayJSON) Fetch(ctx context.Context, endpoint string) ([]domain.RawRecord, error) {
	target, err := r.relayURL(endpoint)
	if err != nil {
		return nil, &TransportError{Strategy: r.Name(), URL: r.endpoint, Err: err}
	}
	if r.monitor != nil && !r.monitor.Available(hostOf(target)) {
		return nil, &TransportError{
			Strategy: r.Name(),
			URL:      target,
			Err:      fmt.Errorf("relay throttled, retry after %v", r.monitor.RetryAfter(hostOf(target))),
		}
	}

	resp, err := get(ctx, r.opts, r.Name(), target, "application/json", r.timeout, r.monitor)
	if err != nil {
		return nil, err
	}

	var payload relayResponse
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, &ParseError{Strategy: r.Name(), Err: err}
	}
	if payload.Status != "ok" {
		return nil, &ParseError{
			Strategy: r.Name(),
			Err:      fmt.Errorf("relay status %q: %s", payload.Status, payload.Message),
		}
	}

	now := r.opts.Now()
	records := make([]domain.RawRecord, 0, len(payload.Items))
	for _, it := range payload.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" && strings.HasPrefix(it.GUID, "http") {
			link = it.GUID
		}
		if link == "" {
			continue
		}

		pub := now
		if it.PubDate != "" {
			// The relay reports "2006-01-02 15:04:05" in UTC.
			if t, err := dateparse.ParseIn(it.PubDate, time.UTC); err == nil {
				pub = t
			}
		}

		image := it.Thumbnail
		if image == "" {
			image = it.enclosureLink()
		}
		if image == "" {
			image = ExtractImage(it.Description)
		}

		records = append(records, domain.RawRecord{
			Title:       strings.TrimSpace(it.Title),
			Summary:     strings.TrimSpace(it.Description),
			URL:         link,
			PublishedAt: pub.UTC(),
			ImageURL:    image,
		})
	}

	if len(records) == 0 {
		return nil, &ParseError{Strategy: r.Name(), Err: ErrEmptyFeed}
	}
	return records, nil
}
