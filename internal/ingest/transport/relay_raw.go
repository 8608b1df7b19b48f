package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// RelayRaw fetches the feed bytes through generic relay proxies. The
// first candidate answering 2xx with a non-empty body is parsed.
type RelayRaw struct {
	opts       Options
	candidates []string
	timeout    time.Duration
	monitor    *Monitor
	log        *slog.Logger
}

// NewRelayRaw creates the raw relay strategy. Candidates are URL
// templates with {url} or {escaped} placeholders.
func NewRelayRaw(opts Options, candidates []string, timeout time.Duration, monitor *Monitor) *RelayRaw {
	return &RelayRaw{
		opts:       opts.withDefaults(),
		candidates: candidates,
		timeout:    timeout,
		monitor:    monitor,
		log:        slog.Default().With("component", "relay_raw"),
	}
}

func (r *RelayRaw) Name() string { return "relay_raw" }

// ExpandCandidate fills a relay template with endpoint.
func ExpandCandidate(tmpl, endpoint string) string {
	if !strings.Contains(tmpl, "{url}") && !strings.Contains(tmpl, "{escaped}") {
		return tmpl + endpoint
	}
	return strings.NewReplacer(
		"{escaped}", url.QueryEscape(endpoint),
		"{url}", endpoint,
	).Replace(tmpl)
}

func (r *RelayRaw) Fetch(ctx context.Context, endpoint string) ([]domain.RawRecord, error) {
	var errs []error

	for _, tmpl := range r.candidates {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		target := ExpandCandidate(tmpl, endpoint)
		host := hostOf(target)
		if r.monitor != nil && !r.monitor.Available(host) {
			r.log.Debug("Skipping throttled relay", "host", host, "retry_after", r.monitor.RetryAfter(host))
			continue
		}

		resp, err := get(ctx, r.opts, r.Name(), target, feedAccept, r.timeout, r.monitor)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(bytes.TrimSpace(resp.body)) == 0 {
			errs = append(errs, &TransportError{Strategy: r.Name(), URL: target, Err: ErrEmptyFeed})
			continue
		}

		records, err := ParseFeed(resp.body, resp.contentType, r.opts.Now())
		if err != nil {
			return nil, &ParseError{Strategy: r.Name(), Err: err}
		}
		return records, nil
	}

	if len(errs) == 0 {
		return nil, &TransportError{Strategy: r.Name(), URL: endpoint, Err: fmt.Errorf("no relay candidate available")}
	}
	return nil, &TransportError{Strategy: r.Name(), URL: endpoint, Err: errors.Join(errs...)}
}
