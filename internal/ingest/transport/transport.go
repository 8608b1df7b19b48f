// Package transport performs single fetch attempts against one feed
// endpoint using one of three strategies.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/metrics"
)

const maxBodyBytes = 8 << 20

// ErrEmptyFeed is returned when a payload parses but yields no usable items.
var ErrEmptyFeed = errors.New("feed has no items")

// Strategy is one way of retrieving a source's records.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, endpoint string) ([]domain.RawRecord, error)
}

// TransportError covers network failures, timeouts and non-2xx answers.
type TransportError struct {
	Strategy   string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: http %d", e.Strategy, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Strategy, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt was cut by its deadline.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ParseError marks a payload that could not be decoded.
type ParseError struct {
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse: %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options are shared by every strategy.
type Options struct {
	Client    *http.Client
	UserAgent string
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = NewHTTPClient()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// NewHTTPClient returns the pooled client used by all strategies.
// Deadlines come from the request context, not the client.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type response struct {
	body        []byte
	contentType string
}

// get performs one bounded GET and records metrics for it.
func get(
	ctx context.Context,
	opts Options,
	strategy, target, accept string,
	timeout time.Duration,
	monitor *Monitor,
) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.TransportLatency.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Strategy: strategy, URL: target, Err: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := opts.Client.Do(req)
	if err != nil {
		return nil, &TransportError{Strategy: strategy, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if monitor != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusForbidden:
			monitor.RecordThrottle(hostOf(target), resp.StatusCode, resp.Header.Get("Retry-After"))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Strategy:   strategy,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Strategy: strategy, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	if monitor != nil {
		monitor.RecordRequest(hostOf(target), time.Since(start))
	}

	return &response{body: body, contentType: resp.Header.Get("Content-Type")}, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}
