package transport

import (
	"context"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

// Direct requests the feed endpoint itself.
type Direct struct {
	opts    Options
	timeout time.Duration
}

// NewDirect creates the direct strategy.
func NewDirect(opts Options, timeout time.Duration) *Direct {
	return &Direct{opts: opts.withDefaults(), timeout: timeout}
}

func (d *Direct) Name() string { return "direct" }

func (d *Direct) Fetch(ctx context.Context, endpoint string) ([]domain.RawRecord, error) {
	resp, err := get(ctx, d.opts, d.Name(), endpoint, feedAccept, d.timeout, nil)
	if err != nil {
		return nil, err
	}

	records, err := ParseFeed(resp.body, resp.contentType, d.opts.Now())
	if err != nil {
		return nil, &ParseError{Strategy: d.Name(), Err: err}
	}
	return records, nil
}
