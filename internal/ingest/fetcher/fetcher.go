package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/goodnews/internal/core/config"
	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/ingest/transport"
	"github.com/vietddude/goodnews/internal/observability/metrics"
)

// Fetcher resolves one source by trying strategies in order until one
// yields records.
type Fetcher struct {
	strategies []transport.Strategy
	log        *slog.Logger
}

// New creates a fetcher over the given strategies, tried in order.
func New(strategies ...transport.Strategy) *Fetcher {
	return &Fetcher{
		strategies: strategies,
		log:        slog.Default().With("component", "fetcher"),
	}
}

// NewFromConfig builds the direct, JSON relay and raw relay cascade.
func NewFromConfig(cfg config.TransportConfig, monitor *transport.Monitor) *Fetcher {
	opts := transport.Options{
		Client:    transport.NewHTTPClient(),
		UserAgent: cfg.UserAgent,
	}
	return New(
		transport.NewDirect(opts, cfg.DirectTimeout),
		transport.NewRelayJSON(opts, cfg.RelayEndpoint, cfg.RelayTimeout, monitor),
		transport.NewRelayRaw(opts, cfg.Proxies, cfg.ProxyTimeout, monitor),
	)
}

// Resolve never fails: total failure is an empty slice.
func (f *Fetcher) Resolve(ctx context.Context, source domain.SourceDescriptor) []domain.RawRecord {
	for _, s := range f.strategies {
		start := time.Now()
		records, err := f.attempt(ctx, s, source.Endpoint)
		latency := time.Since(start)

		switch {
		case err != nil:
			metrics.TransportAttempts.WithLabelValues(s.Name(), outcome(err)).Inc()
			f.log.Debug("Strategy failed",
				"source", source.Name,
				"strategy", s.Name(),
				"latency", latency,
				"error", err,
			)
			continue
		case len(records) == 0:
			metrics.TransportAttempts.WithLabelValues(s.Name(), "empty").Inc()
			f.log.Debug("Strategy returned no records", "source", source.Name, "strategy", s.Name())
			continue
		}

		metrics.TransportAttempts.WithLabelValues(s.Name(), "ok").Inc()
		for i := range records {
			records[i].SourceName = source.Name
		}
		f.log.Debug("Source fetched",
			"source", source.Name,
			"strategy", s.Name(),
			"records", len(records),
			"latency", latency,
		)
		return records
	}

	f.log.Warn("All strategies failed", "source", source.Name, "endpoint", source.Endpoint)
	return nil
}

// attempt shields the cascade from a panicking strategy.
func (f *Fetcher) attempt(
	ctx context.Context,
	s transport.Strategy,
	endpoint string,
) (records []domain.RawRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Strategy panicked", "strategy", s.Name(), "panic", r)
			records, err = nil, errors.New("strategy panicked")
		}
	}()
	return s.Fetch(ctx, endpoint)
}

func outcome(err error) string {
	var terr *transport.TransportError
	var perr *transport.ParseError
	switch {
	case errors.As(err, &terr) && terr.Timeout():
		return "timeout"
	case errors.As(err, &terr):
		return "transport_error"
	case errors.As(err, &perr):
		return "parse_error"
	default:
		return "error"
	}
}
