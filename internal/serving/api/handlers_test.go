package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage/memory"
	"github.com/vietddude/goodnews/internal/serving/cache"
	"github.com/vietddude/goodnews/internal/serving/collect"
	"github.com/vietddude/goodnews/internal/serving/resolve"
)

type stubResolver struct {
	result resolve.Result
	last   resolve.Query
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, q resolve.Query) resolve.Result {
	s.calls++
	s.last = q
	return s.result
}

type stubCollector struct {
	summary domain.CollectionSummary
	err     error
}

func (s *stubCollector) Run(context.Context) (domain.CollectionSummary, error) {
	return s.summary, s.err
}

type stubExporter struct {
	ok bool
}

func (s *stubExporter) Render(context.Context) ([]byte, bool) {
	return []byte("<rss/>"), s.ok
}

func newTestServer(deps Deps) http.Handler {
	if deps.Resolver == nil {
		deps.Resolver = &stubResolver{}
	}
	if deps.Collector == nil {
		deps.Collector = &stubCollector{}
	}
	if deps.Exporter == nil {
		deps.Exporter = &stubExporter{ok: true}
	}
	if deps.Store == nil {
		deps.Store = memory.NewRepository()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewMemory()
	}
	return NewServer(deps, 0).Handler()
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, body
}

func TestNews_Success(t *testing.T) {
	resolver := &stubResolver{result: resolve.Result{
		Records:    resolve.Sample()[:2],
		Provenance: domain.ProvenanceStatic,
		Warning:    resolve.FallbackWarning,
	}}
	h := newTestServer(Deps{Resolver: resolver})

	rec, body := do(t, h, http.MethodGet, "/api/news?category=all&limit=2&curatedOnly=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["provenance"] != "static" || body["message"] != resolve.FallbackWarning {
		t.Errorf("unexpected body %v", body)
	}
	if body["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", body["count"])
	}
	if !resolver.last.CuratedOnly || resolver.last.Limit != 2 {
		t.Errorf("query not forwarded: %+v", resolver.last)
	}
}

func TestNews_EmptyDataIsArray(t *testing.T) {
	h := newTestServer(Deps{Resolver: &stubResolver{result: resolve.Result{Provenance: domain.ProvenanceStore}}})

	rec, _ := do(t, h, http.MethodGet, "/api/news")
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestNews_ValidationError(t *testing.T) {
	resolver := &stubResolver{}
	h := newTestServer(Deps{Resolver: resolver})

	for _, target := range []string{"/api/news?limit=abc", "/api/news?limit=0", "/api/news?limit=500", "/api/news?useStore=maybe"} {
		rec, body := do(t, h, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
		if body["success"] != false {
			t.Errorf("%s: expected success=false", target)
		}
	}
	if resolver.calls != 0 {
		t.Error("resolver must not run on invalid input")
	}
}

func TestCollect_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		err      error
		wantCode int
	}{
		{name: "success post", method: http.MethodPost, wantCode: http.StatusOK},
		{name: "success get", method: http.MethodGet, wantCode: http.StatusOK},
		{name: "nothing collected", method: http.MethodPost, err: collect.ErrNothingCollected, wantCode: http.StatusBadRequest},
		{name: "persist error", method: http.MethodPost, err: fmt.Errorf("failed to save records: %w", errors.New("db")), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(Deps{Collector: &stubCollector{
				summary: domain.CollectionSummary{Collected: 3, Saved: 3},
				err:     tt.err,
			}})
			rec, body := do(t, h, tt.method, "/api/collect")
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if (tt.err == nil) != (body["success"] == true) {
				t.Errorf("unexpected success flag in %v", body)
			}
		})
	}
}

func TestRSS_ContentType(t *testing.T) {
	for _, ok := range []bool{true, false} {
		h := newTestServer(Deps{Exporter: &stubExporter{ok: ok}})
		rec, _ := do(t, h, http.MethodGet, "/api/rss")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
			t.Errorf("unexpected content type %q", ct)
		}
	}
}

func TestStats_IncludesCache(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	_ = repo.UpsertRecords(ctx, resolve.Sample())
	c := cache.NewMemory()
	c.Set(ctx, cache.Key("all", 20, false), resolve.Sample())

	h := newTestServer(Deps{Store: repo, Cache: c})
	rec, body := do(t, h, http.MethodGet, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	db := data["database"].(map[string]any)
	if db["total"] != float64(5) || db["curated"] != float64(5) {
		t.Errorf("unexpected database stats %v", db)
	}
	if data["cache"].(map[string]any)["size"] != float64(1) {
		t.Errorf("unexpected cache status %v", data["cache"])
	}
}

func TestCollectionLogs_Summary(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	now := time.Now()
	_ = repo.AppendCollectionLog(ctx, domain.CollectionLogEntry{Source: "RSS", Status: domain.CollectionStatusSuccess, Count: 7, CreatedAt: now.Add(-2 * time.Hour)})
	_ = repo.AppendCollectionLog(ctx, domain.CollectionLogEntry{Source: "RSS", Status: domain.CollectionStatusFailed, CreatedAt: now.Add(-time.Hour)})
	_ = repo.AppendCollectionLog(ctx, domain.CollectionLogEntry{Source: "RSS", Status: domain.CollectionStatusSuccess, Count: 4, CreatedAt: now.Add(-40 * 24 * time.Hour)})

	h := newTestServer(Deps{Store: repo})
	rec, body := do(t, h, http.MethodGet, "/api/collection-logs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := body["data"].(map[string]any)
	if logs := data["logs"].([]any); len(logs) != 2 {
		t.Errorf("expected 2 logs within 30 days, got %d", len(logs))
	}
	stats := data["stats"].(map[string]any)
	if stats["total"] != float64(2) || stats["success"] != float64(1) || stats["failed"] != float64(1) {
		t.Errorf("unexpected summary %v", stats)
	}
	if stats["total_collected"] != float64(7) {
		t.Errorf("unexpected total collected %v", stats["total_collected"])
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	c.Set(ctx, "k", resolve.Sample())

	h := newTestServer(Deps{Cache: c})
	rec, _ := do(t, h, http.MethodDelete, "/api/cache")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if c.Status(ctx).Size != 0 {
		t.Error("cache should be empty")
	}
}

func TestSummarizeLogs_Empty(t *testing.T) {
	sum := SummarizeLogs(nil)
	if sum.Total != 0 || sum.LastCollection != nil {
		t.Errorf("unexpected summary %+v", sum)
	}
}
