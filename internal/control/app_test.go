package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vietddude/goodnews/internal/core/config"
	"github.com/vietddude/goodnews/internal/core/domain"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>주민들이 기부와 봉사로 이웃을 도왔다</title>
      <link>https://feed.example/1</link>
      <description>&lt;p&gt;따뜻한 나눔 &lt;img src="https://img.example/1.jpg"&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Local team wins science award</title>
      <link>https://feed.example/2</link>
      <description>Students celebrate</description>
      <pubDate>Mon, 01 Jan 2024 09:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newTestApp(t *testing.T, dbCfg config.DatabaseConfig) (*App, *int) {
	t.Helper()
	hits := new(int)
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(feedXML))
	}))
	t.Cleanup(feed.Close)

	cfg := config.Default()
	cfg.Sources = []domain.SourceDescriptor{{Name: "Test Feed", Endpoint: feed.URL, Category: "국내"}}
	cfg.Server.Port = 0
	cfg.Collection.Schedule = config.ScheduleOff
	cfg.Database = dbCfg

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = app.backend.Close() })
	return app, hits
}

func getJSON(t *testing.T, h http.Handler, method, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s %s: invalid json: %v", method, target, err)
	}
	return rec.Code, body
}

func TestApp_ReadPathEndToEnd(t *testing.T) {
	app, hits := newTestApp(t, config.DatabaseConfig{Driver: "memory"})
	h := app.Handler()

	code, body := getJSON(t, h, http.MethodGet, "/api/news")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["provenance"] != string(domain.ProvenanceLive) {
		t.Fatalf("expected live provenance, got %v", body["provenance"])
	}
	if body["count"] != float64(2) {
		t.Errorf("expected 2 records, got %v", body["count"])
	}

	first := body["data"].([]any)[0].(map[string]any)
	if first["url"] != "https://feed.example/1" || first["source_name"] != "Test Feed" {
		t.Errorf("unexpected first record %v", first)
	}
	if first["is_curated"] != true || first["image_url"] != "https://img.example/1.jpg" {
		t.Errorf("expected curated record with image, got %v", first)
	}

	_, body = getJSON(t, h, http.MethodGet, "/api/news")
	if body["provenance"] != string(domain.ProvenanceCache) {
		t.Errorf("second read should hit cache, got %v", body["provenance"])
	}
	if *hits != 1 {
		t.Errorf("expected one upstream fetch, got %d", *hits)
	}

	_, body = getJSON(t, h, http.MethodGet, "/api/news?forceRefresh=true&curatedOnly=true")
	if body["provenance"] != string(domain.ProvenanceStore) || body["count"] != float64(1) {
		t.Errorf("expected curated store result, got %v %v", body["provenance"], body["count"])
	}
}

func TestApp_CollectAndExport(t *testing.T) {
	app, _ := newTestApp(t, config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "goodnews.db"),
	})
	h := app.Handler()

	code, body := getJSON(t, h, http.MethodPost, "/api/collect")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, body)
	}
	data := body["data"].(map[string]any)
	if data["saved"] != float64(2) || data["curated_count"] != float64(1) {
		t.Errorf("unexpected summary %v", data)
	}

	_, body = getJSON(t, h, http.MethodGet, "/api/collection-logs")
	stats := body["data"].(map[string]any)["stats"].(map[string]any)
	if stats["success"] != float64(1) || stats["total_collected"] != float64(2) {
		t.Errorf("unexpected log summary %v", stats)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rss", nil))
	if !strings.Contains(rec.Body.String(), "https://feed.example/1") {
		t.Errorf("rss export missing record:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected healthy after a successful collection, got %d", rec.Code)
	}
}

func TestApp_StartStop(t *testing.T) {
	app, _ := newTestApp(t, config.DatabaseConfig{Driver: "memory"})
	app.cfg.Collection.RetentionPeriod = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	if _, err := OpenBackend(context.Background(), config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
