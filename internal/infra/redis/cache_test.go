package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// newTestClient connects to REDIS_URL or skips.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := NewClient(Config{URL: url})
	if err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewCache(newTestClient(t), time.Minute)
	c.Clear(ctx)

	in := []domain.ClassifiedRecord{{
		RawRecord: domain.RawRecord{URL: "https://example.com/1", Title: "희망", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Score:     7,
		IsCurated: true,
		Category:  "사회",
	}}
	c.Set(ctx, "news_all_20_all", in)

	got, ok := c.Get(ctx, "news_all_20_all")
	if !ok || len(got) != 1 || got[0].URL != in[0].URL || !got[0].PublishedAt.Equal(in[0].PublishedAt) {
		t.Fatalf("unexpected cache result %v %+v", ok, got)
	}

	st := c.Status(ctx)
	if st.Size != 1 || st.Keys[0] != "news_all_20_all" {
		t.Errorf("unexpected status %+v", st)
	}

	c.Invalidate(ctx, "news_all_20_all")
	if _, ok := c.Get(ctx, "news_all_20_all"); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(newTestClient(t), time.Second)

	c.Set(ctx, "short", nil)
	time.Sleep(1500 * time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCacheKey(t *testing.T) {
	if got := cacheKey("news_all_20_all"); got != "goodnews:cache:news_all_20_all" {
		t.Errorf("unexpected key %s", got)
	}
}
