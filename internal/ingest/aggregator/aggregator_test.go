package aggregator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(url string, hoursAgo int, source string) domain.RawRecord {
	return domain.RawRecord{
		Title:       url,
		URL:         url,
		PublishedAt: base.Add(-time.Duration(hoursAgo) * time.Hour),
		SourceName:  source,
	}
}

// mapResolver returns canned records per source name, with an optional delay.
type mapResolver struct {
	records map[string][]domain.RawRecord
	delay   map[string]time.Duration
	panics  map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func (m *mapResolver) Resolve(ctx context.Context, src domain.SourceDescriptor) []domain.RawRecord {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[src.Name]++
	m.mu.Unlock()

	if d := m.delay[src.Name]; d > 0 {
		time.Sleep(d)
	}
	if m.panics[src.Name] {
		panic("source exploded")
	}
	return m.records[src.Name]
}

func sources(names ...string) []domain.SourceDescriptor {
	out := make([]domain.SourceDescriptor, len(names))
	for i, n := range names {
		out[i] = domain.SourceDescriptor{Name: n, Endpoint: "https://" + n}
	}
	return out
}

func TestCollectAll_DedupAndSort(t *testing.T) {
	r := &mapResolver{records: map[string][]domain.RawRecord{
		"A": {rec("https://x/1", 5, "A"), rec("https://x/shared", 1, "A")},
		"B": {rec("https://x/shared", 0, "B"), rec("https://x/2", 3, "B")},
	}}

	got := New(r, 0).CollectAll(context.Background(), sources("A", "B"))

	if len(got) != 3 {
		t.Fatalf("expected 3 merged records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].PublishedAt.After(got[i].PublishedAt) {
			t.Errorf("records not sorted descending at %d: %v then %v", i, got[i-1].PublishedAt, got[i].PublishedAt)
		}
	}
	for _, g := range got {
		if g.URL == "https://x/shared" && g.SourceName != "A" {
			t.Errorf("expected first source to win duplicate, got %s", g.SourceName)
		}
	}
}

func TestCollectAll_FailedSourceIsIsolated(t *testing.T) {
	r := &mapResolver{
		records: map[string][]domain.RawRecord{
			"ok1": {rec("https://x/1", 1, "ok1")},
			"ok2": {rec("https://x/2", 2, "ok2")},
		},
		panics: map[string]bool{"exploding": true},
	}

	got := New(r, 0).CollectAll(context.Background(), sources("ok1", "dead", "exploding", "ok2"))

	if len(got) != 2 {
		t.Fatalf("expected union of healthy sources, got %+v", got)
	}
}

func TestCollectAll_RunsConcurrently(t *testing.T) {
	r := &mapResolver{
		records: map[string][]domain.RawRecord{
			"a": {rec("https://x/a", 1, "a")},
			"b": {rec("https://x/b", 2, "b")},
			"c": {rec("https://x/c", 3, "c")},
		},
		delay: map[string]time.Duration{"a": 200 * time.Millisecond, "b": 200 * time.Millisecond, "c": 200 * time.Millisecond},
	}

	start := time.Now()
	got := New(r, 0).CollectAll(context.Background(), sources("a", "b", "c"))
	elapsed := time.Since(start)

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("expected sources to be fetched concurrently, took %v", elapsed)
	}
}

type countingResolver struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingResolver) Resolve(ctx context.Context, src domain.SourceDescriptor) []domain.RawRecord {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return []domain.RawRecord{rec("https://x/"+src.Name, 1, src.Name)}
}

func TestCollectAll_MaxConcurrency(t *testing.T) {
	c := &countingResolver{}
	got := New(c, 2).CollectAll(context.Background(), sources("a", "b", "c", "d", "e"))

	if len(got) != 5 {
		t.Fatalf("expected 5 records, got %d", len(got))
	}
	if c.peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent fetches, saw %d", c.peak.Load())
	}
}

func TestMerge_DeterministicTieBreak(t *testing.T) {
	same := base
	perSource := [][]domain.RawRecord{
		{{URL: "a1", PublishedAt: same}, {URL: "a2", PublishedAt: same.Add(-time.Hour)}},
		{{URL: "b1", PublishedAt: same}},
		{{URL: "c1", PublishedAt: same}},
	}

	for i := 0; i < 10; i++ {
		got := Merge(perSource)
		want := []string{"a1", "b1", "c1", "a2"}
		for j, w := range want {
			if got[j].URL != w {
				t.Fatalf("run %d: position %d = %s, want %s", i, j, got[j].URL, w)
			}
		}
	}
}

func TestMerge_OrderIndependentOfSourceOrder(t *testing.T) {
	a := []domain.RawRecord{rec("1", 1, "A"), rec("3", 3, "A")}
	b := []domain.RawRecord{rec("2", 2, "B"), rec("4", 4, "B")}

	x := Merge([][]domain.RawRecord{a, b})
	y := Merge([][]domain.RawRecord{b, a})

	for i := range x {
		if x[i].URL != y[i].URL {
			t.Errorf("position %d differs: %s vs %s", i, x[i].URL, y[i].URL)
		}
	}
}

func TestCollectAll_Empty(t *testing.T) {
	got := New(&mapResolver{}, 0).CollectAll(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
