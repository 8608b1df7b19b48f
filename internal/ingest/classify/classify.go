// Package classify scores records by keyword polarity and assigns a
// category. Classification is pure: no I/O and no shared state.
package classify

import (
	"fmt"
	"strings"

	"github.com/vietddude/goodnews/internal/core/domain"
)

const (
	minScore = 1
	maxScore = 10
)

// Category is a named keyword set. Declaration order breaks ties.
type Category struct {
	Name     string
	Keywords []string
}

// Config overrides the defaults. Empty fields keep the defaults.
type Config struct {
	Positive        []string
	Negative        []string
	Categories      []Category
	DefaultCategory string
	Threshold       int
}

// Classifier is safe for concurrent use; it is never mutated after New.
type Classifier struct {
	positive        []string
	negative        []string
	categories      []Category
	defaultCategory string
	threshold       int
}

// New builds a classifier, normalizing and deduplicating keyword lists.
func New(cfg Config) *Classifier {
	positive := cfg.Positive
	if len(positive) == 0 {
		positive = DefaultPositive
	}
	negative := cfg.Negative
	if len(negative) == 0 {
		negative = DefaultNegative
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	c := &Classifier{
		positive:        normalize(positive),
		negative:        normalize(negative),
		categories:      make([]Category, 0, len(categories)),
		defaultCategory: cfg.DefaultCategory,
		threshold:       cfg.Threshold,
	}
	for _, cat := range categories {
		c.categories = append(c.categories, Category{Name: cat.Name, Keywords: normalize(cat.Keywords)})
	}
	if c.defaultCategory == "" {
		c.defaultCategory = DefaultCategory
	}
	if c.threshold <= 0 {
		c.threshold = DefaultThreshold
	}
	return c
}

// Classify labels one record.
func (c *Classifier) Classify(r domain.RawRecord) domain.ClassifiedRecord {
	text := strings.ToLower(r.Title + " " + r.Summary)

	pos := countMatches(text, c.positive)
	neg := countMatches(text, c.negative)
	category, categoryHits := c.category(text)

	score := clamp(max(0, pos-neg)+categoryHits, minScore, maxScore)

	return domain.ClassifiedRecord{
		RawRecord: r,
		IsCurated: pos > neg && score >= c.threshold,
		Score:     score,
		Category:  category,
		Reason:    reason(pos, neg),
	}
}

// ClassifyAll labels every record, keeping order.
func (c *Classifier) ClassifyAll(records []domain.RawRecord) []domain.ClassifiedRecord {
	out := make([]domain.ClassifiedRecord, len(records))
	for i, r := range records {
		out[i] = c.Classify(r)
	}
	return out
}

// Categories returns the configured category names in declaration order.
func (c *Classifier) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

func (c *Classifier) category(text string) (string, int) {
	best, bestHits := c.defaultCategory, 0
	for _, cat := range c.categories {
		// strict > keeps the first declared category on ties
		if hits := countMatches(text, cat.Keywords); hits > bestHits {
			best, bestHits = cat.Name, hits
		}
	}
	return best, bestHits
}

// countMatches counts keywords occurring anywhere in text.
func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func reason(pos, neg int) string {
	switch {
	case pos > neg:
		return fmt.Sprintf("긍정 키워드 %d개 발견", pos)
	case neg > pos:
		return fmt.Sprintf("부정 키워드 %d개 발견", neg)
	default:
		return fmt.Sprintf("키워드 균형 (긍정 %d, 부정 %d)", pos, neg)
	}
}

func normalize(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
