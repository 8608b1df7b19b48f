package transport

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractImage returns the first <img src> in an HTML fragment, falling
// back to the first <img data-src>. Empty when neither exists.
func ExtractImage(fragment string) string {
	if !strings.Contains(strings.ToLower(fragment), "<img") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	for _, attr := range []string{"src", "data-src"} {
		var found string
		doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
				found = v
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}
