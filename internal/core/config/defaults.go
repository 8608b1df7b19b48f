package config

import "github.com/vietddude/goodnews/internal/core/domain"

const (
	DefaultRelayEndpoint = "https://api.rss2json.com/v1/api.json"
	DefaultUserAgent     = "goodnews/1.0 (+https://github.com/vietddude/goodnews)"
	DefaultSchedule      = "0 * * * *"
	ScheduleOff          = "off"
)

// DefaultSources is the feed list used when the config names none.
func DefaultSources() []domain.SourceDescriptor {
	return []domain.SourceDescriptor{
		{Name: "한겨레", Endpoint: "http://www.hani.co.kr/rss/", Category: "국내"},
		{Name: "BBC 뉴스", Endpoint: "https://feeds.bbci.co.uk/news/rss.xml", Category: "국제"},
		{Name: "The Guardian", Endpoint: "https://www.theguardian.com/world/rss", Category: "국제"},
		{Name: "NPR", Endpoint: "https://feeds.npr.org/1001/rss.xml", Category: "국제"},
		{Name: "테크크런치", Endpoint: "https://techcrunch.com/feed/", Category: "국제"},
		{Name: "아르스 테크니카", Endpoint: "https://feeds.arstechnica.com/arstechnica/index", Category: "국제"},
		{Name: "Good News Network", Endpoint: "https://www.goodnewsnetwork.org/feed/", Category: "국제"},
		{Name: "Positive News", Endpoint: "https://www.positive.news/feed/", Category: "국제"},
		{Name: "매일경제", Endpoint: "https://www.mk.co.kr/rss/30000001/", Category: "국내"},
	}
}

// DefaultProxies are raw relay candidates, tried in order.
func DefaultProxies() []string {
	return []string{
		"https://api.allorigins.win/raw?url={escaped}",
		"https://cors-anywhere.herokuapp.com/{url}",
		"https://thingproxy.freeboard.io/fetch/{url}",
	}
}
