package resolve

import (
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// SampleVersion identifies the built-in fallback set.
const SampleVersion = "2024.1"

var samplePublished = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const sampleSource = "Good News Sample"

var sampleRecords = []domain.ClassifiedRecord{
	{
		RawRecord: domain.RawRecord{
			Title:       "주민들이 함께 만든 작은 도서관",
			Summary:     "마을 주민들이 힘을 모아 빈 창고를 도서관으로 바꾸었습니다.",
			URL:         "https://example.com/news1",
			PublishedAt: samplePublished,
			SourceName:  sampleSource,
			ImageURL:    "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=400&h=200&fit=crop",
		},
		IsCurated: true, Score: 8, Category: "사회", Reason: "긍정 키워드 3개 발견",
	},
	{
		RawRecord: domain.RawRecord{
			Title:       "40년째 무료 급식을 이어온 식당 주인",
			Summary:     "한 식당 주인이 어려운 이웃에게 매일 따뜻한 밥을 나누고 있습니다.",
			URL:         "https://example.com/news2",
			PublishedAt: samplePublished.Add(-time.Hour),
			SourceName:  sampleSource,
			ImageURL:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400&h=200&fit=crop",
		},
		IsCurated: true, Score: 7, Category: "인물", Reason: "긍정 키워드 2개 발견",
	},
	{
		RawRecord: domain.RawRecord{
			Title:       "강 하구에 돌아온 철새들",
			Summary:     "복원 사업 이후 철새 서식지가 회복되고 있습니다.",
			URL:         "https://example.com/news3",
			PublishedAt: samplePublished.Add(-2 * time.Hour),
			SourceName:  sampleSource,
			ImageURL:    "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=400&h=200&fit=crop",
		},
		IsCurated: true, Score: 6, Category: "환경", Reason: "긍정 키워드 2개 발견",
	},
	{
		RawRecord: domain.RawRecord{
			Title:       "희귀병 치료의 길을 연 연구팀",
			Summary:     "국내 연구팀이 새로운 치료법 개발에 성공했습니다.",
			URL:         "https://example.com/news4",
			PublishedAt: samplePublished.Add(-3 * time.Hour),
			SourceName:  sampleSource,
		},
		IsCurated: true, Score: 9, Category: "과학", Reason: "긍정 키워드 3개 발견",
	},
	{
		RawRecord: domain.RawRecord{
			Title:       "방과 후 무료 수업을 여는 대학생들",
			Summary:     "대학생 봉사단이 지역 아이들에게 무료로 공부를 가르칩니다.",
			URL:         "https://example.com/news5",
			PublishedAt: samplePublished.Add(-4 * time.Hour),
			SourceName:  sampleSource,
		},
		IsCurated: true, Score: 8, Category: "교육", Reason: "긍정 키워드 2개 발견",
	},
}

// Sample returns a copy of the built-in fallback records.
func Sample() []domain.ClassifiedRecord {
	out := make([]domain.ClassifiedRecord, len(sampleRecords))
	copy(out, sampleRecords)
	return out
}

// staticFor filters the sample like any other tier. When the filter
// leaves nothing the unfiltered sample is returned, so it is never empty.
func staticFor(q Query) []domain.ClassifiedRecord {
	sample := Sample()
	if out := q.Filter(sample); len(out) > 0 {
		return out
	}
	return Query{Category: CategoryAll, Limit: q.Limit}.Filter(sample)
}
