package classify

// Default keyword sets. The verb stems 도왔/돕 catch "helped" phrasings
// that the noun 도움 misses.
var (
	DefaultPositive = []string{
		"희망", "감동", "따뜻", "선행", "기부", "봉사", "희생", "성공", "회복", "치유",
		"화해", "용기", "사랑", "가족", "친구", "이웃", "도움", "도왔", "돕", "나눔",
		"꿈", "정의", "평화", "화합", "성장", "발전", "혁신", "발명", "치료",
	}

	DefaultNegative = []string{
		"범죄", "사고", "폭력", "부정", "비리", "사기", "죄", "죽음", "병", "고통",
		"슬픔", "분노", "혐오", "차별", "전쟁", "테러", "폭발", "화재", "지진", "태풍", "홍수",
	}

	DefaultCategories = []Category{
		{Name: "인물", Keywords: []string{"기부", "선행", "봉사", "희생", "성공", "용기", "정의"}},
		{Name: "사회", Keywords: []string{"나눔", "화해", "이웃", "도움", "도왔", "돕", "희망", "화합", "평화"}},
		{Name: "환경", Keywords: []string{"보호", "복원", "친환경", "지속가능", "생태", "자연"}},
		{Name: "과학", Keywords: []string{"발명", "치료", "혁신", "발전", "기술", "연구"}},
		{Name: "교육", Keywords: []string{"성장", "학습", "발전", "미래", "희망", "꿈"}},
	}
)

const (
	DefaultCategory  = "기타"
	DefaultThreshold = 6
)
