package nlp

import (
	"regexp"
	"strings"

	"fireroute/pkg/model"
)

const kazakhSpecificChars = "әіңғүұқөһ"

// kazakhWords lists common, unambiguously Kazakh words. Entries spelled
// with Kazakh-specific letters are already caught by the letter rule, so
// only the entries without such letters decide the result here.
var kazakhWords = map[string]bool{
	"сәлеметсіз": true, "сәлем": true, "рахмет": true, "өтінем": true,
	"беруңіз": true, "сұраймын": true,
	"жүйесінде": true, "болды": true, "жатыр": true, "керек": true,
	"мүмкін": true, "ашылмай": true,
	"ауыстырып": true, "нөмір": true, "жаңа": true, "алмадым": true,
	"бар": true, "ашуға": true,
	"нөмірімді": true, "деректерді": true, "жібересіздер": true,
	"ма": true, "бе": true,
	"сізге": true, "маған": true, "бізге": true, "оларға": true,
	"сіздің": true, "менің": true,
	"тіркелу": true, "верификациядан": true, "өткен": true, "өтем": true,
	"оттим": true, "жатырмын": true, "жатырмыз": true,
	"куалигим": true, "жеке": true, "куаліг": true, "мекенжай": true,
}

var wordRe = regexp.MustCompile(`[а-яёa-zәіңғүұқөһ]+`)

// LanguageDetector detects the primary language of a ticket body:
// KZ, ENG, or RU (default).
type LanguageDetector struct{}

// NewLanguageDetector creates a detector.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{}
}

// Detect classifies the text. Rules in order: any Kazakh-specific
// letter wins, then a Kazakh dictionary word, then a Latin majority;
// everything else (including empty input) is Russian.
func (d *LanguageDetector) Detect(text string) string {
	lowered := strings.ToLower(text)

	if strings.ContainsAny(lowered, kazakhSpecificChars) {
		return model.LangKZ
	}

	for _, w := range wordRe.FindAllString(lowered, -1) {
		if kazakhWords[w] {
			return model.LangKZ
		}
	}

	latin, cyrillic := 0, 0
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z':
			latin++
		case r >= 'а' && r <= 'я' || r == 'ё':
			cyrillic++
		}
	}

	if latin > cyrillic {
		return model.LangEN
	}
	return model.LangRU
}
