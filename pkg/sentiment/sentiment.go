package sentiment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"fireroute/pkg/model"
)

var positiveWords = map[string]bool{
	"хорошо": true, "отлично": true, "спасибо": true, "благодарю": true,
	"помогли": true, "решили": true,
	"доволен": true, "довольна": true, "рад": true, "рада": true,
	"быстро": true, "удобно": true,
	"успешно": true, "замечательно": true, "прекрасно": true,
	"превосходно": true, "заработало": true,
	"thank": true, "thanks": true, "good": true, "great": true,
	"excellent": true, "perfect": true, "awesome": true, "helpful": true,
	"resolved": true, "satisfied": true, "happy": true,
	"рахмет": true, "жақсы": true,
}

var negativeWords = map[string]bool{
	// General negative
	"плохо": true, "ужасно": true, "отвратительно": true,
	"безобразие": true, "возмутительно": true,
	"недоволен": true, "недовольна": true, "недовольны": true,
	"возмущен": true, "возмущена": true,
	"издевательство": true, "кошмар": true,

	// Technical problems
	"проблема": true, "ошибка": true, "сбой": true, "баг": true,
	"зависает": true, "выкидывает": true,

	// Blocking
	"заблокирован": true, "заблокированы": true, "заблокировали": true,

	// Money / claims
	"верните": true, "списали": true, "незаконно": true,
	"аннулировать": true, "требую": true,

	// Fraud
	"мошенник": true, "мошенники": true, "обман": true, "обманули": true,
	"украли": true, "несанкционированный": true,
	"взломали": true, "взлом": true,

	// Complaints
	"жалоба": true, "жалуюсь": true, "нарушение": true, "нарушили": true,
	"нарушаете": true,

	// Escalation threats
	"afsa": true, "аррфр": true,

	// English
	"bad": true, "terrible": true, "horrible": true, "fraud": true,
	"scam": true, "stolen": true,
	"error": true, "broken": true, "issue": true, "problem": true,
	"angry": true, "blocked": true,
	"rejected": true, "cannot": true, "unable": true, "hacked": true,

	// Kazakh
	"жаман": true, "нашар": true,
}

// negativePhrase is a multi-word phrase matched as a substring of the
// full lowered text, with a weight.
type negativePhrase struct {
	phrase string
	weight int
}

var negativePhrases = []negativePhrase{
	{"не работает", 1},
	{"не работают", 1},
	{"не могу войти", 2},
	{"не могу зайти", 2},
	{"не удается войти", 2},
	{"не удаётся войти", 2},
	{"смс не приходит", 2},
	{"смс не приходят", 2},
	{"код не приходит", 2},
	{"не приходит смс", 2},
	{"пароль не принимает", 2},
	{"не получается", 1},
	{"верните деньги", 3},
	{"не пришло", 1},
	{"не поступило", 1},
	{"не зачислено", 1},
	{"не на моем счету", 2},
	{"не дошло", 1},
	{"незаконно списали", 3},
	{"в суд", 3},
	{"подам в суд", 3},
	{"без моего ведома", 3},
	{"не имеете права", 2},
	{"без причины", 2},
	{"жертвой мошенников", 3},
	{"правоохранительные органы", 3},
	{"заблокировали", 2},
	{"заблокированы", 2},
	{"это издевательство", 3},
	{"ваша компания ведет себя как мошенническая", 4},
	{"дублирующие списания", 2},
	{"аннулировать дублирующие", 2},
	{"инициирую заявление", 3},
	{"взломали", 3},
	{"взлом аккаунта", 3},
	{"не загружается", 1},
	{"не грузится", 1},
	{"сайт не открывается", 2},
	{"выкидывает из приложения", 2},
	{"постоянно выкидывает", 2},
}

var positivePhrases = []string{
	"всё работает", "все работает", "заработало", "спасибо большое",
}

// negTokenWeight doubles negative evidence against positive evidence.
const negTokenWeight = 2

var tokenRe = regexp.MustCompile(`[а-яёa-zәіңғүұқөһ]+`)

// Engine classifies text sentiment: POS, NEU, or NEG.
type Engine struct{}

// NewEngine creates a sentiment engine over the built-in lexicon.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze scores the text. Inputs shorter than 3 runes are neutral.
func (e *Engine) Analyze(text string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < 3 {
		return model.SentimentNeutral
	}

	lowered := strings.ToLower(text)

	posScore, negScore := 0, 0
	for _, token := range tokenRe.FindAllString(lowered, -1) {
		if positiveWords[token] {
			posScore++
		}
		if negativeWords[token] {
			negScore++
		}
	}

	for _, p := range negativePhrases {
		if strings.Contains(lowered, p.phrase) {
			negScore += p.weight
		}
	}

	for _, p := range positivePhrases {
		if strings.Contains(lowered, p) {
			posScore += 2
			break
		}
	}

	net := posScore - negScore*negTokenWeight
	switch {
	case net > 0:
		return model.SentimentPositive
	case net < 0:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
