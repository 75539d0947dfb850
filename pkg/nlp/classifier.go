package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"fireroute/pkg/model"
)

// weightedKeyword is a substring with a score contribution (1-4).
type weightedKeyword struct {
	keyword string
	weight  int
}

// typeKeywords holds the per-category keyword tables. Declaration order
// matters: earlier categories win scoring ties.
var typeKeywords = []struct {
	category string
	keywords []weightedKeyword
}{
	{model.CategoryComplaint, []weightedKeyword{
		{"жалоба", 3}, {"жалуюсь", 3}, {"жалобу", 3},
		{"недоволен", 2}, {"недовольна", 2}, {"недовольны", 2},
		{"плохой сервис", 3}, {"плохое обслуживание", 3},
		{"заблокировали", 3}, {"заблокирован", 3}, {"заблокированы", 3},
		{"не имеете права", 3}, {"без причины", 2},
		{"возмутительно", 3}, {"безобразие", 3}, {"возмущен", 2},
		{"нарушаете", 2}, {"нарушение прав", 3},
		{"это издевательство", 3}, {"издевательство", 2},
		{"complaint", 3}, {"шагым", 3},
	}},
	{model.CategoryDataChange, []weightedKeyword{
		{"смена", 2}, {"смену", 2}, {"сменить", 2},
		{"изменить", 2}, {"изменение", 2}, {"изменить данные", 3},
		{"обновить", 2}, {"поменять", 2},
		{"данные", 1}, {"реквизиты", 2},
		{"адрес", 1}, {"телефон", 1}, {"номер телефона", 2},
		{"новый номер", 3}, {"сменила номер", 3}, {"сменил номер", 3},
		{"ауыстырып", 3},
		{"жаңа нөмір", 3},
		{"нөмірімді", 3},
		{"нөміріне ауыстыр", 3},
		{"удостоверение", 2}, {"уд.личности", 3}, {"уд личности", 3},
		{"просрочен", 2}, {"просроченный", 2}, {"просрочено", 2},
		{"верификаци", 1},
		{"восстановить доступ", 2},
		{"изменились данные", 3}, {"изменились мои данные", 3},
		{"обновить данные", 3},
		{"change data", 2}, {"update", 1},
		{"деректерді өзгерту", 3},
		{"менің деректер", 2},
	}},
	{model.CategoryConsultation, []weightedKeyword{
		{"вопрос", 2}, {"как", 1}, {"подскажите", 2},
		{"консультация", 3}, {"помогите", 1}, {"объясните", 2},
		{"уточните", 2}, {"уточнить", 2},
		{"можно ли", 2}, {"каким образом", 2},
		{"имеет ли право", 4},
		{"как можно", 2}, {"как мне", 2},
		{"подскажи", 2}, {"объясни", 2},
		{"помогите пожалуйста", 3},
		{"question", 2}, {"help", 1}, {"how to", 2}, {"could you", 2},
		{"please tell", 2}, {"please advise", 2},
		{"кеңес", 3}, {"түсіндіріп", 3}, {"көмектесіп", 3},
	}},
	{model.CategoryClaim, []weightedKeyword{
		{"претензия", 3}, {"претензию", 3},
		{"требую", 3}, {"верните", 3}, {"верните деньги", 3},
		{"возврат", 2}, {"возвратите", 3},
		{"компенсация", 3}, {"компенсацию", 3},
		{"нарушение", 2}, {"нарушили", 2},
		{"в суд", 3}, {"подам в суд", 3},
		{"правоохранительные органы", 3}, {"полицию", 2},
		{"списали", 2}, {"незаконно списали", 3},
		{"не пришло", 2}, {"не зачислено", 2}, {"не поступило", 2},
		{"не на моем счету", 3}, {"не дошло", 2},
		{"аннулировать", 3}, {"дублирующие списания", 3},
		{"официально заявляю", 3}, {"официальный ответ", 2},
		{"afsa", 3}, {"аррфр", 3}, {"национальный банк", 2},
		{"claim", 3}, {"талап", 3},
	}},
	{model.CategoryAppFailure, []weightedKeyword{
		{"не работает", 3}, {"не работают", 3},
		{"приложение", 2}, {"не открывается", 3},
		{"ошибка", 2}, {"выдает ошибку", 3}, {"выдаёт ошибку", 3},
		{"баг", 3}, {"зависает", 3}, {"сбой", 3},
		{"не могу войти", 3}, {"не удается войти", 3}, {"не удаётся войти", 3},
		{"не могу зайти", 3}, {"не пускает", 2},
		{"не приходит смс", 3}, {"смс не приходит", 3},
		{"смс не приходят", 3}, {"код не приходит", 3},
		{"пароль не принимает", 3}, {"не принимает пароль", 3},
		{"не могу восстановить", 2}, {"восстановление пароля", 2},
		{"войти не могу", 3}, {"выкидывает", 3},
		{"не загружает", 3}, {"не грузится", 3}, {"сайт не открывается", 3},
		{"постоянно выкидывает", 3},
		{"app crash", 3}, {"error", 2}, {"something went wrong", 3},
		{"қолданба", 2}, {"жұмыс істемейді", 3}, {"ашылмай", 3},
		{"кірмеймін", 3},
	}},
	{model.CategoryFraud, []weightedKeyword{
		{"мошенник", 3}, {"мошенники", 3},
		{"мошеннич", 3}, {"мошенничество", 3},
		{"мошеннической", 3}, {"мошенническая", 3},
		{"обман", 3}, {"обманули", 3},
		{"украли", 3}, {"украли деньги", 3},
		{"несанкционированный", 2}, {"без моего ведома", 3},
		{"жертвой мошенников", 3}, {"жертва мошенников", 3},
		{"подозрительн", 2}, {"взлом", 3}, {"взломали", 3},
		{"таргетированной рекламы", 2}, {"от лица фридом", 3},
		{"представляются сотрудниками", 3},
		{"поддельный сертификат", 3}, {"действительный сертификат", 2},
		{"fraud", 3}, {"scam", 3}, {"phishing", 3},
		{"hacked", 3}, {"unauthorized", 3},
		{"алаяқтық", 3},
	}},
	{model.CategorySpam, []weightedKeyword{
		{"спам", 3}, {"рассылка", 2}, {"нежелательный", 2},
		{"реклама", 2}, {"рекламная рассылка", 3},
		{"spam", 3}, {"advertisement", 2}, {"unwanted", 2},
		{"спам-хабар", 3},
	}},
}

// Spam patterns are checked before keyword scoring. Short texts without
// a long URL skip the check entirely: a brief promotional line is not
// spam by this gate.
var spamURLRe = regexp.MustCompile(`(?i)https?://\S{25,}`)

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(тюльпан|срезка|питомник|вашутино)`),
	regexp.MustCompile(`(?i)(скидк|акци|распродаж).{0,30}(склад|цен|заказ|прайс)`),
	regexp.MustCompile(`(?i)(предлагаем|предлагает).{0,40}(оборудован|товар|продукц|услуг)`),
	regexp.MustCompile(`(?i)(дайджест|newsletter|digest|рассылк).{0,20}(digital|маркет)`),
	regexp.MustCompile(`(?i)поздравляем.{0,40}(день рождения|юбиле)`),
	regexp.MustCompile(`(?i)(приглашаем|приглашает).{0,40}(мероприяти|вебинар|конференц|день инвестора)`),
	regexp.MustCompile(`(?i)(минимальный заказ|упаковка|транспортировка|отгрузка).{0,60}(шт|руб|кг)`),
	regexp.MustCompile(`(?i)unsubscribe|отписаться от рассылки`),
	regexp.MustCompile(`(?i)(2gis|2гис).{0,30}(система|карт|появ)`),
	regexp.MustCompile(`(?i)(iqas|интеллектуальн).{0,20}(лига|quiz|квиз)`),
	regexp.MustCompile(`(?i)wunder\s*digital`),
}

const (
	minSpamTextLen         = 200
	spamURLCountThreshold  = 3
	lowConfidenceThreshold = 2
	spamScore              = 99
	defaultCategory        = model.CategoryConsultation
)

// isSpam reports whether the text matches known spam patterns.
func isSpam(text string) bool {
	if utf8.RuneCountInString(text) < minSpamTextLen && !spamURLRe.MatchString(text) {
		return false
	}
	if len(spamURLRe.FindAllString(text, -1)) >= spamURLCountThreshold {
		return true
	}
	for _, pat := range spamPatterns {
		if pat.MatchString(text) {
			return true
		}
	}
	return false
}

// TypeClassifier assigns a support ticket to a predefined category.
type TypeClassifier struct{}

// NewTypeClassifier creates a classifier over the built-in tables.
func NewTypeClassifier() *TypeClassifier {
	return &TypeClassifier{}
}

// Classify returns the best category for the text.
func (c *TypeClassifier) Classify(text string) string {
	if isSpam(text) {
		return model.CategorySpam
	}

	stripped := strings.TrimSpace(text)
	if utf8.RuneCountInString(stripped) < 5 {
		return defaultCategory
	}

	cat, score := bestCategory(strings.ToLower(stripped))
	if score < lowConfidenceThreshold {
		return defaultCategory
	}
	return cat
}

// ClassifyWithScore returns (category, score) so callers can route
// low-confidence texts elsewhere. Spam short-circuits with a fixed
// saturated score.
func (c *TypeClassifier) ClassifyWithScore(text string) (string, int) {
	if isSpam(text) {
		return model.CategorySpam, spamScore
	}

	cat, score := bestCategory(strings.ToLower(text))
	if score < lowConfidenceThreshold {
		return defaultCategory, score
	}
	return cat, score
}

// bestCategory sums keyword weights per category and returns the top
// one. Ties resolve to the earliest declared category.
func bestCategory(lowered string) (string, int) {
	best := typeKeywords[0].category
	bestScore := -1

	for _, entry := range typeKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw.keyword) {
				score += kw.weight
			}
		}
		if score > bestScore {
			best = entry.category
			bestScore = score
		}
	}

	return best, bestScore
}
