package nlp

import (
	"strings"
	"testing"

	"fireroute/pkg/model"
)

func TestClassify(t *testing.T) {
	c := NewTypeClassifier()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "Fraud",
			text: "Мошенники украли деньги со счёта без моего ведома",
			want: model.CategoryFraud,
		},
		{
			name: "Complaint",
			text: "Подаю жалобу, вы заблокировали мой счёт без причины, это возмутительно",
			want: model.CategoryComplaint,
		},
		{
			name: "Claim",
			text: "Требую верните деньги, иначе подам в суд и обращусь в аррфр",
			want: model.CategoryClaim,
		},
		{
			name: "App failure",
			text: "Приложение не работает, выдает ошибку при входе, смс не приходит",
			want: model.CategoryAppFailure,
		},
		{
			name: "Data change",
			text: "Хочу сменить номер телефона, изменились мои данные",
			want: model.CategoryDataChange,
		},
		{
			name: "Consultation",
			text: "Подскажите пожалуйста, можно ли открыть счёт онлайн?",
			want: model.CategoryConsultation,
		},
		{
			name: "Kazakh data change",
			text: "Жаңа нөмір алдым, нөмірімді ауыстырып беріңіз",
			want: model.CategoryDataChange,
		},
		{
			name: "English consultation",
			text: "Please advise how to reset my password, could you help",
			want: model.CategoryConsultation,
		},
		{
			name: "Low confidence defaults",
			text: "Добрый день, хотел бы узнать про тарифы",
			want: model.CategoryConsultation,
		},
		{
			name: "Empty",
			text: "",
			want: model.CategoryConsultation,
		},
		{
			name: "Too short",
			text: "ок",
			want: model.CategoryConsultation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifySpamShortCircuit(t *testing.T) {
	c := NewTypeClassifier()

	// 400+ characters, three long URLs, and a spam phrase: spam wins
	// regardless of other keyword hits.
	longURL := "https://example-marketing-site.example.com/campaign/promo/landing?utm=1"
	body := "Рекламная рассылка! Приложение не работает. " +
		strings.Repeat("Специальное предложение только для вас. ", 8) +
		longURL + " " + longURL + " " + longURL

	if got := c.Classify(body); got != model.CategorySpam {
		t.Errorf("Classify(long spam) = %q, want %q", got, model.CategorySpam)
	}

	got, score := c.ClassifyWithScore(body)
	if got != model.CategorySpam || score != 99 {
		t.Errorf("ClassifyWithScore(long spam) = (%q, %d), want (%q, 99)", got, score, model.CategorySpam)
	}
}

func TestClassifySpamGate(t *testing.T) {
	c := NewTypeClassifier()

	// A very short purely promotional message is NOT spam by pattern:
	// the length gate requires 200+ characters or a long URL.
	short := "Скидки на складе, закажите прайс"
	if got := c.Classify(short); got == model.CategorySpam {
		t.Errorf("short promo text classified as spam, gate should prevent it")
	}

	// The same text with a long URL passes the gate.
	withURL := short + " https://promo.example-shop.example.com/catalog/discount/items"
	if got := c.Classify(withURL); got != model.CategorySpam {
		t.Errorf("Classify(promo with URL) = %q, want %q", got, model.CategorySpam)
	}
}

func TestClassifyTieBreaksByDeclarationOrder(t *testing.T) {
	c := NewTypeClassifier()

	// "нарушение" (2, Claim) vs "недоволен" (2, Complaint): equal
	// scores resolve to the earlier declared category.
	got, score := c.ClassifyWithScore("недоволен нарушение")
	if score < 2 {
		t.Fatalf("expected both categories to score, got %d", score)
	}
	if got != model.CategoryComplaint {
		t.Errorf("tie resolved to %q, want %q (declaration order)", got, model.CategoryComplaint)
	}
}

func TestClassifyWithScoreReturnsScore(t *testing.T) {
	c := NewTypeClassifier()

	got, score := c.ClassifyWithScore("Мошенники украли деньги со счёта без моего ведома")
	if got != model.CategoryFraud {
		t.Fatalf("category = %q, want %q", got, model.CategoryFraud)
	}
	// мошенник (3) + мошенники (3) + украли (3) + украли деньги (3) + без моего ведома (3)
	if score < 9 {
		t.Errorf("score = %d, want >= 9", score)
	}
}
