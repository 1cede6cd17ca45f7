package messages

import (
	"strings"
	"testing"

	"daily-quiz-bot/internal/domain"
)

func TestDailyQuestionNumbersOptionsFromOne(t *testing.T) {
	tpl := New("https://quiz.example/")
	q := domain.Question{Text: "Что такое TCP?", Options: []string{"Протокол", "Язык", "База"}}
	msg := tpl.DailyQuestion(q, "kakao-1")

	mustContain(t, msg.Text, "Что такое TCP?")
	mustContain(t, msg.Text, "1. Протокол\n2. Язык\n3. База")
	if len(msg.Buttons) != 1 || msg.Buttons[0].URL != "https://quiz.example/donation?userId=kakao-1" {
		t.Fatalf("неверная кнопка пожертвования: %+v", msg.Buttons)
	}
	if msg.Link != "https://quiz.example" {
		t.Fatalf("неверная ссылка: %s", msg.Link)
	}
}

func TestFeedback(t *testing.T) {
	tpl := New("https://quiz.example")
	q := domain.Question{Options: []string{"A", "B", "C"}, CorrectOption: 1, Explanation: "потому что B"}

	ok := tpl.Feedback(q, true, "u")
	mustContain(t, ok.Text, "Правильно")
	mustContain(t, ok.Text, "потому что B")

	bad := tpl.Feedback(q, false, "u")
	mustContain(t, bad.Text, "Правильный ответ: 2.")
	mustContain(t, bad.Text, "потому что B")
	if len(bad.Buttons) != 1 {
		t.Fatalf("ответ должен содержать кнопку пожертвования")
	}
}

func TestRangeHintNamesBounds(t *testing.T) {
	msg := New("https://quiz.example").RangeHint(4)
	mustContain(t, msg.Text, "от 1 до 4")
	if len(msg.Buttons) != 0 {
		t.Fatalf("подсказка не содержит кнопок")
	}
}

func TestDonationURLEscapesID(t *testing.T) {
	got := New("https://quiz.example").DonationURL("a b&c")
	if got != "https://quiz.example/donation?userId=a+b%26c" {
		t.Fatalf("неверная ссылка: %s", got)
	}
}

func mustContain(t *testing.T, text, substr string) {
	t.Helper()
	if !strings.Contains(text, substr) {
		t.Fatalf("ожидали %q в %q", substr, text)
	}
}
