package messages

import (
	"fmt"
	"net/url"
	"strings"

	"daily-quiz-bot/internal/domain"
)

// DonationButtonTitle используется как подпись кнопки пожертвования.
const DonationButtonTitle = "Угостить разработчика кофе ☕"

// Templates собирает исходящие сообщения бота.
type Templates struct {
	baseURL string
}

// New создаёт шаблоны для сервиса с базовым адресом baseURL.
func New(baseURL string) Templates {
	return Templates{baseURL: strings.TrimRight(baseURL, "/")}
}

// DonationURL возвращает ссылку на страницу пожертвования для пользователя.
func (t Templates) DonationURL(externalID string) string {
	return t.baseURL + "/donation?userId=" + url.QueryEscape(externalID)
}

func (t Templates) withDonation(text, externalID string) domain.Message {
	return domain.Message{
		Text:    text,
		Link:    t.baseURL,
		Buttons: []domain.Button{{Title: DonationButtonTitle, URL: t.DonationURL(externalID)}},
	}
}

func (t Templates) plain(text string) domain.Message {
	return domain.Message{Text: text, Link: t.baseURL}
}

// FormatOptions нумерует варианты с единицы, по одному на строку.
func FormatOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, opt))
	}
	return strings.Join(lines, "\n")
}

// DailyQuestion строит рассылку вопроса дня.
func (t Templates) DailyQuestion(q domain.Question, externalID string) domain.Message {
	text := fmt.Sprintf("[Вопрос дня]\n\n%s\n\n%s\n\nОтветьте номером варианта (например: 1)", q.Text, FormatOptions(q.Options))
	return t.withDonation(text, externalID)
}

// NoQuestion отвечает, когда вопрос ещё не рассылался.
func (t Templates) NoQuestion() domain.Message {
	return t.plain("Вопрос дня ещё не готов. Попробуйте завтра!")
}

// FormatHint отвечает на сообщение, не похожее на номер варианта.
func (t Templates) FormatHint() domain.Message {
	return t.plain("Ответьте номером варианта (например: 1)")
}

// RangeHint отвечает на номер вне диапазона вариантов.
func (t Templates) RangeHint(optionCount int) domain.Message {
	return t.plain(fmt.Sprintf("Ответьте номером от 1 до %d.", optionCount))
}

// Feedback сообщает результат ответа с пояснением.
func (t Templates) Feedback(q domain.Question, correct bool, externalID string) domain.Message {
	var text string
	if correct {
		text = fmt.Sprintf("Правильно! 👏\n\n[Пояснение]\n%s", q.Explanation)
	} else {
		text = fmt.Sprintf("К сожалению, неверно. 😢\n\nПравильный ответ: %d.\n\n[Пояснение]\n%s", q.CorrectOption+1, q.Explanation)
	}
	return t.withDonation(text, externalID)
}

// PaymentLink присылает ссылку на оплату пожертвования.
func (t Templates) PaymentLink(amount int64, ready domain.PaymentReady) domain.Message {
	msg := domain.Message{
		Text: fmt.Sprintf("Спасибо, что решили угостить разработчика кофе! Сумма: %d.\nПерейдите по ссылке, чтобы завершить оплату.", amount),
		Link: ready.RedirectPCURL,
	}
	if ready.RedirectMobileURL != "" {
		msg.Buttons = []domain.Button{{Title: "Оплатить", URL: ready.RedirectMobileURL}}
	}
	return msg
}

// ThankYou благодарит за подтверждённое пожертвование.
func (t Templates) ThankYou(amount int64) domain.Message {
	return t.plain(fmt.Sprintf("Оплата %d прошла успешно. Спасибо за кофе! ☕", amount))
}

// Welcome приветствует после /start.
func (t Templates) Welcome(externalID string) domain.Message {
	return t.withDonation("Привет! Каждое утро я присылаю вопрос дня.\nОтвечайте номером варианта, а правильный ответ и пояснение придут сразу.", externalID)
}

// Help перечисляет команды.
func (t Templates) Help() domain.Message {
	return t.plain("/start: подписаться на вопрос дня\n/help: эта подсказка\n\nЧтобы ответить, пришлите номер варианта, например: 2")
}
