package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

// botAPI покрывает часть tgbotapi.BotAPI, нужную для отправки.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender реализует domain.Messenger через Telegram Bot API. Получатель задаётся chat id.
type Sender struct {
	bot botAPI
	log zerolog.Logger
}

var _ domain.Messenger = (*Sender)(nil)

// NewSender создаёт отправителя.
func NewSender(bot botAPI, log zerolog.Logger) *Sender {
	return &Sender{bot: bot, log: log}
}

// Send отправляет сообщение; кнопки прикрепляются к последней части.
func (s *Sender) Send(ctx context.Context, recipientID string, msg domain.Message) error {
	chatID, err := strconv.ParseInt(strings.TrimSpace(recipientID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", recipientID, err)
	}
	parts := splitText(msg.Text)
	if len(parts) == 0 {
		return fmt.Errorf("empty message")
	}
	keyboard := inlineKeyboard(msg)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := tgbotapi.NewMessage(chatID, part)
		out.DisableWebPagePreview = true
		if i == len(parts)-1 && keyboard != nil {
			out.ReplyMarkup = keyboard
		}
		start := time.Now()
		_, err := s.bot.Send(out)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", "chat", start, err)
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

func inlineKeyboard(msg domain.Message) *tgbotapi.InlineKeyboardMarkup {
	buttons := msg.Buttons
	if len(buttons) == 0 && msg.Link != "" {
		buttons = []domain.Button{{Title: "Открыть", URL: msg.Link}}
	}
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(b.Title, b.URL)))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// InboundFromUpdate превращает апдейт Telegram в входящее сообщение.
// Возвращает false для апдейтов без сообщения из личного чата.
func InboundFromUpdate(upd tgbotapi.Update) (domain.InboundMessage, bool) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return domain.InboundMessage{}, false
	}
	in := domain.InboundMessage{
		UserID:  strconv.FormatInt(msg.Chat.ID, 10),
		Content: msg.Text,
		Type:    "other",
	}
	if msg.Text != "" {
		in.Type = domain.MessageTypeText
	}
	return in, true
}
