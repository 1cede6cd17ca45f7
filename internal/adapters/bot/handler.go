package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/adapters/telegram"
	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/usecase/answers"
	"daily-quiz-bot/internal/usecase/messages"
)

// AnswerHandler принимает ответы подписчиков.
type AnswerHandler interface {
	Handle(ctx context.Context, in domain.InboundMessage) (answers.Result, error)
}

// Handler обслуживает апдейты Telegram в режиме long polling.
type Handler struct {
	answers   AnswerHandler
	users     domain.UserRepo
	messenger domain.Messenger
	templates messages.Templates
	log       zerolog.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(answers AnswerHandler, users domain.UserRepo, messenger domain.Messenger, templates messages.Templates, log zerolog.Logger) *Handler {
	return &Handler{answers: answers, users: users, messenger: messenger, templates: templates, log: log}
}

// HandleUpdate обрабатывает входящий апдейт. Команды отвечают сами, остальное уходит в обработку ответов.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	in, ok := telegram.InboundFromUpdate(upd)
	if !ok {
		return
	}
	text := strings.TrimSpace(in.Content)
	switch {
	case strings.HasPrefix(text, "/start"):
		h.handleStart(ctx, in.UserID)
	case strings.HasPrefix(text, "/help"):
		h.reply(ctx, in.UserID, h.templates.Help())
	default:
		res, err := h.answers.Handle(ctx, in)
		if err != nil {
			h.log.Error().Err(err).Str("recipient", in.UserID).Msg("bot: ошибка обработки ответа")
			return
		}
		h.log.Debug().Str("recipient", in.UserID).Str("outcome", string(res.Outcome)).Msg("bot: сообщение обработано")
	}
}

func (h *Handler) handleStart(ctx context.Context, externalID string) {
	if _, err := h.users.FindOrCreateByExternalID(ctx, externalID, domain.NicknameFor(externalID)); err != nil {
		h.log.Error().Err(err).Str("recipient", externalID).Msg("bot: не удалось сохранить подписчика")
		return
	}
	h.reply(ctx, externalID, h.templates.Welcome(externalID))
}

func (h *Handler) reply(ctx context.Context, externalID string, msg domain.Message) {
	if err := h.messenger.Send(ctx, externalID, msg); err != nil {
		h.log.Error().Err(err).Str("recipient", externalID).Msg("bot: не удалось отправить ответ")
	}
}

// Run читает апдейты до отмены контекста или закрытия канала.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}
