package httpapi

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-quiz-bot/internal/adapters/telegram"
	"daily-quiz-bot/internal/domain"
	httpinfra "daily-quiz-bot/internal/infra/http"
	"daily-quiz-bot/internal/usecase/answers"
)

func (s *Server) handleWebhookMessage(w http.ResponseWriter, r *http.Request) {
	var in domain.InboundMessage
	if err := decodeJSON(w, r, &in); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	s.handleInbound(w, r, in)
}

func (s *Server) handleWebhookTelegram(w http.ResponseWriter, r *http.Request) {
	var upd tgbotapi.Update
	if err := decodeJSON(w, r, &upd); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	in, ok := telegram.InboundFromUpdate(upd)
	if !ok {
		httpinfra.WriteEnvelope(w, http.StatusOK, httpinfra.Envelope{Success: true})
		return
	}
	s.handleInbound(w, r, in)
}

func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request, in domain.InboundMessage) {
	res, err := s.deps.Answers.Handle(r.Context(), in)
	if err != nil {
		if domain.IsValidation(err) {
			s.writeServiceError(w, r, "webhook", err)
			return
		}
		s.log.Error().Err(err).Str("recipient", in.UserID).Str("request_id", httpinfra.RequestID(r)).Msg("webhook: ошибка обработки сообщения")
		httpinfra.WriteError(w, http.StatusInternalServerError, "Ошибка сервера")
		return
	}
	env := httpinfra.Envelope{Success: true}
	if res.Outcome == answers.OutcomeIgnored {
		env.Message = "Обрабатываются только текстовые сообщения"
	}
	httpinfra.WriteEnvelope(w, http.StatusOK, env)
}
