package httpapi

import (
	"net/http"

	httpinfra "daily-quiz-bot/internal/infra/http"
)

type sendQuestionRequest struct {
	QuestionID int64 `json:"questionId"`
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Stats.Users(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "admin_users", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminResponseStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Stats.Responses(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "admin_response_stats", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleAdminDonationStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Stats.Donations(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "admin_donation_stats", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleAdminSendQuestion(w http.ResponseWriter, r *http.Request) {
	var req sendQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	if req.QuestionID <= 0 {
		httpinfra.WriteError(w, http.StatusBadRequest, "Поле questionId обязательно")
		return
	}
	report, err := s.deps.Delivery.SendQuestion(r.Context(), req.QuestionID)
	if err != nil {
		s.writeServiceError(w, r, "admin_send_question", err)
		return
	}
	httpinfra.WriteEnvelope(w, http.StatusOK, httpinfra.Envelope{Success: true, Data: report, Message: "Вопрос разослан"})
}
