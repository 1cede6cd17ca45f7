package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"daily-quiz-bot/internal/domain"
	httpinfra "daily-quiz-bot/internal/infra/http"
	"daily-quiz-bot/internal/usecase/questions"
)

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.QuestionFilter{
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
	}
	if raw := strings.TrimSpace(q.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpinfra.WriteError(w, http.StatusBadRequest, "Параметр active должен быть true или false")
			return
		}
		filter.Active = &active
	}
	list, err := s.deps.Questions.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, "questions_list", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeServiceError(w, r, "questions_get", err)
		return
	}
	q, err := s.deps.Questions.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, "questions_get", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, q)
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var params questions.CreateParams
	if err := decodeJSON(w, r, &params); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	q, err := s.deps.Questions.Create(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, "questions_create", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusCreated, q)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeServiceError(w, r, "questions_update", err)
		return
	}
	var patch domain.QuestionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	q, err := s.deps.Questions.Update(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, r, "questions_update", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeServiceError(w, r, "questions_delete", err)
		return
	}
	outcome, err := s.deps.Questions.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, "questions_delete", err)
		return
	}
	msg := "Вопрос удалён"
	if outcome == domain.DeleteOutcomeDeactivated {
		msg = "Вопрос уже рассылался, поэтому он выключен"
	}
	httpinfra.WriteEnvelope(w, http.StatusOK, httpinfra.Envelope{
		Success: true,
		Data:    map[string]any{"id": id, "outcome": outcome},
		Message: msg,
	})
}

func (s *Server) handleTodayQuestion(w http.ResponseWriter, r *http.Request) {
	ev, err := s.deps.Today.LatestDelivery(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "today_question", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, ev)
}
