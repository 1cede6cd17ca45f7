package httpapi

import (
	"net/http"

	httpinfra "daily-quiz-bot/internal/infra/http"
	"daily-quiz-bot/internal/usecase/donation"
)

const (
	redirectThankYou = "/donation/thank-you"
	redirectCanceled = "/donation/canceled"
	redirectFailed   = "/donation/failed"
	redirectError    = "/donation/error"
)

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, s.cfg.BaseURL+path, http.StatusFound)
}

func (s *Server) handleDonationCoffee(w http.ResponseWriter, r *http.Request) {
	var params donation.InitiateParams
	if err := decodeJSON(w, r, &params); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "Некорректное тело запроса")
		return
	}
	res, err := s.deps.Donations.Initiate(r.Context(), params)
	if err != nil {
		s.writeServiceError(w, r, "donation_initiate", err)
		return
	}
	httpinfra.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleDonationSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := s.deps.Donations.Confirm(r.Context(), donation.ConfirmParams{
		TID:       q.Get("tid"),
		OrderCode: q.Get("partner_order_id"),
		UserID:    q.Get("partner_user_id"),
		PGToken:   q.Get("pg_token"),
	})
	if err != nil {
		s.log.Error().Err(err).Str("order_code", q.Get("partner_order_id")).Msg("donation: подтверждение не удалось")
		s.redirect(w, r, redirectError)
		return
	}
	s.redirect(w, r, redirectThankYou)
}

func (s *Server) handleDonationCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Donations.Cancel(r.Context(), r.URL.Query().Get("partner_order_id")); err != nil {
		s.log.Error().Err(err).Msg("donation: отмена не сохранена")
		s.redirect(w, r, redirectError)
		return
	}
	s.redirect(w, r, redirectCanceled)
}

func (s *Server) handleDonationFail(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Donations.Fail(r.Context(), r.URL.Query().Get("partner_order_id")); err != nil {
		s.log.Error().Err(err).Msg("donation: статус ошибки не сохранён")
		s.redirect(w, r, redirectError)
		return
	}
	s.redirect(w, r, redirectFailed)
}
