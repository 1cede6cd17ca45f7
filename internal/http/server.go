package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	httpinfra "daily-quiz-bot/internal/infra/http"
	"daily-quiz-bot/internal/usecase/answers"
	"daily-quiz-bot/internal/usecase/delivery"
	"daily-quiz-bot/internal/usecase/donation"
	"daily-quiz-bot/internal/usecase/questions"
)

const maxBodyBytes = 1 << 20

// QuestionService управляет банком вопросов.
type QuestionService interface {
	List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
	Get(ctx context.Context, id int64) (domain.Question, error)
	Create(ctx context.Context, params questions.CreateParams) (domain.Question, error)
	Update(ctx context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error)
	Delete(ctx context.Context, id int64) (domain.DeleteOutcome, error)
}

// DeliveryService рассылает вопрос вручную.
type DeliveryService interface {
	SendQuestion(ctx context.Context, questionID int64) (delivery.Report, error)
}

// TodayProvider возвращает последний разосланный вопрос.
type TodayProvider interface {
	LatestDelivery(ctx context.Context) (domain.DeliveryEvent, error)
}

// AnswerService обрабатывает входящие сообщения.
type AnswerService interface {
	Handle(ctx context.Context, in domain.InboundMessage) (answers.Result, error)
}

// DonationService ведёт пожертвования.
type DonationService interface {
	Initiate(ctx context.Context, params donation.InitiateParams) (donation.InitiateResult, error)
	Confirm(ctx context.Context, params donation.ConfirmParams) error
	Cancel(ctx context.Context, orderCode string) error
	Fail(ctx context.Context, orderCode string) error
}

// StatsService собирает отчёты админки.
type StatsService interface {
	Users(ctx context.Context) ([]domain.User, error)
	Responses(ctx context.Context) (domain.ResponseStats, error)
	Donations(ctx context.Context) (domain.DonationStats, error)
}

// Config задаёт параметры HTTP API.
type Config struct {
	BaseURL        string
	AdminAPIKey    string
	AdminDevBypass bool
}

// Deps содержит зависимости обработчиков.
type Deps struct {
	Questions QuestionService
	Delivery  DeliveryService
	Today     TodayProvider
	Answers   AnswerService
	Donations DonationService
	Stats     StatsService
}

// Server содержит HTTP обработчики сервиса викторины.
type Server struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger
}

// NewServer создаёт набор обработчиков.
func NewServer(cfg Config, deps Deps, log zerolog.Logger) *Server {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Server{cfg: cfg, deps: deps, log: log}
}

// Router собирает маршруты поверх базового chi.Router.
func (s *Server) Router() chi.Router {
	r := httpinfra.NewRouter()
	admin := httpinfra.AdminAuthMiddleware(s.cfg.AdminAPIKey, s.cfg.AdminDevBypass)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpinfra.WriteMessage(w, http.StatusOK, "ok")
	})

	r.Route("/api/questions", func(r chi.Router) {
		r.Get("/today/question", s.handleTodayQuestion)
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", s.handleListQuestions)
			r.Post("/", s.handleCreateQuestion)
			r.Get("/{id}", s.handleGetQuestion)
			r.Put("/{id}", s.handleUpdateQuestion)
			r.Delete("/{id}", s.handleDeleteQuestion)
		})
	})

	r.Post("/webhook/message", s.handleWebhookMessage)
	r.Post("/webhook/telegram", s.handleWebhookTelegram)

	r.Route("/api/donation", func(r chi.Router) {
		r.Post("/coffee", s.handleDonationCoffee)
		r.Get("/success", s.handleDonationSuccess)
		r.Get("/cancel", s.handleDonationCancel)
		r.Get("/fail", s.handleDonationFail)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(admin)
		r.Get("/users", s.handleAdminUsers)
		r.Get("/stats/responses", s.handleAdminResponseStats)
		r.Get("/stats/donations", s.handleAdminDonationStats)
		r.Post("/questions/send", s.handleAdminSendQuestion)
	})

	return r
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("Некорректный id")
	}
	return id, nil
}

// writeServiceError переводит ошибку сервиса в HTTP статус.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		httpinfra.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrQuestionNotFound):
		httpinfra.WriteError(w, http.StatusNotFound, "Вопрос не найден")
	case errors.Is(err, domain.ErrDonationNotFound):
		httpinfra.WriteError(w, http.StatusNotFound, "Пожертвование не найдено")
	case errors.Is(err, domain.ErrUserNotFound):
		httpinfra.WriteError(w, http.StatusNotFound, "Пользователь не найден")
	case errors.Is(err, domain.ErrNoDelivery):
		httpinfra.WriteError(w, http.StatusNotFound, "Вопрос дня ещё не разослан")
	default:
		s.log.Error().Err(err).Str("op", op).Str("request_id", httpinfra.RequestID(r)).Msg("ошибка обработки запроса")
		httpinfra.WriteError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}
