package delivery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
	"daily-quiz-bot/internal/usecase/messages"
)

// Outcome хранит результат отправки одному подписчику.
type Outcome struct {
	UserID     int64  `json:"userId"`
	ExternalID string `json:"kakaoId"`
	Error      string `json:"error,omitempty"`
}

// Report подводит итог рассылки.
type Report struct {
	DeliveryEventID int64     `json:"dailyQuestionId"`
	QuestionID      int64     `json:"questionId"`
	SentAt          time.Time `json:"sentDate"`
	Sent            int       `json:"sent"`
	Failed          int       `json:"failed"`
	Outcomes        []Outcome `json:"outcomes"`
}

// Service рассылает вопрос дня подписчикам.
type Service struct {
	questions  domain.QuestionRepo
	deliveries domain.DeliveryRepo
	users      domain.UserRepo
	messenger  domain.Messenger
	templates  messages.Templates
	log        zerolog.Logger
	intn       func(n int) int
}

// NewService создаёт сервис рассылки.
func NewService(questions domain.QuestionRepo, deliveries domain.DeliveryRepo, users domain.UserRepo, messenger domain.Messenger, templates messages.Templates, log zerolog.Logger) *Service {
	return &Service{
		questions:  questions,
		deliveries: deliveries,
		users:      users,
		messenger:  messenger,
		templates:  templates,
		log:        log,
		intn:       rand.Intn,
	}
}

// SelectRandomQuestion выбирает случайный активный вопрос. false, если активных нет.
func (s *Service) SelectRandomQuestion(ctx context.Context) (domain.Question, bool, error) {
	n, err := s.questions.CountActiveQuestions(ctx)
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("подсчёт активных вопросов: %w", err)
	}
	if n == 0 {
		return domain.Question{}, false, nil
	}
	q, err := s.questions.ActiveQuestionAt(ctx, s.intn(n))
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return domain.Question{}, false, nil
	}
	if err != nil {
		return domain.Question{}, false, fmt.Errorf("выбор вопроса: %w", err)
	}
	return q, true, nil
}

// Run выполняет ежедневную рассылку. Без активных вопросов ничего не делает и возвращает false.
func (s *Service) Run(ctx context.Context) (Report, bool, error) {
	start := time.Now()
	defer func() { metrics.DeliveryRunSeconds.Observe(time.Since(start).Seconds()) }()

	q, ok, err := s.SelectRandomQuestion(ctx)
	if err != nil {
		return Report{}, false, err
	}
	if !ok {
		s.log.Warn().Msg("нет активных вопросов, рассылка пропущена")
		return Report{}, false, nil
	}
	ev, err := s.deliveries.RecordDelivery(ctx, q.ID)
	if err != nil {
		return Report{}, false, fmt.Errorf("запись рассылки: %w", err)
	}
	ev.Question = q
	report, err := s.fanOut(ctx, ev)
	return report, true, err
}

// SendQuestion вручную рассылает указанный вопрос.
func (s *Service) SendQuestion(ctx context.Context, questionID int64) (Report, error) {
	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return Report{}, err
	}
	ev, err := s.deliveries.RecordDelivery(ctx, q.ID)
	if err != nil {
		return Report{}, fmt.Errorf("запись рассылки: %w", err)
	}
	ev.Question = q
	return s.fanOut(ctx, ev)
}

// fanOut отправляет вопрос всем подписчикам. Ошибка одному подписчику не прерывает рассылку.
func (s *Service) fanOut(ctx context.Context, ev domain.DeliveryEvent) (Report, error) {
	report := Report{DeliveryEventID: ev.ID, QuestionID: ev.QuestionID, SentAt: ev.SentAt, Outcomes: []Outcome{}}

	subscribers, err := s.users.ListSubscribers(ctx)
	if err != nil {
		return report, fmt.Errorf("список подписчиков: %w", err)
	}
	s.log.Info().Int64("daily_question_id", ev.ID).Int("subscribers", len(subscribers)).Msg("рассылка вопроса дня")

	for _, u := range subscribers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome := Outcome{UserID: u.ID, ExternalID: u.ExternalID}
		err := s.messenger.Send(ctx, u.ExternalID, s.templates.DailyQuestion(ev.Question, u.ExternalID))
		metrics.IncMessageSent(err)
		if err != nil {
			s.log.Error().Err(err).Str("recipient", u.ExternalID).Int64("daily_question_id", ev.ID).Msg("не удалось отправить вопрос")
			outcome.Error = err.Error()
			report.Failed++
		} else {
			report.Sent++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.log.Info().Int64("daily_question_id", ev.ID).Int("sent", report.Sent).Int("failed", report.Failed).Msg("рассылка завершена")
	return report, nil
}
