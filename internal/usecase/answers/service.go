package answers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
	"daily-quiz-bot/internal/usecase/messages"
)

var answerPattern = regexp.MustCompile(`^[1-9]\d*$`)

// Outcome описывает, чем закончилась обработка сообщения.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeNoQuestion Outcome = "no_question"
	OutcomeBadFormat  Outcome = "bad_format"
	OutcomeOutOfRange Outcome = "out_of_range"
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
)

// Result описывает итог обработки входящего сообщения.
type Result struct {
	Outcome  Outcome
	Recorded bool
}

// Service принимает ответы на вопрос дня.
type Service struct {
	users      domain.UserRepo
	deliveries domain.DeliveryRepo
	responses  domain.ResponseRepo
	messenger  domain.Messenger
	templates  messages.Templates
	log        zerolog.Logger
}

// NewService создаёт обработчик ответов.
func NewService(users domain.UserRepo, deliveries domain.DeliveryRepo, responses domain.ResponseRepo, messenger domain.Messenger, templates messages.Templates, log zerolog.Logger) *Service {
	return &Service{users: users, deliveries: deliveries, responses: responses, messenger: messenger, templates: templates, log: log}
}

// ParseAnswer разбирает номер варианта (с единицы). Ведущие нули, знаки и дроби не допускаются.
// Число, не помещающееся в int, возвращается как math.MaxInt и дальше считается вне диапазона.
func ParseAnswer(content string) (int, bool) {
	trimmed := strings.TrimSpace(content)
	if !answerPattern.MatchString(trimmed) {
		return 0, false
	}
	n, err := strconv.Atoi(trimmed)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// Handle обрабатывает входящее сообщение и отвечает пользователю.
func (s *Service) Handle(ctx context.Context, in domain.InboundMessage) (Result, error) {
	if in.Type != domain.MessageTypeText {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	externalID := strings.TrimSpace(in.UserID)
	if externalID == "" {
		return Result{}, domain.NewValidationError("user_id обязателен")
	}

	user, err := s.users.FindOrCreateByExternalID(ctx, externalID, domain.NicknameFor(externalID))
	if err != nil {
		return Result{}, fmt.Errorf("пользователь: %w", err)
	}

	ev, err := s.deliveries.LatestDelivery(ctx)
	if errors.Is(err, domain.ErrNoDelivery) {
		return s.reply(ctx, externalID, Result{Outcome: OutcomeNoQuestion}, s.templates.NoQuestion())
	}
	if err != nil {
		return Result{}, fmt.Errorf("вопрос дня: %w", err)
	}

	n, ok := ParseAnswer(in.Content)
	if !ok {
		return s.reply(ctx, externalID, Result{Outcome: OutcomeBadFormat}, s.templates.FormatHint())
	}
	q := ev.Question
	index := n - 1
	if !q.HasOption(index) {
		return s.reply(ctx, externalID, Result{Outcome: OutcomeOutOfRange}, s.templates.RangeHint(len(q.Options)))
	}

	correct := q.IsCorrect(index)
	res := Result{Outcome: OutcomeIncorrect}
	if correct {
		res.Outcome = OutcomeCorrect
	}

	answered, err := s.responses.HasAnswered(ctx, user.ID, ev.ID)
	if err != nil {
		return Result{}, fmt.Errorf("проверка ответа: %w", err)
	}
	if !answered {
		_, err := s.responses.RecordResponse(ctx, domain.RecordResponseParams{
			UserID:          user.ID,
			DeliveryEventID: ev.ID,
			Answer:          index,
			IsCorrect:       correct,
		})
		switch {
		case errors.Is(err, domain.ErrAlreadyAnswered):
			s.log.Debug().Int64("user_id", user.ID).Int64("daily_question_id", ev.ID).Msg("повторный ответ отброшен")
		case err != nil:
			return Result{}, fmt.Errorf("сохранение ответа: %w", err)
		default:
			res.Recorded = true
			metrics.IncAnswer(string(res.Outcome))
		}
	}

	return s.reply(ctx, externalID, res, s.templates.Feedback(q, correct, externalID))
}

func (s *Service) reply(ctx context.Context, externalID string, res Result, msg domain.Message) (Result, error) {
	if err := s.messenger.Send(ctx, externalID, msg); err != nil {
		return Result{}, fmt.Errorf("отправка ответа: %w", err)
	}
	return res, nil
}
