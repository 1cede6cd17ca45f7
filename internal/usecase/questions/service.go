package questions

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"daily-quiz-bot/internal/domain"
)

// CreateParams содержит входные данные нового вопроса.
type CreateParams struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption *int     `json:"correctOption" validate:"required"`
	Explanation   string   `json:"explanation" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Difficulty    string   `json:"difficulty"`
}

// Service управляет банком вопросов.
type Service struct {
	questions  domain.QuestionRepo
	deliveries domain.DeliveryRepo
	validate   *validator.Validate
}

// NewService создаёт сервис вопросов.
func NewService(questions domain.QuestionRepo, deliveries domain.DeliveryRepo) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Service{questions: questions, deliveries: deliveries, validate: v}
}

// List возвращает вопросы по фильтру, новые первыми.
func (s *Service) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	list, err := s.questions.ListQuestions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("список вопросов: %w", err)
	}
	return list, nil
}

// Get возвращает вопрос или domain.ErrQuestionNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domain.Question, error) {
	return s.questions.GetQuestion(ctx, id)
}

// Create проверяет и сохраняет новый активный вопрос.
func (s *Service) Create(ctx context.Context, params CreateParams) (domain.Question, error) {
	if err := s.validate.Struct(params); err != nil {
		return domain.Question{}, validationError(err)
	}
	q := domain.Question{
		Text:          strings.TrimSpace(params.Text),
		Options:       append([]string(nil), params.Options...),
		CorrectOption: *params.CorrectOption,
		Explanation:   params.Explanation,
		Category:      strings.TrimSpace(params.Category),
		Difficulty:    strings.TrimSpace(params.Difficulty),
		Active:        true,
	}
	if q.Difficulty == "" {
		q.Difficulty = domain.DifficultyMedium
	}
	if err := checkQuestion(q); err != nil {
		return domain.Question{}, err
	}
	created, err := s.questions.CreateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("создание вопроса: %w", err)
	}
	return created, nil
}

// Update применяет частичные изменения и перепроверяет вопрос.
func (s *Service) Update(ctx context.Context, id int64, patch domain.QuestionPatch) (domain.Question, error) {
	current, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if patch.Options != nil && len(*patch.Options) < domain.MinQuestionOptions {
		return domain.Question{}, domain.NewValidationError("Нужно минимум 2 варианта ответа")
	}
	next := patch.Apply(current)
	if err := checkQuestion(next); err != nil {
		return domain.Question{}, err
	}
	updated, err := s.questions.UpdateQuestion(ctx, next)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return domain.Question{}, err
		}
		return domain.Question{}, fmt.Errorf("обновление вопроса: %w", err)
	}
	return updated, nil
}

// Delete удаляет вопрос. Уже рассылавшийся вопрос только выключается.
func (s *Service) Delete(ctx context.Context, id int64) (domain.DeleteOutcome, error) {
	q, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return "", err
	}
	n, err := s.deliveries.CountDeliveries(ctx, id)
	if err != nil {
		return "", fmt.Errorf("подсчёт рассылок: %w", err)
	}
	if n > 0 {
		q.Active = false
		if _, err := s.questions.UpdateQuestion(ctx, q); err != nil {
			return "", fmt.Errorf("выключение вопроса: %w", err)
		}
		return domain.DeleteOutcomeDeactivated, nil
	}
	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return "", err
		}
		return "", fmt.Errorf("удаление вопроса: %w", err)
	}
	return domain.DeleteOutcomeDeleted, nil
}

func checkQuestion(q domain.Question) error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return domain.NewValidationError("Поле text обязательно")
	case strings.TrimSpace(q.Explanation) == "":
		return domain.NewValidationError("Поле explanation обязательно")
	case strings.TrimSpace(q.Category) == "":
		return domain.NewValidationError("Поле category обязательно")
	case len(q.Options) < domain.MinQuestionOptions:
		return domain.NewValidationError("Нужно минимум 2 варианта ответа")
	case !q.HasOption(q.CorrectOption):
		return domain.NewValidationError(fmt.Sprintf("correctOption должен быть от 0 до %d", len(q.Options)-1))
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min":
		return domain.NewValidationError("Нужно минимум 2 варианта ответа")
	case "required":
		if strings.Contains(fe.Namespace(), "[") {
			return domain.NewValidationError("Варианты ответа не могут быть пустыми")
		}
		return domain.NewValidationError(fmt.Sprintf("Поле %s обязательно", fe.Field()))
	default:
		return domain.NewValidationError(fmt.Sprintf("Поле %s заполнено неверно", fe.Field()))
	}
}
