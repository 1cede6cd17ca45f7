package questions

import (
	"context"
	"errors"
	"testing"

	"daily-quiz-bot/internal/domain"
)

type stubRepo struct {
	questions  map[int64]domain.Question
	deliveries map[int64]int
	nextID     int64
	created    int
	deleted    []int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{questions: map[int64]domain.Question{}, deliveries: map[int64]int{}, nextID: 1}
}

func (s *stubRepo) ListQuestions(context.Context, domain.QuestionFilter) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range s.questions {
		out = append(out, q)
	}
	return out, nil
}
func (s *stubRepo) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}
func (s *stubRepo) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	q.ID = s.nextID
	s.nextID++
	s.created++
	s.questions[q.ID] = q
	return q, nil
}
func (s *stubRepo) UpdateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	if _, ok := s.questions[q.ID]; !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	return q, nil
}
func (s *stubRepo) DeleteQuestion(_ context.Context, id int64) error {
	delete(s.questions, id)
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubRepo) CountActiveQuestions(context.Context) (int, error) { return len(s.questions), nil }
func (s *stubRepo) ActiveQuestionAt(context.Context, int) (domain.Question, error) {
	return domain.Question{}, domain.ErrQuestionNotFound
}
func (s *stubRepo) RecordDelivery(context.Context, int64) (domain.DeliveryEvent, error) {
	return domain.DeliveryEvent{}, nil
}
func (s *stubRepo) LatestDelivery(context.Context) (domain.DeliveryEvent, error) {
	return domain.DeliveryEvent{}, domain.ErrNoDelivery
}
func (s *stubRepo) CountDeliveries(_ context.Context, id int64) (int, error) {
	return s.deliveries[id], nil
}

func intPtr(v int) *int { return &v }

func validParams() CreateParams {
	return CreateParams{
		Text:          "Что такое HTTP?",
		Options:       []string{"Протокол", "Язык", "СУБД"},
		CorrectOption: intPtr(0),
		Explanation:   "HTTP это протокол прикладного уровня",
		Category:      "network",
	}
}

func TestCreateDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, repo)
	q, err := svc.Create(context.Background(), validParams())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !q.Active || q.Difficulty != domain.DifficultyMedium {
		t.Fatalf("новый вопрос должен быть активным со сложностью medium: %+v", q)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]func(p *CreateParams){
		"без текста":             func(p *CreateParams) { p.Text = "" },
		"один вариант":           func(p *CreateParams) { p.Options = []string{"A"} },
		"без вариантов":          func(p *CreateParams) { p.Options = nil },
		"пустой вариант":         func(p *CreateParams) { p.Options = []string{"A", ""} },
		"без правильного":        func(p *CreateParams) { p.CorrectOption = nil },
		"правильный за границей": func(p *CreateParams) { p.CorrectOption = intPtr(3) },
		"отрицательный индекс":   func(p *CreateParams) { p.CorrectOption = intPtr(-1) },
		"без пояснения":          func(p *CreateParams) { p.Explanation = "" },
		"без категории":          func(p *CreateParams) { p.Category = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newStubRepo()
			svc := NewService(repo, repo)
			p := validParams()
			mutate(&p)
			_, err := svc.Create(context.Background(), p)
			if !domain.IsValidation(err) {
				t.Fatalf("ожидали ошибку валидации, получили %v", err)
			}
			if repo.created != 0 {
				t.Fatalf("при ошибке валидации ничего не сохраняется")
			}
		})
	}
}

func TestUpdateRevalidatesBounds(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, repo)
	q, _ := svc.Create(context.Background(), validParams())

	opts := []string{"A", "B"}
	if _, err := svc.Update(context.Background(), q.ID, domain.QuestionPatch{CorrectOption: intPtr(3)}); !domain.IsValidation(err) {
		t.Fatalf("индекс вне диапазона должен отклоняться, получили %v", err)
	}
	if _, err := svc.Update(context.Background(), q.ID, domain.QuestionPatch{Options: &opts, CorrectOption: intPtr(1)}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	short := []string{"A"}
	if _, err := svc.Update(context.Background(), q.ID, domain.QuestionPatch{Options: &short}); !domain.IsValidation(err) {
		t.Fatalf("один вариант должен отклоняться, получили %v", err)
	}
	stored := repo.questions[q.ID]
	if len(stored.Options) != 2 || stored.CorrectOption != 1 {
		t.Fatalf("ожидали применённые изменения: %+v", stored)
	}
	if stored.Text != q.Text {
		t.Fatalf("неуказанные поля не меняются")
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, repo)
	if _, err := svc.Update(context.Background(), 42, domain.QuestionPatch{}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("ожидали ErrQuestionNotFound, получили %v", err)
	}
}

func TestDeleteOrDeactivate(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, repo)
	fresh, _ := svc.Create(context.Background(), validParams())
	sent, _ := svc.Create(context.Background(), validParams())
	repo.deliveries[sent.ID] = 1

	outcome, err := svc.Delete(context.Background(), fresh.ID)
	if err != nil || outcome != domain.DeleteOutcomeDeleted {
		t.Fatalf("ожидали удаление: %v %v", outcome, err)
	}
	if _, ok := repo.questions[fresh.ID]; ok {
		t.Fatalf("вопрос должен быть удалён")
	}

	outcome, err = svc.Delete(context.Background(), sent.ID)
	if err != nil || outcome != domain.DeleteOutcomeDeactivated {
		t.Fatalf("ожидали выключение: %v %v", outcome, err)
	}
	if q, ok := repo.questions[sent.ID]; !ok || q.Active {
		t.Fatalf("рассылавшийся вопрос должен остаться и быть выключен")
	}

	if _, err := svc.Delete(context.Background(), 999); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("ожидали ErrQuestionNotFound, получили %v", err)
	}
}
