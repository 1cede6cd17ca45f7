package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/usecase/answers"
	"daily-quiz-bot/internal/usecase/messages"
)

type stubAnswers struct {
	got []domain.InboundMessage
}

func (s *stubAnswers) Handle(ctx context.Context, in domain.InboundMessage) (answers.Result, error) {
	s.got = append(s.got, in)
	return answers.Result{Outcome: answers.OutcomeCorrect}, nil
}

type stubUsers struct {
	created []string
	err     error
}

func (s *stubUsers) FindOrCreateByExternalID(ctx context.Context, externalID, nickname string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	s.created = append(s.created, externalID)
	return domain.User{ExternalID: externalID, Nickname: nickname}, nil
}
func (s *stubUsers) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	return domain.User{}, domain.ErrUserNotFound
}
func (s *stubUsers) ListSubscribers(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (s *stubUsers) ListUsers(ctx context.Context) ([]domain.User, error)       { return nil, nil }

type stubMessenger struct {
	sent []domain.Message
}

func (s *stubMessenger) Send(ctx context.Context, recipientID string, msg domain.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func privateUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42, Type: "private"},
	}}
}

func newTestHandler() (*Handler, *stubAnswers, *stubUsers, *stubMessenger) {
	a, u, m := &stubAnswers{}, &stubUsers{}, &stubMessenger{}
	return NewHandler(a, u, m, messages.New("https://quiz.example"), zerolog.Nop()), a, u, m
}

func TestHandleStartRegistersUser(t *testing.T) {
	h, a, u, m := newTestHandler()
	h.HandleUpdate(context.Background(), privateUpdate("/start"))
	if len(u.created) != 1 || u.created[0] != "42" {
		t.Fatalf("ожидали регистрацию пользователя 42, получили %v", u.created)
	}
	if len(m.sent) != 1 {
		t.Fatalf("ожидали приветствие, отправлено %d", len(m.sent))
	}
	if len(a.got) != 0 {
		t.Fatalf("команда не должна попадать в обработку ответов")
	}
}

func TestHandleStartStorageError(t *testing.T) {
	h, _, u, m := newTestHandler()
	u.err = errors.New("db down")
	h.HandleUpdate(context.Background(), privateUpdate("/start"))
	if len(m.sent) != 0 {
		t.Fatalf("при ошибке хранилища приветствие не отправляется")
	}
}

func TestHandleAnswerAndSkipGroups(t *testing.T) {
	h, a, _, m := newTestHandler()
	h.HandleUpdate(context.Background(), privateUpdate("2"))
	if len(a.got) != 1 || a.got[0].Content != "2" || a.got[0].UserID != "42" {
		t.Fatalf("ответ не передан: %+v", a.got)
	}

	group := privateUpdate("1")
	group.Message.Chat.Type = "group"
	h.HandleUpdate(context.Background(), group)
	if len(a.got) != 1 {
		t.Fatalf("групповые сообщения должны игнорироваться")
	}

	h.HandleUpdate(context.Background(), privateUpdate("/help"))
	if len(m.sent) != 1 {
		t.Fatalf("ожидали подсказку, отправлено %d", len(m.sent))
	}
}

func TestRunStopsOnClosedChannel(t *testing.T) {
	h, a, _, _ := newTestHandler()
	updates := make(chan tgbotapi.Update, 2)
	updates <- privateUpdate("1")
	updates <- privateUpdate("3")
	close(updates)
	h.Run(context.Background(), updates)
	if len(a.got) != 2 {
		t.Fatalf("ожидали 2 обработанных апдейта, получили %d", len(a.got))
	}
}
