package donation

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/usecase/messages"
)

type stubStore struct {
	users     map[string]domain.User
	donations map[string]domain.Donation
}

func newStubStore() *stubStore {
	return &stubStore{users: map[string]domain.User{}, donations: map[string]domain.Donation{}}
}

func (s *stubStore) FindOrCreateByExternalID(_ context.Context, externalID, nickname string) (domain.User, error) {
	if u, ok := s.users[externalID]; ok {
		return u, nil
	}
	u := domain.User{ID: int64(len(s.users) + 1), ExternalID: externalID, Nickname: nickname}
	s.users[externalID] = u
	return u, nil
}
func (s *stubStore) GetByExternalID(_ context.Context, externalID string) (domain.User, error) {
	u, ok := s.users[externalID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}
func (s *stubStore) ListSubscribers(context.Context) ([]domain.User, error) { return nil, nil }
func (s *stubStore) ListUsers(context.Context) ([]domain.User, error)       { return nil, nil }

func (s *stubStore) CreateDonation(_ context.Context, p domain.CreateDonationParams) (domain.Donation, error) {
	d := domain.Donation{ID: int64(len(s.donations) + 1), UserID: p.UserID, Amount: p.Amount, TID: p.TID, OrderCode: p.OrderCode, Message: p.Message, Status: domain.DonationReady}
	s.donations[p.OrderCode] = d
	return d, nil
}
func (s *stubStore) GetDonationByOrderCode(_ context.Context, code string) (domain.Donation, error) {
	d, ok := s.donations[code]
	if !ok {
		return domain.Donation{}, domain.ErrDonationNotFound
	}
	return d, nil
}
func (s *stubStore) ApproveDonation(_ context.Context, id int64, at time.Time) error {
	for code, d := range s.donations {
		if d.ID == id {
			if d.Status != domain.DonationReady {
				return domain.ErrDonationFinalized
			}
			d.Status = domain.DonationApproved
			d.ApprovedAt = &at
			s.donations[code] = d
			return nil
		}
	}
	return domain.ErrDonationNotFound
}
func (s *stubStore) SetDonationStatusByOrderCode(_ context.Context, code string, status domain.DonationStatus) (int64, error) {
	d, ok := s.donations[code]
	if !ok || d.Status != domain.DonationReady {
		return 0, nil
	}
	d.Status = status
	s.donations[code] = d
	return 1, nil
}

type stubGateway struct {
	readyReqs   []domain.PaymentReadyRequest
	approveReqs []domain.PaymentApproveRequest
	approveErr  error
}

func (g *stubGateway) Ready(_ context.Context, req domain.PaymentReadyRequest) (domain.PaymentReady, error) {
	g.readyReqs = append(g.readyReqs, req)
	return domain.PaymentReady{TID: "T1", RedirectPCURL: "https://pay/pc", RedirectMobileURL: "https://pay/m"}, nil
}
func (g *stubGateway) Approve(_ context.Context, req domain.PaymentApproveRequest) (domain.PaymentApproval, error) {
	g.approveReqs = append(g.approveReqs, req)
	if g.approveErr != nil {
		return domain.PaymentApproval{}, g.approveErr
	}
	return domain.PaymentApproval{AID: "A1", TID: req.TID, OrderCode: req.OrderCode, ApprovedAt: time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)}, nil
}

type stubMessenger struct {
	sent []domain.Message
	err  error
}

func (m *stubMessenger) Send(_ context.Context, _ string, msg domain.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newService(store *stubStore, gw *stubGateway, messenger *stubMessenger) *Service {
	svc := NewService(Config{BaseURL: "https://quiz.example/", MinAmount: 1000, DefaultAmount: 3000}, store, store, gw, messenger, messages.New("https://quiz.example"), zerolog.Nop())
	svc.newOrder = func() string { return "COFFEE_test" }
	return svc
}

func amount(v int64) *int64 { return &v }

func TestInitiateRejectsSmallAmount(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{}
	svc := newService(store, gw, &stubMessenger{})

	_, err := svc.Initiate(context.Background(), InitiateParams{UserID: "u", Amount: amount(500)})
	if !domain.IsValidation(err) {
		t.Fatalf("ожидали ошибку валидации, получили %v", err)
	}
	if len(store.donations) != 0 || len(gw.readyReqs) != 0 {
		t.Fatalf("при малой сумме нет записей и обращений к шлюзу")
	}
}

func TestInitiateDefaultsAndCallbacks(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{}
	messenger := &stubMessenger{}
	svc := newService(store, gw, messenger)

	res, err := svc.Initiate(context.Background(), InitiateParams{UserID: "kakao-1", Message: " спасибо "})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.TID != "T1" || res.OrderCode != "COFFEE_test" || res.RedirectMobileURL != "https://pay/m" {
		t.Fatalf("неожиданный результат: %+v", res)
	}
	req := gw.readyReqs[0]
	if req.Amount != 3000 {
		t.Fatalf("сумма по умолчанию 3000, получили %d", req.Amount)
	}
	approval, err := url.Parse(req.ApprovalURL)
	if err != nil {
		t.Fatalf("approval url: %v", err)
	}
	if approval.Path != "/api/donation/success" || approval.Query().Get("partner_order_id") != "COFFEE_test" {
		t.Fatalf("неверный approval url: %s", req.ApprovalURL)
	}
	if !strings.HasPrefix(req.CancelURL, "https://quiz.example/api/donation/cancel?") || !strings.HasPrefix(req.FailURL, "https://quiz.example/api/donation/fail?") {
		t.Fatalf("неверные адреса отмены и ошибки: %s %s", req.CancelURL, req.FailURL)
	}
	d := store.donations["COFFEE_test"]
	if d.Status != domain.DonationReady || d.Message != "спасибо" || d.TID != "T1" {
		t.Fatalf("неожиданное пожертвование: %+v", d)
	}
	if len(messenger.sent) != 1 || messenger.sent[0].Link != "https://pay/pc" {
		t.Fatalf("пользователь получает ссылку на оплату: %+v", messenger.sent)
	}
}

func TestInitiateToleratesMessengerFailure(t *testing.T) {
	store := newStubStore()
	svc := newService(store, &stubGateway{}, &stubMessenger{err: errors.New("down")})
	if _, err := svc.Initiate(context.Background(), InitiateParams{UserID: "u", Amount: amount(1000)}); err != nil {
		t.Fatalf("ошибка мессенджера не отменяет платёж: %v", err)
	}
}

func TestConfirm(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{}
	messenger := &stubMessenger{}
	svc := newService(store, gw, messenger)
	if _, err := svc.Initiate(context.Background(), InitiateParams{UserID: "u"}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	messenger.sent = nil

	err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", UserID: "u", PGToken: "pg"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	d := store.donations["COFFEE_test"]
	if d.Status != domain.DonationApproved || d.ApprovedAt == nil {
		t.Fatalf("пожертвование должно быть подтверждено: %+v", d)
	}
	if gw.approveReqs[0].TID != "T1" {
		t.Fatalf("без tid в запросе используется сохранённый: %+v", gw.approveReqs[0])
	}
	if len(messenger.sent) != 1 {
		t.Fatalf("ожидали благодарность пользователю")
	}

	if err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "missing", PGToken: "pg"}); !errors.Is(err, domain.ErrDonationNotFound) {
		t.Fatalf("ожидали ErrDonationNotFound, получили %v", err)
	}
}

func TestConfirmGatewayError(t *testing.T) {
	store := newStubStore()
	boom := errors.New("approve failed")
	gw := &stubGateway{approveErr: boom}
	svc := newService(store, gw, &stubMessenger{})
	_, _ = svc.Initiate(context.Background(), InitiateParams{UserID: "u"})

	if err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", PGToken: "pg"}); !errors.Is(err, boom) {
		t.Fatalf("ожидали ошибку шлюза, получили %v", err)
	}
	if store.donations["COFFEE_test"].Status != domain.DonationReady {
		t.Fatalf("при ошибке шлюза статус не меняется")
	}
}

func TestCancelAndFail(t *testing.T) {
	store := newStubStore()
	svc := newService(store, &stubGateway{}, &stubMessenger{})
	_, _ = svc.Initiate(context.Background(), InitiateParams{UserID: "u"})

	if err := svc.Cancel(context.Background(), "COFFEE_test"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if store.donations["COFFEE_test"].Status != domain.DonationCanceled {
		t.Fatalf("ожидали статус canceled")
	}
	if err := svc.Fail(context.Background(), "COFFEE_test"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if store.donations["COFFEE_test"].Status != domain.DonationCanceled {
		t.Fatalf("отменённое пожертвование не становится failed")
	}
	if err := svc.Cancel(context.Background(), "unknown"); err != nil {
		t.Fatalf("отсутствие записи не ошибка: %v", err)
	}
}

func TestApprovedDonationIsNotCanceled(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{}
	svc := newService(store, gw, &stubMessenger{})
	_, _ = svc.Initiate(context.Background(), InitiateParams{UserID: "u"})

	if err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", UserID: "u", PGToken: "pg"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.Cancel(context.Background(), "COFFEE_test"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Fail(context.Background(), "COFFEE_test"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if got := store.donations["COFFEE_test"].Status; got != domain.DonationApproved {
		t.Fatalf("подтверждённое пожертвование остаётся approved, получили %s", got)
	}
	if err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", UserID: "u", PGToken: "pg"}); err != nil {
		t.Fatalf("повторное подтверждение не ошибка: %v", err)
	}
	if len(gw.approveReqs) != 1 {
		t.Fatalf("шлюз вызывается один раз, получили %d", len(gw.approveReqs))
	}
}

func TestCanceledDonationIsNotApproved(t *testing.T) {
	for _, status := range []domain.DonationStatus{domain.DonationCanceled, domain.DonationFailed} {
		store := newStubStore()
		gw := &stubGateway{}
		svc := newService(store, gw, &stubMessenger{})
		_, _ = svc.Initiate(context.Background(), InitiateParams{UserID: "u"})
		if _, err := store.SetDonationStatusByOrderCode(context.Background(), "COFFEE_test", status); err != nil {
			t.Fatalf("%s: %v", status, err)
		}

		err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", UserID: "u", PGToken: "pg"})
		if !domain.IsValidation(err) {
			t.Fatalf("%s: ожидали ошибку валидации, получили %v", status, err)
		}
		if len(gw.approveReqs) != 0 {
			t.Fatalf("%s: шлюз не должен вызываться", status)
		}
		if got := store.donations["COFFEE_test"].Status; got != status {
			t.Fatalf("%s: статус не должен меняться, получили %s", status, got)
		}
	}
}

func TestConfirmRejectsForeignUser(t *testing.T) {
	store := newStubStore()
	gw := &stubGateway{}
	svc := newService(store, gw, &stubMessenger{})
	_, _ = svc.Initiate(context.Background(), InitiateParams{UserID: "owner"})
	_, _ = store.FindOrCreateByExternalID(context.Background(), "other", "x")

	for _, userID := range []string{"other", "nobody"} {
		err := svc.Confirm(context.Background(), ConfirmParams{OrderCode: "COFFEE_test", UserID: userID, PGToken: "pg"})
		if !domain.IsValidation(err) {
			t.Fatalf("%s: ожидали ошибку валидации, получили %v", userID, err)
		}
	}
	if len(gw.approveReqs) != 0 {
		t.Fatalf("шлюз не должен вызываться для чужого заказа")
	}
}
