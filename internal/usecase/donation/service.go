package donation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
	"daily-quiz-bot/internal/usecase/messages"
)

const orderCodePrefix = "COFFEE_"

// Config задаёт параметры пожертвований.
type Config struct {
	BaseURL       string
	DefaultAmount int64
	MinAmount     int64
	ItemName      string
}

// InitiateParams описывает запрос на пожертвование.
type InitiateParams struct {
	UserID  string `json:"userId"`
	Amount  *int64 `json:"amount"`
	Message string `json:"message"`
}

// InitiateResult описывает подготовленный платёж.
type InitiateResult struct {
	DonationID        int64  `json:"donationId"`
	OrderCode         string `json:"orderCode"`
	TID               string `json:"tid"`
	RedirectPCURL     string `json:"next_redirect_pc_url"`
	RedirectMobileURL string `json:"next_redirect_mobile_url"`
}

// ConfirmParams содержит параметры возврата с успешной оплаты.
type ConfirmParams struct {
	TID       string
	OrderCode string
	UserID    string
	PGToken   string
}

// Service ведёт пожертвования через платёжный шлюз.
type Service struct {
	cfg       Config
	users     domain.UserRepo
	donations domain.DonationRepo
	gateway   domain.PaymentGateway
	messenger domain.Messenger
	templates messages.Templates
	log       zerolog.Logger
	newOrder  func() string
}

// NewService создаёт сервис пожертвований.
func NewService(cfg Config, users domain.UserRepo, donations domain.DonationRepo, gateway domain.PaymentGateway, messenger domain.Messenger, templates messages.Templates, log zerolog.Logger) *Service {
	if cfg.DefaultAmount <= 0 {
		cfg.DefaultAmount = 3000
	}
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 1000
	}
	if cfg.ItemName == "" {
		cfg.ItemName = "Кофе для разработчика"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{
		cfg:       cfg,
		users:     users,
		donations: donations,
		gateway:   gateway,
		messenger: messenger,
		templates: templates,
		log:       log,
		newOrder:  func() string { return orderCodePrefix + uuid.NewString() },
	}
}

func (s *Service) callbackURL(kind, orderCode, externalID string) string {
	q := url.Values{}
	q.Set("partner_order_id", orderCode)
	q.Set("partner_user_id", externalID)
	return s.cfg.BaseURL + "/api/donation/" + kind + "?" + q.Encode()
}

// Initiate готовит платёж, сохраняет пожертвование и отправляет пользователю ссылку на оплату.
func (s *Service) Initiate(ctx context.Context, params InitiateParams) (InitiateResult, error) {
	externalID := strings.TrimSpace(params.UserID)
	if externalID == "" {
		return InitiateResult{}, domain.NewValidationError("Поле userId обязательно")
	}
	amount := s.cfg.DefaultAmount
	if params.Amount != nil {
		amount = *params.Amount
	}
	if amount < s.cfg.MinAmount {
		return InitiateResult{}, domain.NewValidationError(fmt.Sprintf("Минимальная сумма пожертвования %d", s.cfg.MinAmount))
	}

	user, err := s.users.FindOrCreateByExternalID(ctx, externalID, domain.NicknameFor(externalID))
	if err != nil {
		return InitiateResult{}, fmt.Errorf("пользователь: %w", err)
	}

	orderCode := s.newOrder()
	ready, err := s.gateway.Ready(ctx, domain.PaymentReadyRequest{
		OrderCode:   orderCode,
		UserID:      externalID,
		ItemName:    s.cfg.ItemName,
		Amount:      amount,
		ApprovalURL: s.callbackURL("success", orderCode, externalID),
		CancelURL:   s.callbackURL("cancel", orderCode, externalID),
		FailURL:     s.callbackURL("fail", orderCode, externalID),
	})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("подготовка платежа: %w", err)
	}

	d, err := s.donations.CreateDonation(ctx, domain.CreateDonationParams{
		UserID:    user.ID,
		Amount:    amount,
		TID:       ready.TID,
		OrderCode: orderCode,
		Message:   strings.TrimSpace(params.Message),
	})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("сохранение пожертвования: %w", err)
	}
	metrics.IncDonation(string(domain.DonationReady))

	if err := s.messenger.Send(ctx, externalID, s.templates.PaymentLink(amount, ready)); err != nil {
		s.log.Error().Err(err).Str("recipient", externalID).Str("order_code", orderCode).Msg("не удалось отправить ссылку на оплату")
	}

	return InitiateResult{
		DonationID:        d.ID,
		OrderCode:         orderCode,
		TID:               ready.TID,
		RedirectPCURL:     ready.RedirectPCURL,
		RedirectMobileURL: ready.RedirectMobileURL,
	}, nil
}

// Confirm подтверждает оплату у шлюза и переводит пожертвование в approved.
func (s *Service) Confirm(ctx context.Context, params ConfirmParams) error {
	if params.OrderCode == "" || params.PGToken == "" {
		return domain.NewValidationError("Не хватает параметров подтверждения")
	}
	d, err := s.donations.GetDonationByOrderCode(ctx, params.OrderCode)
	if err != nil {
		return err
	}
	if d.Status == domain.DonationApproved {
		return nil
	}
	if d.Status.Terminal() {
		return domain.NewValidationError("Пожертвование уже отменено или завершилось ошибкой")
	}
	if params.UserID != "" {
		user, err := s.users.GetByExternalID(ctx, params.UserID)
		if errors.Is(err, domain.ErrUserNotFound) || (err == nil && user.ID != d.UserID) {
			return domain.NewValidationError("Пользователь не совпадает с заказом")
		}
		if err != nil {
			return fmt.Errorf("пользователь: %w", err)
		}
	}
	tid := params.TID
	if tid == "" {
		tid = d.TID
	}
	approval, err := s.gateway.Approve(ctx, domain.PaymentApproveRequest{
		TID:       tid,
		OrderCode: d.OrderCode,
		UserID:    params.UserID,
		PGToken:   params.PGToken,
	})
	if err != nil {
		return fmt.Errorf("подтверждение платежа: %w", err)
	}
	if err := s.donations.ApproveDonation(ctx, d.ID, approval.ApprovedAt); err != nil {
		return fmt.Errorf("обновление пожертвования: %w", err)
	}
	metrics.IncDonation(string(domain.DonationApproved))

	if params.UserID != "" {
		if err := s.messenger.Send(ctx, params.UserID, s.templates.ThankYou(d.Amount)); err != nil {
			s.log.Error().Err(err).Str("recipient", params.UserID).Str("order_code", d.OrderCode).Msg("не удалось отправить благодарность")
		}
	}
	return nil
}

// Cancel помечает неоплаченные пожертвования с кодом заказа отменёнными. Отсутствие таких записей не ошибка.
func (s *Service) Cancel(ctx context.Context, orderCode string) error {
	return s.setStatus(ctx, orderCode, domain.DonationCanceled)
}

// Fail помечает неоплаченные пожертвования с кодом заказа неуспешными. Отсутствие таких записей не ошибка.
func (s *Service) Fail(ctx context.Context, orderCode string) error {
	return s.setStatus(ctx, orderCode, domain.DonationFailed)
}

func (s *Service) setStatus(ctx context.Context, orderCode string, status domain.DonationStatus) error {
	if orderCode == "" {
		return nil
	}
	n, err := s.donations.SetDonationStatusByOrderCode(ctx, orderCode, status)
	if err != nil {
		return fmt.Errorf("статус пожертвования: %w", err)
	}
	if n > 0 {
		metrics.IncDonation(string(status))
	}
	return nil
}
