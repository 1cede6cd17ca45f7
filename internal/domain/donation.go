package domain

import "time"

// DonationStatus описывает состояние пожертвования.
type DonationStatus string

const (
	DonationReady    DonationStatus = "ready"
	DonationApproved DonationStatus = "approved"
	DonationCanceled DonationStatus = "canceled"
	DonationFailed   DonationStatus = "failed"
)

// Terminal сообщает, что статус окончательный.
func (s DonationStatus) Terminal() bool {
	return s == DonationApproved || s == DonationCanceled || s == DonationFailed
}

// Donation описывает «кофе для разработчика».
type Donation struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Amount     int64          `json:"amount"`
	TID        string         `json:"tid"`
	OrderCode  string         `json:"orderCode"`
	Message    string         `json:"message,omitempty"`
	Status     DonationStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ApprovedAt *time.Time     `json:"approvedAt,omitempty"`
	User       *User          `json:"user,omitempty"`
}

// CreateDonationParams содержит параметры нового пожертвования.
type CreateDonationParams struct {
	UserID    int64
	Amount    int64
	TID       string
	OrderCode string
	Message   string
}

// PaymentReadyRequest описывает запрос на подготовку платежа у провайдера.
type PaymentReadyRequest struct {
	OrderCode   string
	UserID      string
	ItemName    string
	Amount      int64
	ApprovalURL string
	CancelURL   string
	FailURL     string
}

// PaymentReady содержит ID транзакции и ссылки на оплату.
type PaymentReady struct {
	TID               string    `json:"tid"`
	RedirectPCURL     string    `json:"next_redirect_pc_url"`
	RedirectMobileURL string    `json:"next_redirect_mobile_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaymentApproveRequest описывает запрос подтверждения платежа.
type PaymentApproveRequest struct {
	TID       string
	OrderCode string
	UserID    string
	PGToken   string
}

// PaymentApproval содержит подтверждение провайдера.
type PaymentApproval struct {
	AID        string    `json:"aid"`
	TID        string    `json:"tid"`
	OrderCode  string    `json:"partner_order_id"`
	Amount     int64     `json:"amount"`
	ApprovedAt time.Time `json:"approved_at"`
}
