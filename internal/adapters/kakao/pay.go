package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"daily-quiz-bot/internal/domain"
)

const (
	payReadyPath   = "/v1/payment/ready"
	payApprovePath = "/v1/payment/approve"
)

var _ domain.PaymentGateway = (*Client)(nil)

// Ready подготавливает платёж и возвращает ссылки на оплату.
func (c *Client) Ready(ctx context.Context, req domain.PaymentReadyRequest) (domain.PaymentReady, error) {
	if req.OrderCode == "" {
		return domain.PaymentReady{}, fmt.Errorf("order code is required")
	}
	form := url.Values{}
	form.Set("cid", c.cfg.PayCID)
	form.Set("partner_order_id", req.OrderCode)
	form.Set("partner_user_id", req.UserID)
	form.Set("item_name", req.ItemName)
	form.Set("quantity", "1")
	form.Set("total_amount", strconv.FormatInt(req.Amount, 10))
	form.Set("tax_free_amount", "0")
	form.Set("approval_url", req.ApprovalURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("fail_url", req.FailURL)

	data, err := c.postForm(ctx, "payment_ready", payReadyPath, form)
	if err != nil {
		return domain.PaymentReady{}, err
	}
	var parsed struct {
		TID               string `json:"tid"`
		RedirectPCURL     string `json:"next_redirect_pc_url"`
		RedirectMobileURL string `json:"next_redirect_mobile_url"`
		CreatedAt         string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.PaymentReady{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.TID == "" {
		return domain.PaymentReady{}, fmt.Errorf("kakao payment ready: empty tid")
	}
	return domain.PaymentReady{
		TID:               parsed.TID,
		RedirectPCURL:     parsed.RedirectPCURL,
		RedirectMobileURL: parsed.RedirectMobileURL,
		CreatedAt:         parseTime(parsed.CreatedAt),
	}, nil
}

// Approve подтверждает платёж по pg_token.
func (c *Client) Approve(ctx context.Context, req domain.PaymentApproveRequest) (domain.PaymentApproval, error) {
	form := url.Values{}
	form.Set("cid", c.cfg.PayCID)
	form.Set("tid", req.TID)
	form.Set("partner_order_id", req.OrderCode)
	form.Set("partner_user_id", req.UserID)
	form.Set("pg_token", req.PGToken)

	data, err := c.postForm(ctx, "payment_approve", payApprovePath, form)
	if err != nil {
		return domain.PaymentApproval{}, err
	}
	var parsed struct {
		AID            string `json:"aid"`
		TID            string `json:"tid"`
		PartnerOrderID string `json:"partner_order_id"`
		Amount         struct {
			Total int64 `json:"total"`
		} `json:"amount"`
		ApprovedAt string `json:"approved_at"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.PaymentApproval{}, fmt.Errorf("decode response: %w", err)
	}
	approvedAt := parseTime(parsed.ApprovedAt)
	if approvedAt.IsZero() {
		approvedAt = time.Now().UTC()
	}
	return domain.PaymentApproval{
		AID:        parsed.AID,
		TID:        parsed.TID,
		OrderCode:  parsed.PartnerOrderID,
		Amount:     parsed.Amount.Total,
		ApprovedAt: approvedAt,
	}, nil
}

// parseTime разбирает время Kakao (без зоны, KST) и RFC3339.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc); err == nil {
		return ts
	}
	return time.Time{}
}
