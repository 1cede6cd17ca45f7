package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

const donationColumns = `id, user_id, amount, tid, order_code, message, status, created_at, approved_at`

func scanDonation(row rowScanner, extra ...any) (domain.Donation, error) {
	var (
		d          domain.Donation
		message    sql.NullString
		approvedAt sql.NullTime
		status     string
	)
	dest := append([]any{&d.ID, &d.UserID, &d.Amount, &d.TID, &d.OrderCode, &message, &status, &d.CreatedAt, &approvedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Donation{}, err
	}
	d.Status = domain.DonationStatus(status)
	if message.Valid {
		d.Message = message.String
	}
	if approvedAt.Valid {
		ts := approvedAt.Time
		d.ApprovedAt = &ts
	}
	return d, nil
}

// CreateDonation сохраняет пожертвование в статусе ready.
func (p *Postgres) CreateDonation(ctx context.Context, params domain.CreateDonationParams) (domain.Donation, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var message any
	if params.Message != "" {
		message = params.Message
	}

	start := time.Now()
	d, err := scanDonation(p.pool.QueryRow(ctx, `
INSERT INTO donations (user_id, amount, tid, order_code, message, status)
VALUES ($1, $2, $3, $4, $5, 'ready')
RETURNING `+donationColumns,
		params.UserID, params.Amount, params.TID, params.OrderCode, message))
	metrics.ObserveNetworkRequest("postgres", "donations_insert", "donations", start, err)
	return d, err
}

// GetDonationByOrderCode возвращает пожертвование по коду заказа.
func (p *Postgres) GetDonationByOrderCode(ctx context.Context, orderCode string) (domain.Donation, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	d, err := scanDonation(p.pool.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE order_code=$1`, orderCode))
	metrics.ObserveNetworkRequest("postgres", "donations_get_by_order", "donations", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Donation{}, domain.ErrDonationNotFound
	}
	return d, err
}

// ApproveDonation переводит пожертвование из ready в approved.
func (p *Postgres) ApproveDonation(ctx context.Context, id int64, approvedAt time.Time) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	res, err := p.pool.Exec(ctx, `UPDATE donations SET status='approved', approved_at=$2 WHERE id=$1 AND status='ready'`, id, approvedAt)
	metrics.ObserveNetworkRequest("postgres", "donations_approve", "donations", start, err)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrDonationFinalized
	}
	return nil
}

// SetDonationStatusByOrderCode обновляет статус записей с кодом заказа, пока они в ready.
func (p *Postgres) SetDonationStatusByOrderCode(ctx context.Context, orderCode string, status domain.DonationStatus) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	res, err := p.pool.Exec(ctx, `UPDATE donations SET status=$2 WHERE order_code=$1 AND status='ready'`, orderCode, string(status))
	metrics.ObserveNetworkRequest("postgres", "donations_set_status", "donations", start, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// ApprovedDonationTotals возвращает количество и сумму подтверждённых пожертвований.
func (p *Postgres) ApprovedDonationTotals(ctx context.Context) (int64, int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var count, amount int64
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT COUNT(*), COALESCE(SUM(amount), 0)::bigint FROM donations WHERE status='approved'
`).Scan(&count, &amount)
	metrics.ObserveNetworkRequest("postgres", "donations_totals", "donations", start, err)
	return count, amount, err
}

// RecentApprovedDonations возвращает последние подтверждённые пожертвования с пользователями.
func (p *Postgres) RecentApprovedDonations(ctx context.Context, limit int) ([]domain.Donation, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT d.id, d.user_id, d.amount, d.tid, d.order_code, d.message, d.status, d.created_at, d.approved_at,
       u.id, u.external_id, u.nickname, u.is_subscribed, u.total_answered, u.correct_answers, u.created_at, u.updated_at
FROM donations d
JOIN users u ON u.id = d.user_id
WHERE d.status='approved'
ORDER BY d.approved_at DESC NULLS LAST, d.id DESC
LIMIT $1
`, limit)
	metrics.ObserveNetworkRequest("postgres", "donations_recent", "donations", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Donation, 0)
	for rows.Next() {
		var u domain.User
		d, err := scanDonation(rows, &u.ID, &u.ExternalID, &u.Nickname, &u.Subscribed, &u.TotalAnswered, &u.CorrectAnswers, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, err
		}
		d.User = &u
		out = append(out, d)
	}
	return out, rows.Err()
}

// MonthlyDonationStats группирует подтверждённые пожертвования по месяцам.
func (p *Postgres) MonthlyDonationStats(ctx context.Context) ([]domain.MonthlyDonationStat, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT EXTRACT(YEAR FROM created_at)::int AS year,
       EXTRACT(MONTH FROM created_at)::int AS month,
       COUNT(*),
       COALESCE(SUM(amount), 0)::bigint
FROM donations
WHERE status='approved'
GROUP BY year, month
ORDER BY year DESC, month DESC
`)
	metrics.ObserveNetworkRequest("postgres", "donations_monthly", "donations", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.MonthlyDonationStat, 0)
	for rows.Next() {
		var s domain.MonthlyDonationStat
		if err := rows.Scan(&s.Year, &s.Month, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
