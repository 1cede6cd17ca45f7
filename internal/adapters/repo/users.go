package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

const userColumns = `id, external_id, nickname, is_subscribed, total_answered, correct_answers, created_at, updated_at`

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Nickname, &u.Subscribed, &u.TotalAnswered, &u.CorrectAnswers, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// FindOrCreateByExternalID возвращает пользователя или создаёт его. Повторные вызовы не плодят дублей.
func (p *Postgres) FindOrCreateByExternalID(ctx context.Context, externalID, nickname string) (domain.User, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(p.pool.QueryRow(ctx, `
INSERT INTO users (external_id, nickname)
VALUES ($1, $2)
ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
RETURNING `+userColumns, externalID, nickname))
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	return u, err
}

// GetByExternalID возвращает пользователя по внешнему ID.
func (p *Postgres) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE external_id=$1`, externalID))
	metrics.ObserveNetworkRequest("postgres", "users_get_by_external_id", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

// ListSubscribers возвращает подписанных пользователей.
func (p *Postgres) ListSubscribers(ctx context.Context) ([]domain.User, error) {
	return p.listUsers(ctx, "users_list_subscribers", `SELECT `+userColumns+` FROM users WHERE is_subscribed ORDER BY id`)
}

// ListUsers возвращает всех пользователей, новые первыми.
func (p *Postgres) ListUsers(ctx context.Context) ([]domain.User, error) {
	return p.listUsers(ctx, "users_list", `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
}

func (p *Postgres) listUsers(ctx context.Context, op, query string) ([]domain.User, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, query)
	metrics.ObserveNetworkRequest("postgres", op, "users", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func incrementUserStatsTx(ctx context.Context, tx pgx.Tx, userID int64, correct bool) error {
	start := time.Now()
	res, err := tx.Exec(ctx, `
UPDATE users
SET total_answered = total_answered + 1,
    correct_answers = correct_answers + CASE WHEN $2 THEN 1 ELSE 0 END,
    updated_at = now()
WHERE id=$1
`, userID, correct)
	metrics.ObserveNetworkRequest("postgres", "users_increment_stats_tx", "users", start, err)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
