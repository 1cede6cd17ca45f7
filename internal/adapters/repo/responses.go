package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

const responsesUniqueConstraint = "responses_user_daily_question_key"

// HasAnswered проверяет, отвечал ли пользователь на рассылку.
func (p *Postgres) HasAnswered(ctx context.Context, userID, deliveryEventID int64) (bool, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var exists bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM responses WHERE user_id=$1 AND daily_question_id=$2)
`, userID, deliveryEventID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "responses_exists", "responses", start, err)
	return exists, err
}

// RecordResponse сохраняет ответ и увеличивает счётчики пользователя в одной транзакции.
func (p *Postgres) RecordResponse(ctx context.Context, params domain.RecordResponseParams) (domain.Response, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "responses", start, err)
	if err != nil {
		return domain.Response{}, err
	}
	defer tx.Rollback(ctx)

	resp := domain.Response{
		UserID:          params.UserID,
		DeliveryEventID: params.DeliveryEventID,
		Answer:          params.Answer,
		IsCorrect:       params.IsCorrect,
	}
	start = time.Now()
	err = tx.QueryRow(ctx, `
INSERT INTO responses (user_id, daily_question_id, answer, is_correct)
VALUES ($1, $2, $3, $4)
RETURNING id, responded_at
`, params.UserID, params.DeliveryEventID, params.Answer, params.IsCorrect).Scan(&resp.ID, &resp.RespondedAt)
	metrics.ObserveNetworkRequest("postgres", "responses_insert_tx", "responses", start, err)
	if err != nil {
		if isUniqueViolation(err, responsesUniqueConstraint) {
			return domain.Response{}, domain.ErrAlreadyAnswered
		}
		return domain.Response{}, err
	}

	if err := incrementUserStatsTx(ctx, tx, params.UserID, params.IsCorrect); err != nil {
		return domain.Response{}, err
	}

	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", "responses", start, err)
	if err != nil {
		return domain.Response{}, err
	}
	return resp, nil
}
