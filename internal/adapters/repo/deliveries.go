package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

// RecordDelivery фиксирует отправку вопроса. Несколько рассылок в день допустимы.
func (p *Postgres) RecordDelivery(ctx context.Context, questionID int64) (domain.DeliveryEvent, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	ev := domain.DeliveryEvent{QuestionID: questionID}
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
INSERT INTO daily_questions (question_id)
VALUES ($1)
RETURNING id, sent_date
`, questionID).Scan(&ev.ID, &ev.SentAt)
	metrics.ObserveNetworkRequest("postgres", "daily_questions_insert", "daily_questions", start, err)
	if err != nil {
		return domain.DeliveryEvent{}, err
	}
	q, err := p.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.DeliveryEvent{}, err
	}
	ev.Question = q
	return ev, nil
}

// LatestDelivery возвращает последнюю рассылку вместе с вопросом.
func (p *Postgres) LatestDelivery(ctx context.Context) (domain.DeliveryEvent, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var ev domain.DeliveryEvent
	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT d.id, d.question_id, d.sent_date,
       q.id, q.text, q.options, q.correct_option, q.explanation, q.category, q.difficulty, q.active, q.created_at, q.updated_at
FROM daily_questions d
JOIN questions q ON q.id = d.question_id
ORDER BY d.sent_date DESC, d.id DESC
LIMIT 1
`)
	q, err := scanQuestion(prefixScanner{row: row, prefix: []any{&ev.ID, &ev.QuestionID, &ev.SentAt}})
	metrics.ObserveNetworkRequest("postgres", "daily_questions_latest", "daily_questions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeliveryEvent{}, domain.ErrNoDelivery
	}
	if err != nil {
		return domain.DeliveryEvent{}, err
	}
	ev.Question = q
	return ev, nil
}

// CountDeliveries считает рассылки вопроса.
func (p *Postgres) CountDeliveries(ctx context.Context, questionID int64) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var n int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_questions WHERE question_id=$1`, questionID).Scan(&n)
	metrics.ObserveNetworkRequest("postgres", "daily_questions_count", "daily_questions", start, err)
	return n, err
}

// prefixScanner дописывает в начало Scan поля, идущие перед колонками вопроса.
type prefixScanner struct {
	row    rowScanner
	prefix []any
}

func (s prefixScanner) Scan(dest ...any) error {
	return s.row.Scan(append(append([]any(nil), s.prefix...), dest...)...)
}
