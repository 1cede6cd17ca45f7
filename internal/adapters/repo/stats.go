package repo

import (
	"context"
	"time"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

// CountResponses считает все ответы.
func (p *Postgres) CountResponses(ctx context.Context) (int64, error) {
	return p.countResponses(ctx, "responses_count", `SELECT COUNT(*) FROM responses`)
}

// CountCorrectResponses считает верные ответы.
func (p *Postgres) CountCorrectResponses(ctx context.Context) (int64, error) {
	return p.countResponses(ctx, "responses_count_correct", `SELECT COUNT(*) FROM responses WHERE is_correct`)
}

func (p *Postgres) countResponses(ctx context.Context, op, query string) (int64, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var n int64
	start := time.Now()
	err := p.pool.QueryRow(ctx, query).Scan(&n)
	metrics.ObserveNetworkRequest("postgres", op, "responses", start, err)
	return n, err
}

// DailyResponseCounts группирует ответы по дням начиная с since.
func (p *Postgres) DailyResponseCounts(ctx context.Context, since time.Time) ([]domain.DailyCount, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT responded_at::date AS day, COUNT(*)
FROM responses
WHERE responded_at >= $1
GROUP BY day
ORDER BY day DESC
`, since)
	metrics.ObserveNetworkRequest("postgres", "responses_daily_counts", "responses", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.DailyCount, 0)
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryResponseStats группирует ответы по категориям вопросов.
func (p *Postgres) CategoryResponseStats(ctx context.Context) ([]domain.CategoryStat, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT q.category, COUNT(*) AS total, COUNT(*) FILTER (WHERE r.is_correct) AS correct
FROM responses r
JOIN daily_questions d ON d.id = r.daily_question_id
JOIN questions q ON q.id = d.question_id
GROUP BY q.category
ORDER BY total DESC, q.category
`)
	metrics.ObserveNetworkRequest("postgres", "responses_category_stats", "responses", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CategoryStat, 0)
	for rows.Next() {
		var c domain.CategoryStat
		if err := rows.Scan(&c.Category, &c.Total, &c.Correct); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
