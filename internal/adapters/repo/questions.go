package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"daily-quiz-bot/internal/domain"
	"daily-quiz-bot/internal/infra/metrics"
)

const questionColumns = `id, text, options, correct_option, explanation, category, difficulty, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (domain.Question, error) {
	var (
		q       domain.Question
		options []byte
	)
	if err := row.Scan(&q.ID, &q.Text, &options, &q.CorrectOption, &q.Explanation, &q.Category, &q.Difficulty, &q.Active, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return domain.Question{}, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return domain.Question{}, fmt.Errorf("decode options: %w", err)
	}
	return q, nil
}

// buildQuestionFilter собирает WHERE-часть и аргументы для списка вопросов.
func buildQuestionFilter(filter domain.QuestionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, c)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if d := strings.TrimSpace(filter.Difficulty); d != "" {
		args = append(args, d)
		conds = append(conds, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("active = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListQuestions возвращает вопросы, новые первыми.
func (p *Postgres) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	where, args := buildQuestionFilter(filter)
	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions`+where+` ORDER BY id DESC`, args...)
	metrics.ObserveNetworkRequest("postgres", "questions_list", "questions", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion возвращает вопрос по ID.
func (p *Postgres) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	q, err := scanQuestion(p.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id))
	metrics.ObserveNetworkRequest("postgres", "questions_get", "questions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

// CreateQuestion сохраняет новый вопрос.
func (p *Postgres) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("encode options: %w", err)
	}
	if q.Difficulty == "" {
		q.Difficulty = domain.DifficultyMedium
	}

	start := time.Now()
	created, err := scanQuestion(p.pool.QueryRow(ctx, `
INSERT INTO questions (text, options, correct_option, explanation, category, difficulty, active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+questionColumns,
		q.Text, options, q.CorrectOption, q.Explanation, q.Category, q.Difficulty, q.Active))
	metrics.ObserveNetworkRequest("postgres", "questions_insert", "questions", start, err)
	return created, err
}

// UpdateQuestion перезаписывает изменяемые поля вопроса.
func (p *Postgres) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	options, err := json.Marshal(q.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("encode options: %w", err)
	}

	start := time.Now()
	updated, err := scanQuestion(p.pool.QueryRow(ctx, `
UPDATE questions
SET text=$2, options=$3, correct_option=$4, explanation=$5, category=$6, difficulty=$7, active=$8, updated_at=now()
WHERE id=$1
RETURNING `+questionColumns,
		q.ID, q.Text, options, q.CorrectOption, q.Explanation, q.Category, q.Difficulty, q.Active))
	metrics.ObserveNetworkRequest("postgres", "questions_update", "questions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return updated, err
}

// DeleteQuestion удаляет вопрос.
func (p *Postgres) DeleteQuestion(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	res, err := p.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	metrics.ObserveNetworkRequest("postgres", "questions_delete", "questions", start, err)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// CountActiveQuestions считает активные вопросы.
func (p *Postgres) CountActiveQuestions(ctx context.Context) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	var n int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE active`).Scan(&n)
	metrics.ObserveNetworkRequest("postgres", "questions_count_active", "questions", start, err)
	return n, err
}

// ActiveQuestionAt возвращает активный вопрос по смещению в порядке id.
func (p *Postgres) ActiveQuestionAt(ctx context.Context, offset int) (domain.Question, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	q, err := scanQuestion(p.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE active ORDER BY id OFFSET $1 LIMIT 1`, offset))
	metrics.ObserveNetworkRequest("postgres", "questions_active_at", "questions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}
