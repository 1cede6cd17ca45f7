package db

// Schema описывает таблицы викторины.
// Ответы уникальны на пару (user_id, daily_question_id), повторная вставка
// конфликтует и трактуется как «уже отвечал».
const Schema = `
CREATE TABLE IF NOT EXISTS questions (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    options JSONB NOT NULL,
    correct_option INTEGER NOT NULL,
    explanation TEXT NOT NULL,
    category TEXT NOT NULL,
    difficulty TEXT NOT NULL DEFAULT 'medium',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (correct_option >= 0 AND correct_option < jsonb_array_length(options))
);

CREATE INDEX IF NOT EXISTS idx_questions_active ON questions(active);

CREATE TABLE IF NOT EXISTS daily_questions (
    id BIGSERIAL PRIMARY KEY,
    question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE RESTRICT,
    sent_date TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_daily_questions_sent_date ON daily_questions(sent_date DESC);
CREATE INDEX IF NOT EXISTS idx_daily_questions_question_id ON daily_questions(question_id);

CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    external_id TEXT NOT NULL UNIQUE,
    nickname TEXT NOT NULL,
    is_subscribed BOOLEAN NOT NULL DEFAULT TRUE,
    total_answered INTEGER NOT NULL DEFAULT 0,
    correct_answers INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (correct_answers <= total_answered)
);

CREATE TABLE IF NOT EXISTS responses (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    daily_question_id BIGINT NOT NULL REFERENCES daily_questions(id) ON DELETE CASCADE,
    answer INTEGER NOT NULL,
    is_correct BOOLEAN NOT NULL,
    responded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT responses_user_daily_question_key UNIQUE (user_id, daily_question_id)
);

CREATE INDEX IF NOT EXISTS idx_responses_responded_at ON responses(responded_at);

CREATE TABLE IF NOT EXISTS donations (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount BIGINT NOT NULL,
    tid TEXT NOT NULL,
    order_code TEXT NOT NULL UNIQUE,
    message TEXT,
    status TEXT NOT NULL DEFAULT 'ready' CHECK (status IN ('ready', 'approved', 'canceled', 'failed')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    approved_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
`
