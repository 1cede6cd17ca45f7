package domain

import (
	"strings"
	"time"
)

// DifficultyMedium используется, если сложность вопроса не указана.
const DifficultyMedium = "medium"

// MinQuestionOptions задаёт минимальное количество вариантов ответа.
const MinQuestionOptions = 2

// Question описывает вопрос викторины с вариантами ответа.
type Question struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correctOption"`
	Explanation   string    `json:"explanation"`
	Category      string    `json:"category"`
	Difficulty    string    `json:"difficulty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsCorrect проверяет выбранный вариант (с нуля).
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectOption
}

// HasOption сообщает, существует ли вариант с таким индексом.
func (q Question) HasOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// QuestionFilter задаёт необязательные фильтры списка вопросов.
type QuestionFilter struct {
	Category   string
	Difficulty string
	Active     *bool
}

// QuestionPatch содержит только изменяемые поля. nil означает «не менять».
type QuestionPatch struct {
	Text          *string   `json:"text"`
	Options       *[]string `json:"options"`
	CorrectOption *int      `json:"correctOption"`
	Explanation   *string   `json:"explanation"`
	Category      *string   `json:"category"`
	Difficulty    *string   `json:"difficulty"`
	Active        *bool     `json:"active"`
}

// Apply возвращает копию вопроса с применёнными изменениями.
func (p QuestionPatch) Apply(q Question) Question {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Options != nil {
		q.Options = append([]string(nil), (*p.Options)...)
	}
	if p.CorrectOption != nil {
		q.CorrectOption = *p.CorrectOption
	}
	if p.Explanation != nil {
		q.Explanation = *p.Explanation
	}
	if p.Category != nil {
		q.Category = *p.Category
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Active != nil {
		q.Active = *p.Active
	}
	return q
}

// DeleteOutcome описывает, что произошло при удалении вопроса.
type DeleteOutcome string

const (
	// DeleteOutcomeDeleted: вопрос удалён.
	DeleteOutcomeDeleted DeleteOutcome = "deleted"
	// DeleteOutcomeDeactivated: вопрос уже рассылался и только выключен.
	DeleteOutcomeDeactivated DeleteOutcome = "deactivated"
)

// DeliveryEvent фиксирует рассылку вопроса в определённый момент («вопрос дня»).
type DeliveryEvent struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionId"`
	SentAt     time.Time `json:"sentDate"`
	Question   Question  `json:"question"`
}

// Response хранит засчитанный ответ пользователя на рассылку.
type Response struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	DeliveryEventID int64     `json:"dailyQuestionId"`
	Answer          int       `json:"answer"`
	IsCorrect       bool      `json:"isCorrect"`
	RespondedAt     time.Time `json:"respondedAt"`
}

// RecordResponseParams содержит данные для сохранения ответа.
type RecordResponseParams struct {
	UserID          int64
	DeliveryEventID int64
	Answer          int
	IsCorrect       bool
}

// User описывает подписчика чат-платформы.
type User struct {
	ID             int64     `json:"id"`
	ExternalID     string    `json:"kakaoId"`
	Nickname       string    `json:"nickname"`
	Subscribed     bool      `json:"isSubscribed"`
	TotalAnswered  int       `json:"totalAnswered"`
	CorrectAnswers int       `json:"correctAnswers"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

const nicknamePrefixLen = 5

// NicknameFor строит ник нового пользователя из начала внешнего ID.
func NicknameFor(externalID string) string {
	runes := []rune(strings.TrimSpace(externalID))
	if len(runes) > nicknamePrefixLen {
		runes = runes[:nicknamePrefixLen]
	}
	return "Пользователь_" + string(runes)
}

// MessageTypeText единственный обрабатываемый тип входящих сообщений.
const MessageTypeText = "text"

// InboundMessage описывает входящее сообщение из вебхука чат-платформы.
type InboundMessage struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Button описывает кнопку-ссылку в исходящем сообщении.
type Button struct {
	Title string
	URL   string
}

// Message описывает исходящее сообщение в чат.
type Message struct {
	Text    string
	Link    string
	Buttons []Button
}
