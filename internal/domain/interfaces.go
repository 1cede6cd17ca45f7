package domain

import (
	"context"
	"time"
)

// QuestionRepo хранит вопросы и их активность.
type QuestionRepo interface {
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error)
	GetQuestion(ctx context.Context, id int64) (Question, error)
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
	CountActiveQuestions(ctx context.Context) (int, error)
	// ActiveQuestionAt возвращает активный вопрос по смещению в стабильном порядке (id).
	ActiveQuestionAt(ctx context.Context, offset int) (Question, error)
}

// DeliveryRepo ведёт журнал рассылок «вопроса дня».
type DeliveryRepo interface {
	RecordDelivery(ctx context.Context, questionID int64) (DeliveryEvent, error)
	// LatestDelivery возвращает рассылку с максимальным временем отправки или ErrNoDelivery.
	LatestDelivery(ctx context.Context) (DeliveryEvent, error)
	CountDeliveries(ctx context.Context, questionID int64) (int, error)
}

// UserRepo хранит подписчиков.
type UserRepo interface {
	FindOrCreateByExternalID(ctx context.Context, externalID, nickname string) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	ListSubscribers(ctx context.Context) ([]User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// ResponseRepo ведёт журнал ответов.
type ResponseRepo interface {
	HasAnswered(ctx context.Context, userID, deliveryEventID int64) (bool, error)
	// RecordResponse сохраняет ответ и обновляет счётчики пользователя в одной транзакции.
	// При повторе для той же пары (пользователь, рассылка) возвращает ErrAlreadyAnswered.
	RecordResponse(ctx context.Context, params RecordResponseParams) (Response, error)
}

// ResponseStatsRepo считает аналитику по ответам.
type ResponseStatsRepo interface {
	CountResponses(ctx context.Context) (int64, error)
	CountCorrectResponses(ctx context.Context) (int64, error)
	DailyResponseCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	CategoryResponseStats(ctx context.Context) ([]CategoryStat, error)
}

// DonationRepo хранит пожертвования.
type DonationRepo interface {
	CreateDonation(ctx context.Context, params CreateDonationParams) (Donation, error)
	GetDonationByOrderCode(ctx context.Context, orderCode string) (Donation, error)
	// ApproveDonation переводит в approved только пожертвование в статусе ready, иначе ErrDonationFinalized.
	ApproveDonation(ctx context.Context, id int64, approvedAt time.Time) error
	// SetDonationStatusByOrderCode меняет только записи в статусе ready и возвращает их число.
	SetDonationStatusByOrderCode(ctx context.Context, orderCode string, status DonationStatus) (int64, error)
}

// DonationStatsRepo считает аналитику по пожертвованиям.
type DonationStatsRepo interface {
	ApprovedDonationTotals(ctx context.Context) (count int64, amount int64, err error)
	RecentApprovedDonations(ctx context.Context, limit int) ([]Donation, error)
	MonthlyDonationStats(ctx context.Context) ([]MonthlyDonationStat, error)
}

// Messenger отправляет сообщения через чат-платформу.
type Messenger interface {
	Send(ctx context.Context, recipientID string, msg Message) error
}

// PaymentGateway абстрагирует платёжного провайдера.
type PaymentGateway interface {
	Ready(ctx context.Context, req PaymentReadyRequest) (PaymentReady, error)
	Approve(ctx context.Context, req PaymentApproveRequest) (PaymentApproval, error)
}

// Cache используется для простых TTL-блокировок.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error)
}
