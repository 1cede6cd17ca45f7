package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"daily-quiz-bot/internal/domain"
)

const (
	dailyWindowDays     = 7
	recentDonationLimit = 5
)

// Service собирает отчёты для админки.
type Service struct {
	users     domain.UserRepo
	responses domain.ResponseStatsRepo
	donations domain.DonationStatsRepo
	now       func() time.Time
}

// NewService создаёт сервис отчётов.
func NewService(users domain.UserRepo, responses domain.ResponseStatsRepo, donations domain.DonationStatsRepo) *Service {
	return &Service{users: users, responses: responses, donations: donations, now: time.Now}
}

// Users возвращает всех пользователей, новые первыми.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}
	return users, nil
}

// CorrectRate возвращает долю верных ответов в процентах с двумя знаками.
func CorrectRate(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*10000) / 100
}

// Responses возвращает сводку по ответам.
func (s *Service) Responses(ctx context.Context) (domain.ResponseStats, error) {
	total, err := s.responses.CountResponses(ctx)
	if err != nil {
		return domain.ResponseStats{}, fmt.Errorf("число ответов: %w", err)
	}
	correct, err := s.responses.CountCorrectResponses(ctx)
	if err != nil {
		return domain.ResponseStats{}, fmt.Errorf("число верных ответов: %w", err)
	}
	since := s.now().AddDate(0, 0, -dailyWindowDays)
	daily, err := s.responses.DailyResponseCounts(ctx, since)
	if err != nil {
		return domain.ResponseStats{}, fmt.Errorf("ответы по дням: %w", err)
	}
	categories, err := s.responses.CategoryResponseStats(ctx)
	if err != nil {
		return domain.ResponseStats{}, fmt.Errorf("ответы по категориям: %w", err)
	}
	return domain.ResponseStats{
		TotalResponses:     total,
		CorrectResponses:   correct,
		IncorrectResponses: total - correct,
		CorrectRate:        CorrectRate(correct, total),
		DailyResponses:     daily,
		CategoryStats:      categories,
	}, nil
}

// Donations возвращает сводку по подтверждённым пожертвованиям.
func (s *Service) Donations(ctx context.Context) (domain.DonationStats, error) {
	count, amount, err := s.donations.ApprovedDonationTotals(ctx)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("итоги пожертвований: %w", err)
	}
	recent, err := s.donations.RecentApprovedDonations(ctx, recentDonationLimit)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("последние пожертвования: %w", err)
	}
	monthly, err := s.donations.MonthlyDonationStats(ctx)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("пожертвования по месяцам: %w", err)
	}
	return domain.DonationStats{
		TotalDonations:  count,
		TotalAmount:     amount,
		RecentDonations: recent,
		MonthlyStats:    monthly,
	}, nil
}
