package domain

import "time"

// DailyCount хранит количество ответов за один день.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// CategoryStat считает ответы и правильные ответы по категории.
type CategoryStat struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Correct  int64  `json:"correct"`
}

// MonthlyDonationStat суммирует подтверждённые пожертвования за месяц.
type MonthlyDonationStat struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
	Total int64 `json:"total"`
}

// ResponseStats содержит сводку по ответам для админки.
type ResponseStats struct {
	TotalResponses     int64          `json:"totalResponses"`
	CorrectResponses   int64          `json:"correctResponses"`
	IncorrectResponses int64          `json:"incorrectResponses"`
	CorrectRate        float64        `json:"correctRate"`
	DailyResponses     []DailyCount   `json:"dailyResponses"`
	CategoryStats      []CategoryStat `json:"categoryStats"`
}

// DonationStats содержит сводку по пожертвованиям для админки.
type DonationStats struct {
	TotalDonations  int64                 `json:"totalDonations"`
	TotalAmount     int64                 `json:"totalAmount"`
	RecentDonations []Donation            `json:"recentDonations"`
	MonthlyStats    []MonthlyDonationStat `json:"monthlyStats"`
}
