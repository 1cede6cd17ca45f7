package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("PG_DSN", "postgres://localhost/quiz")
	t.Setenv("SCHEDULE_HOUR", "9")
	t.Setenv("SERVICE_URL", "https://quiz.example.com/")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("ожидали порт 8080, получили %d", cfg.Port)
	}
	if cfg.Schedule.Hour != 9 || cfg.Schedule.Minute != 0 {
		t.Fatalf("неверное расписание: %+v", cfg.Schedule)
	}
	if cfg.Donation.MinAmount != 1000 || cfg.Donation.DefaultAmount != 3000 {
		t.Fatalf("неверные лимиты пожертвований: %+v", cfg.Donation)
	}
	if cfg.Kakao.Timeout != 10*time.Second {
		t.Fatalf("ожидали таймаут 10s, получили %s", cfg.Kakao.Timeout)
	}
	if cfg.Messenger.Driver != MessengerKakao {
		t.Fatalf("ожидали драйвер kakao, получили %s", cfg.Messenger.Driver)
	}
	if cfg.BaseURL() != "https://quiz.example.com" {
		t.Fatalf("ожидали URL без слэша, получили %s", cfg.BaseURL())
	}
}

func TestLocationFallback(t *testing.T) {
	var cfg AppConfig
	cfg.Schedule.Timezone = "Nowhere/Invalid"
	if cfg.Location() != time.UTC {
		t.Fatalf("ожидали UTC для некорректного пояса")
	}
}
