package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые драйверы отправки сообщений.
const (
	MessengerKakao    = "kakao"
	MessengerTelegram = "telegram"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	Port        int    `envconfig:"PORT" default:"8080"`
	ServiceURL  string `envconfig:"SERVICE_URL" default:"http://localhost:8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	Admin struct {
		APIKey    string `envconfig:"ADMIN_API_KEY"`
		DevBypass bool   `envconfig:"ADMIN_DEV_BYPASS" default:"false"`
	} `envconfig:""`

	Messenger struct {
		Driver string `envconfig:"MESSENGER_DRIVER" default:"kakao"`
	} `envconfig:""`

	Kakao struct {
		BaseURL  string        `envconfig:"KAKAO_BASE_URL" default:"https://kapi.kakao.com"`
		AdminKey string        `envconfig:"KAKAO_ADMIN_KEY"`
		PayCID   string        `envconfig:"KAKAO_PAY_CID" default:"TC0ONETIME"`
		Timeout  time.Duration `envconfig:"KAKAO_TIMEOUT" default:"10s"`
	} `envconfig:""`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
	} `envconfig:""`

	Schedule struct {
		Enabled  bool   `envconfig:"SCHEDULE_ENABLED" default:"true"`
		Hour     int    `envconfig:"SCHEDULE_HOUR" default:"8"`
		Minute   int    `envconfig:"SCHEDULE_MINUTE" default:"0"`
		Timezone string `envconfig:"SCHEDULE_TZ" default:"Asia/Seoul"`
	} `envconfig:""`

	Donation struct {
		DefaultAmount int64  `envconfig:"DONATION_DEFAULT_AMOUNT" default:"3000"`
		MinAmount     int64  `envconfig:"DONATION_MIN_AMOUNT" default:"1000"`
		ItemName      string `envconfig:"DONATION_ITEM_NAME" default:"Кофе для разработчика"`
	} `envconfig:""`

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
	} `envconfig:""`
}

// Location возвращает часовой пояс расписания или UTC при ошибке.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Schedule.Timezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

// BaseURL возвращает SERVICE_URL без завершающего слэша.
func (c AppConfig) BaseURL() string {
	return strings.TrimRight(c.ServiceURL, "/")
}

// Load загружает конфиг из окружения (и .env, если он есть).
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
