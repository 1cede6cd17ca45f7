package kakao

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"daily-quiz-bot/internal/infra/metrics"
)

// Config задаёт параметры доступа к Kakao API.
type Config struct {
	BaseURL  string
	AdminKey string
	PayCID   string
	Timeout  time.Duration
}

// Client ходит в HTTP API Kakao: сообщения канала и Kakao Pay.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient создаёт клиента.
func NewClient(cfg Config) *Client {
	client := &Client{cfg: cfg}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.httpClient = &http.Client{Timeout: timeout}
	if cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://kapi.kakao.com"
	}
	return client
}

// SetHTTPClient подменяет http.Client.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// APIError описывает ответ Kakao с кодом ошибки.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kakao %s failed: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (c *Client) postForm(ctx context.Context, operation, path string, form url.Values) ([]byte, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.AdminKey != "" {
		httpReq.Header.Set("Authorization", "KakaoAK "+c.cfg.AdminKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.ObserveNetworkRequest("kakao", operation, path, start, err)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
