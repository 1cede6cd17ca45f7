package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name     string
		apiKey   string
		bypass   bool
		header   string
		wantCode int
	}{
		{name: "верный ключ", apiKey: "secret", header: "secret", wantCode: http.StatusNoContent},
		{name: "неверный ключ", apiKey: "secret", header: "nope", wantCode: http.StatusUnauthorized},
		{name: "без заголовка", apiKey: "secret", wantCode: http.StatusUnauthorized},
		{name: "ключ не настроен", apiKey: "", header: "", wantCode: http.StatusUnauthorized},
		{name: "режим разработки", apiKey: "", bypass: true, wantCode: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := AdminAuthMiddleware(tc.apiKey, tc.bypass)(ok)
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tc.header != "" {
				req.Header.Set(AdminKeyHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.wantCode {
				t.Fatalf("ожидали код %d, получили %d", tc.wantCode, rec.Code)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "плохой запрос")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидали 400, получили %d", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("некорректный JSON: %v", err)
	}
	if env.Success || env.Message != "плохой запрос" {
		t.Fatalf("неожиданный ответ: %+v", env)
	}
}
