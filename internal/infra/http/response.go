package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Envelope задаёт общий формат JSON-ответов API.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// RequestID возвращает request ID из контекста chi.
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// WriteJSON отправляет успешный ответ с данными.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	WriteEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage отправляет успешный ответ с сообщением.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteEnvelope(w, status, Envelope{Success: true, Message: msg})
}

// WriteError отправляет JSON с ошибкой.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteEnvelope(w, status, Envelope{Success: false, Message: msg})
}

// WriteEnvelope отправляет конверт как есть.
func WriteEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
