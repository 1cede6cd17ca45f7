package http

import (
	"crypto/subtle"
	"net/http"
)

// AdminKeyHeader несёт ключ администратора.
const AdminKeyHeader = "x-api-key"

// AdminAuthMiddleware пропускает запросы с верным x-api-key.
// При devBypass проверка отключена; пустой apiKey без devBypass закрывает доступ полностью.
func AdminAuthMiddleware(apiKey string, devBypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if devBypass {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(AdminKeyHeader)
			if apiKey == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				WriteError(w, http.StatusUnauthorized, "Требуется ключ администратора")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
