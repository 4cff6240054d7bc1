package middleware

import (
	"context"
	"net/http"

	"github.com/pribylovaa/go-campus-market/internal/client"

	"github.com/google/uuid"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если клиент его прислал;
//  2. иначе генерирует новый uuid;
//  3. кладёт id в Response Header, Request Header (его читает
//     errors.WriteError) и в контекст по ключу client.CtxRequestID.
//
// Ключ общий с клиентским транспортом, поэтому id, выданный TUI-клиентом,
// сквозной: виден и в логах стаба, и в конверте ошибки.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
				r.Header.Set("X-Request-Id", id)
			}
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), client.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
