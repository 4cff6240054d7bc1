package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	logctx "github.com/pribylovaa/go-campus-market/pkg/log"
)

// CtxKey — ключи контекста, которые читает клиентский транспорт.
type CtxKey string

// CtxRequestID — внешний request id: если вызывающий положил его в контекст,
// транспорт отправит его в X-Request-Id вместо генерации нового.
const CtxRequestID CtxKey = "request_id"

// metadataTransport добавляет в каждый исходящий запрос заголовки:
//   - X-Request-Id (из контекста или свежий uuid);
//   - X-User-Id — текущий пользователь (если задан);
//   - User-Agent (если задан).
//
// Исходный *http.Request не модифицируется (клонируется).
type metadataTransport struct {
	next      http.RoundTripper
	userAgent string
	userID    string
}

func (t *metadataTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	rid := ""
	if v := req.Context().Value(CtxRequestID); v != nil {
		rid, _ = v.(string)
	}
	if rid == "" {
		rid = uuid.NewString()
	}
	out.Header.Set("X-Request-Id", rid)

	if t.userID != "" {
		out.Header.Set("X-User-Id", t.userID)
	}
	if t.userAgent != "" {
		out.Header.Set("User-Agent", t.userAgent)
	}

	return t.next.RoundTrip(out)
}

// loggingTransport — логирование исходящих вызовов.
// Поведение:
//   - добавляет поля request_id/method/path, прокладывает обогащённый логгер
//     в контекст записи;
//   - пишет одну финальную запись уровня Info: msg="http", status, dur.
//
// Безопасность: не логирует payload и чувствительные заголовки.
type loggingTransport struct {
	next http.RoundTripper
	base *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = slog.Default()
	}

	start := time.Now()

	l := base.With(
		slog.String("request_id", req.Header.Get("X-Request-Id")),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)
	req = req.WithContext(logctx.Into(req.Context(), l))

	resp, err := t.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.Duration("dur", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}

	l.LogAttrs(req.Context(), slog.LevelInfo, "http", attrs...)

	return resp, err
}

// newTransport собирает цепочку RoundTripper-ов (внешний -> внутренний):
// metadata -> logging -> base.
func newTransport(base http.RoundTripper, userAgent, userID string, log *slog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return &metadataTransport{
		next:      &loggingTransport{next: base, base: log},
		userAgent: userAgent,
		userID:    userID,
	}
}
