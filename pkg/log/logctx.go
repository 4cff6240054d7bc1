// log — прокладка slog-логгера через context.
//
// Транспортные слои (HTTP-мидлвары стаба, клиентский транспорт) кладут
// request-scoped логгер в контекст, нижние слои достают его через From
// и пишут записи с уже привязанным request_id.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}

// With достаёт логгер из контекста, обогащает его атрибутами и кладёт обратно.
// Возвращает новый контекст и тот же обогащённый логгер.
func With(ctx context.Context, attrs ...slog.Attr) (context.Context, *slog.Logger) {
	l := From(ctx)

	if len(attrs) > 0 {
		args := make([]any, 0, len(attrs))
		for _, a := range attrs {
			args = append(args, a)
		}

		l = l.With(args...)
	}

	return Into(ctx, l), l
}
