// handlers — HTTP-хендлеры стаба campus-market.
//
// Хендлеры тонкие: разобрать query/тело, позвать хранилище, отдать JSON.
// Вся доменная валидация и права — в store; ошибки наружу уходят через
// apierrors.WriteError единым конвертом.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/stub/store"
)

// Нормализация limit: по умолчанию 12, всё, что меньше 1 — к умолчанию,
// всё, что больше 300 — к 300.
const (
	defaultLimit = 12
	maxLimit     = 300
)

// Handlers агрегирует зависимости (хранилище стаба).
type Handlers struct {
	Store *store.Store
}

func New(st *store.Store) *Handlers {
	return &Handlers{Store: st}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// schemaOf достаёт обязательный query-параметр schema.
func schemaOf(r *http.Request) (string, error) {
	schema := r.URL.Query().Get("schema")
	if schema == "" {
		return "", fmt.Errorf("missing schema: %w", apierrors.ErrInvalidArgument)
	}

	return schema, nil
}

// callerOf достаёт текущего пользователя из X-User-Id.
// Стаб верит заголовку: аутентификации здесь нет.
func callerOf(r *http.Request) (string, error) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		return "", fmt.Errorf("missing X-User-Id: %w", apierrors.ErrInvalidArgument)
	}

	return id, nil
}

// pageQuery разбирает пагинацию списочных запросов.
//
// cursor — RFC3339-метка recency последнего элемента предыдущей страницы;
// пустой или отсутствующий курсор означает начало ленты. Непарсящийся
// курсор — ErrInvalidCursor, непарсящийся limit — ErrInvalidArgument.
func pageQuery(r *http.Request) (time.Time, int, error) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("bad limit %q: %w", v, apierrors.ErrInvalidArgument)
		}

		switch {
		case n < 1:
			limit = defaultLimit
		case n > maxLimit:
			limit = maxLimit
		default:
			limit = n
		}
	}

	var after time.Time
	if v := r.URL.Query().Get("cursor"); v != "" {
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("bad cursor %q: %w", v, apierrors.ErrInvalidCursor)
		}
		after = ts
	}

	return after, limit, nil
}

// stampOf форматирует recency-метку для поля lastTimestamp.
func stampOf(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
