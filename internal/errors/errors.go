// errors — доменные ошибки campus-market и единый формат ошибок HTTP-слоя.
//
// Пакет решает две задачи:
//   - словарь сентинел-ошибок, которыми обмениваются хранилище стаба и его
//     HTTP-хендлеры (errors.Is на границах);
//   - конверт ошибки в JSON-ответе. Его пишет стаб (WriteError) и разбирает
//     клиент (internal/client) при не-2xx ответах.
//
// Наружу уходят только корректный HTTP-статус, короткий стабильный код и
// безопасное message без внутренних деталей.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrNotFound — сущность (или схема кампуса) отсутствует.
	// HTTP: 404 not_found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — некорректные входные данные запроса.
	// HTTP: 400 invalid_argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidCursor — битый курсор пагинации (не RFC3339-метка).
	// HTTP: 400 invalid_cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrPermissionDenied — операция над чужой сущностью
	// (например, правка чужого объявления). HTTP: 403 permission_denied.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict — конфликт состояния (например, беседа с самим собой).
	// HTTP: 409 conflict.
	ErrConflict = errors.New("conflict")
)

// APIError — единый формат ошибки для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - сентинелы пакета маппятся по таблице ниже (errors.Is, так что
//     обёртки через fmt.Errorf("%s: %w", ...) распознаются);
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504;
//   - прочее -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{
			Error: APIError{
				Code:    "internal",
				Message: "internal error",
			},
		}
	}

	httpStatus, code, msg := base(err)
	return httpStatus, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id, чтобы клиент мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// base — базовый маппинг доменной ошибки -> HTTP/код/сообщение.
// Таблица учитывает реальные ошибки хранилища и хендлеров стаба:
//   - ErrInvalidArgument (битые входные/limit/пустой текст) -> 400
//   - ErrInvalidCursor (битый курсор пагинации) -> 400
//   - ErrPermissionDenied (чужая сущность) -> 403
//   - ErrNotFound (сущность/схема) -> 404
//   - ErrConflict -> 409
//   - Canceled -> 499 (клиент закрыл соединение)
//   - DeadlineExceeded -> 504 (истёк таймаут запроса)
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, ErrInvalidCursor):
		return http.StatusBadRequest, "invalid_cursor", "invalid cursor"
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied", "permission denied"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict", "conflict"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
