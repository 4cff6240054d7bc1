package client

import (
	"errors"
	"fmt"
)

// Три вида ошибок клиента. Любая из них оставляет состояние вызывающего
// нетронутым; автоматических повторов клиент не делает — решение о ретрае
// за вызывающим (errors.Is для классификации).
var (
	// ErrNetwork — запрос не удалось завершить: транспортная ошибка,
	// обрыв соединения или истёкший таймаут.
	ErrNetwork = errors.New("network failure")
	// ErrStatus — бекенд ответил не-2xx статусом. Детали — в *StatusError.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode — тело 2xx-ответа не разобралось как JSON или не содержит
	// обязательных полей (например, элемент списка без id).
	ErrDecode = errors.New("malformed response")
)

// StatusError — не-2xx ответ бекенда с разобранным конвертом ошибки
// {"error": {"code", "message", "request_id"}}. Конверт разбирается
// best-effort: при нечитаемом теле заполнен только StatusCode.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("http %d", e.StatusCode)
}

// Is позволяет errors.Is(err, ErrStatus) без знания конкретного типа.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }
