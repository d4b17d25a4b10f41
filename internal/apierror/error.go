package apierror

import (
	"errors"
	"fmt"
)

// Code классифицирует ошибки клиентского ядра
type Code string

const (
	// CodeInvalidStateTransition — действие над предложением в неподходящем статусе
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	// CodePermissionDenied — действие выполнено не той ролью
	CodePermissionDenied Code = "PERMISSION_DENIED"
	// CodeValidation — некорректные данные, обнаруженные до сетевого вызова
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeNotFound — ресурс не найден на бэкенде
	CodeNotFound Code = "NOT_FOUND"
	// CodeConflict — гонка создания, разрешается повторным запросом
	CodeConflict Code = "CONFLICT"
	// CodeUnauthorized — токен отклонён, обновлением занимается внешний слой
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeTransient — сетевая или серверная ошибка, имеет смысл повторить
	CodeTransient Code = "TRANSIENT"
)

// Error представляет классифицированную ошибку обращения к бэкенду
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

// Unwrap возвращает исходную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибки через errors.Is по коду
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// New создаёт ошибку с указанным кодом и сообщением
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap создаёт ошибку с указанным кодом поверх исходной
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// InvalidStateTransition создаёт ошибку недопустимого перехода статуса
func InvalidStateTransition(message string) *Error {
	return New(CodeInvalidStateTransition, message)
}

// PermissionDenied создаёт ошибку действия не той ролью
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message)
}

// Validation создаёт ошибку валидации до сетевого вызова
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound создаёт ошибку отсутствующего ресурса
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Conflict создаёт ошибку гонки создания
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Transient создаёт ошибку, которую имеет смысл повторить
func Transient(message string, err error) *Error {
	return Wrap(CodeTransient, message, err)
}

// HasCode сообщает, несёт ли ошибка указанный код
func HasCode(err error, code Code) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsTransient сообщает, стоит ли повторять операцию
func IsTransient(err error) bool {
	return HasCode(err, CodeTransient)
}
