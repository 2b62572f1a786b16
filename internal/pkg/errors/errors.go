package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden используется, когда пользователь пытается работать с чужой сессией.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState используется, когда операция недопустима для текущего статуса сессии
	// (например, ответ в уже завершённую сессию).
	ErrInvalidState = errors.New("operation not valid for current state")

	// ErrConflict используется для конфликтов состояния: повторный ответ на вопрос
	// или изменение вопроса, занятого активной сессией.
	ErrConflict = errors.New("resource state conflict")

	// ErrInsufficientData используется, когда банк вопросов не может покрыть квоту категории.
	ErrInsufficientData = errors.New("insufficient question data")

	// ErrInternal используется для ошибок хранилища; детали не должны уходить клиенту.
	ErrInternal = errors.New("internal error")
)
