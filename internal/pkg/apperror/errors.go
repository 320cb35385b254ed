package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	// ErrCodeInvalidState — переход запрошен из состояния, которое его не допускает.
	// Отличается от NOT_FOUND: клиент должен уметь показать «ставку уже приняли»,
	// а не «ставка не существует».
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeDuplicateBid ErrorCode = "DUPLICATE_BID"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation возвращает ошибку валидации с сообщением для клиента.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Internal оборачивает инфраструктурную ошибку. Message уходит клиенту,
// cause остаётся в логах.
func Internal(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeInternal, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidState, ErrCodeDuplicateBid:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsInvalidState(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeInvalidState
}

var (
	ErrProjectNotFound      = New(ErrCodeNotFound, "проект не найден")
	ErrBidNotFound          = New(ErrCodeNotFound, "предложение не найдено")
	ErrContractNotFound     = New(ErrCodeNotFound, "контракт не найден")
	ErrConversationNotFound = New(ErrCodeNotFound, "диалог не найден")
	ErrUserNotFound         = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials   = New(ErrCodeUnauthorized, "неверные учетные данные")

	ErrProjectNotOpen = New(ErrCodeInvalidState, "проект не принимает предложения")
	ErrBidNotPending  = New(ErrCodeInvalidState, "предложение уже не в статусе pending")
	ErrNoCounterOffer = New(ErrCodeInvalidState, "по предложению нет встречного оффера")
	ErrDuplicateBid   = New(ErrCodeDuplicateBid, "вы уже отправили предложение на этот проект")
	ErrProfileMissing = New(ErrCodeNotFound, "профиль фрилансера не найден")
)
