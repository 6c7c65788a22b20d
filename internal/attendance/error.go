package attendance

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model (employee と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"

	// 位置情報
	CodeLocationUnavailable Code = "LOCATION_UNAVAILABLE"
	CodeOutOfRange          Code = "OUT_OF_RANGE"

	// 状態遷移
	CodeAlreadyClockedIn       Code = "ALREADY_CLOCKED_IN"
	CodeAlreadyCompleted       Code = "ALREADY_COMPLETED"
	CodeNotClockedIn           Code = "NOT_CLOCKED_IN"
	CodeOpenBreakPending       Code = "OPEN_BREAK_PENDING"
	CodeIntervalAlreadyOpen    Code = "INTERVAL_ALREADY_OPEN"
	CodeNoOpenInterval         Code = "NO_OPEN_INTERVAL"
	CodeActivityMismatch       Code = "ACTIVITY_MISMATCH"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
)

type APIError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Is はコードが一致すれば同じエラーとみなす（errors.Is(err, ErrAlreadyClockedIn) 用）
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

var (
	ErrLocationUnavailable = &APIError{Code: CodeLocationUnavailable, Message: "device location is required for attendance actions"}
	ErrAlreadyClockedIn    = &APIError{Code: CodeAlreadyClockedIn, Message: "already clocked in today"}
	ErrAlreadyCompleted    = &APIError{Code: CodeAlreadyCompleted, Message: "attendance for today is already completed"}
	ErrNotClockedIn        = &APIError{Code: CodeNotClockedIn, Message: "not clocked in"}
	ErrOpenBreakPending    = &APIError{Code: CodeOpenBreakPending, Message: "end the current break or meeting before clocking out"}
	ErrIntervalAlreadyOpen = &APIError{Code: CodeIntervalAlreadyOpen, Message: "a break or meeting is already in progress"}
	ErrNoOpenInterval      = &APIError{Code: CodeNoOpenInterval, Message: "no break or meeting is in progress"}
	ErrActivityMismatch    = &APIError{Code: CodeActivityMismatch, Message: "the open interval is a different activity"}

	// 楽観ロック負け。クライアントは状態を取り直して再送する
	ErrConcurrentModification = &APIError{Code: CodeConcurrentModification, Message: "attendance was modified concurrently; re-fetch status and retry"}
)

func ErrOutOfRange(distance, radius float64) *APIError {
	return &APIError{
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("outside the permitted work location (%.0fm away, limit %.0fm)", distance, radius),
		Details: map[string]any{"distance_meters": distance, "radius_meters": radius},
	}
}

func errActivityMismatch(open Activity) *APIError {
	return &APIError{
		Code:    CodeActivityMismatch,
		Message: fmt.Sprintf("a %s is in progress", open),
		Details: map[string]any{"open_activity": open},
	}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeLocationUnavailable:
			return http.StatusUnprocessableEntity
		case CodeOutOfRange:
			return http.StatusForbidden
		case CodeAlreadyClockedIn, CodeAlreadyCompleted, CodeNotClockedIn, CodeOpenBreakPending,
			CodeIntervalAlreadyOpen, CodeNoOpenInterval, CodeActivityMismatch, CodeConcurrentModification:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
