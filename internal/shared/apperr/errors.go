// Package apperr 业务错误分类
//
// 业务层返回 *Error，HTTP 层通过 HTTPStatus 统一映射状态码。
// 每种 Kind 对应一个哨兵值，调用方使用 errors.Is(err, apperr.ErrNotFound) 判断类别，
// Message 则携带面向用户的具体描述。
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"house-rent/internal/shared/storage"
)

// Kind 错误类别
type Kind string

const (
	KindValidation          Kind = "validation"
	KindInvalidRole         Kind = "invalid_role"
	KindDuplicateEmail      Kind = "duplicate_email"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindUnauthenticated     Kind = "unauthenticated"
	KindForbidden           Kind = "forbidden"
	KindOwnerPending        Kind = "owner_pending"
	KindNotFound            Kind = "not_found"
	KindPropertyUnavailable Kind = "property_unavailable"
	KindInvalidTransition   Kind = "invalid_transition"
	KindInvalidState        Kind = "invalid_state"
	KindAlreadyApproved     Kind = "already_approved"
	KindConflict            Kind = "conflict"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is 按 Kind 匹配，使哨兵值可用于 errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// 哨兵值（只用于 errors.Is 比较）
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrInvalidRole         = &Error{Kind: KindInvalidRole}
	ErrDuplicateEmail      = &Error{Kind: KindDuplicateEmail}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrOwnerPending        = &Error{Kind: KindOwnerPending}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrPropertyUnavailable = &Error{Kind: KindPropertyUnavailable}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrAlreadyApproved     = &Error{Kind: KindAlreadyApproved}
	ErrConflict            = &Error{Kind: KindConflict}
)

// New 创建指定类别的错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf 创建指定类别的格式化错误
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// 常用构造函数

func Validation(message string) *Error        { return New(KindValidation, message) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func Unauthenticated(message string) *Error   { return New(KindUnauthenticated, message) }
func InvalidTransition(message string) *Error { return New(KindInvalidTransition, message) }

// FromStorage 将存储层领域错误转换为业务错误，其余错误原样返回
// notFoundMsg 为 ErrNotFound 对应的用户可见描述
func FromStorage(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return NotFound(notFoundMsg)
	case errors.Is(err, storage.ErrConflict):
		return New(KindConflict, "Resource was modified concurrently, reload and retry")
	case errors.Is(err, storage.ErrDuplicate):
		return New(KindConflict, "Resource already exists")
	}
	return err
}

// HTTPStatus 将错误映射为 HTTP 状态码；非 *Error 一律视为 500
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInvalidRole, KindDuplicateEmail,
		KindPropertyUnavailable, KindInvalidTransition, KindInvalidState, KindAlreadyApproved:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindOwnerPending:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message 返回面向用户的错误信息；非业务错误返回空字符串，由调用方决定是否隐藏细节
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return ""
}
