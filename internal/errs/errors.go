package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ==================== 错误分类 ====================

// Kind 业务错误分类，控制器依据它映射 HTTP 状态码
type Kind int

const (
	KindValidation   Kind = iota + 1 // 400 入参缺失/格式错误
	KindAuth                         // 401 凭证错误/缺少令牌
	KindForbidden                    // 403 角色或归属不匹配
	KindNotFound                     // 404
	KindConflict                     // 409 唯一性冲突（如邮箱重复）
	KindInvalidState                 // 400 状态机不允许的流转
	KindInternal                     // 500 存储层意外错误
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ==================== 构造函数 ====================

func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authf(format string, args ...interface{}) error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Internal 包装存储层错误，对外隐藏内部细节
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// ==================== 判定与映射 ====================

// KindOf 提取错误分类，非业务错误一律按 Internal 处理
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus 业务错误 → HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 对外展示的错误信息，内部错误不泄露细节
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
