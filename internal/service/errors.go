package service

import (
	"errors"

	"Clanhub/internal/storage"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrSectionNotFound      = errors.New("板块不存在")
	ErrThreadNotFound       = errors.New("主题不存在")
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrContentInvalid       = errors.New("内容为空或超出长度限制")
	ErrAccessDenied         = errors.New("无权访问该板块")
	ErrInvalidTransition    = errors.New("审核状态不允许该流转")
	ErrSectionTypeMismatch  = errors.New("板块类型不支持该操作")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

// MapError 错误到业务码。存储层哨兵经过包装，必须用 errors.Is 判别，
// 不能做等值查表。
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrParamInvalid),
		errors.Is(err, ErrContentInvalid),
		errors.Is(err, ErrSectionTypeMismatch),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, storage.ErrValidation):
		return BadRequest, err.Error()
	case errors.Is(err, UnauthorizedError):
		return Unauthorized, err.Error()
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, storage.ErrPermission):
		return Forbidden, err.Error()
	case errors.Is(err, ErrSectionNotFound),
		errors.Is(err, ErrThreadNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, storage.ErrNotFound):
		return NotFound, err.Error()
	default:
		return InternalServerError, UnExpectedError.Error()
	}
}
