package service

import (
	"errors"
	"fmt"
)

// 服务层统一错误分类，handler据此映射HTTP状态码
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("actor not authorized for this action")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrSchemaConflict    = errors.New("catalog schema conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPersistence       = errors.New("persistence failure")
)

// 字段校验错误码
const (
	ErrCodeRequired      = "required"
	ErrCodeInvalidFormat = "invalid_format"
	ErrCodeInvalidOption = "invalid_option"
	ErrCodeMaxLength     = "max_length"
	ErrCodePattern       = "pattern"
	ErrCodeOutOfRange    = "out_of_range"
	ErrCodeUnknownField  = "unknown_field"
)

// FieldError 单个字段的校验失败信息
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationFailedError 表单校验失败，携带全部字段错误而非只有第一个
type ValidationFailedError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed with %d field error(s)", len(e.Errors))
}
