package errors

import (
	"errors"
	"fmt"
)

// ValidationError 业务规则校验失败（字段值、跨字段约束、角色要求、上传文件等）
// 调用方可恢复，统一以 400 返回
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IntegrityError 持久化阶段才暴露的约束冲突（唯一索引、外键）
// 包括并发写入竞争导致的重复记录
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string { return e.Message }

func (e *IntegrityError) Unwrap() error { return e.Err }

// NewValidation 创建 ValidationError
func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

// NewValidationf 按格式创建 ValidationError
func NewValidationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NewIntegrity 创建 IntegrityError，保留底层驱动错误
func NewIntegrity(message string, err error) error {
	return &IntegrityError{Message: message, Err: err}
}

// IsValidation 判断 err 链中是否包含 ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity 判断 err 链中是否包含 IntegrityError
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// Message 提取业务错误的对外消息；非业务错误返回空串
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ie *IntegrityError
	if errors.As(err, &ie) {
		return ie.Message
	}
	return ""
}
