package service

import (
	"errors"

	"github.com/penwise/backend/internal/repository"
)

var (
	// ErrInvalidInput 请求参数不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoUpdates PATCH 请求没有任何可更新字段
	ErrNoUpdates = errors.New("no updates provided")

	ErrProfileNotFound = repository.ErrProfileNotFound
	ErrPostNotFound    = repository.ErrPostNotFound
	ErrSampleNotFound  = repository.ErrSampleNotFound
)

// ValidationError 携带面向调用方的校验信息，errors.Is 匹配 ErrInvalidInput
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(message string) error {
	return &ValidationError{Message: message}
}
