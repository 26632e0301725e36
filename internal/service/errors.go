package service

import (
	"errors"
	"fmt"
)

var (
	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrSupplierNotFound     = errors.New("supplier not found")
	ErrInvalidStatus        = errors.New("invalid delivery status")
	ErrInvalidRole          = errors.New("invalid role")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrFieldTooLong         = errors.New("field too long")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrStorage              = errors.New("storage failure")
)

// ValidationError 参数校验错误，可 Unwrap 为 ErrMissingRequiredField 等哨兵错误
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// StorageError 存储错误，保留驱动错误供排查，不展示给用户
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "storage failure: " + e.Op
	}
	return fmt.Sprintf("storage failure: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is 匹配 ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func newStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsValidationError 判断是否为访问存储前的校验错误
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
