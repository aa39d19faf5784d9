package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/study-partner/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateRequest = errors.New("request already sent to this partner")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("store timeout")
)

// storeErr 将仓储层错误映射为服务错误；what 用于 NotFound 的提示信息
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateRequest
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	case isServiceErr(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

func isServiceErr(err error) bool {
	for _, target := range []error{ErrNotFound, ErrDuplicateRequest, ErrForbidden, ErrValidation, ErrUnauthorized, ErrStoreUnavailable, ErrTimeout} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
