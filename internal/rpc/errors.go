package rpc

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
)

const (
	errorTypeNotFound  = "not_found"
	errorTypeTimeout   = "timeout"
	errorTypeCancelled = "cancelled"
	errorTypeTransient = "transient"
	errorTypeOther     = "other"
)

// IsNotFound reports whether err means the requested block does not exist (yet).
func IsNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

// errorType classifies err for the rpc error metric.
func errorType(err error) string {
	switch {
	case IsNotFound(err):
		return errorTypeNotFound
	case errors.Is(err, context.Canceled):
		return errorTypeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	case retryableError(err):
		return errorTypeTransient
	default:
		return errorTypeOther
	}
}
