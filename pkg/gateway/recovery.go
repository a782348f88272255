package gateway

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoveryAction classifies a failed call from its gRPC status code.
// Client.callWithRetry fails fast on NoRetry and retries once on any
// other action.
type RecoveryAction int

const (
	// NoRetry — the error is not recoverable (bad request, auth failure).
	NoRetry RecoveryAction = iota
	// RetrySameConn — transient error, retry on the existing connection.
	RetrySameConn
	// RetryNewConn — transport failure. callWithRetry retries it once on
	// the existing connection, like RetrySameConn; it does not redial.
	RetryNewConn
)

// Recovery configuration constants.
const (
	MaxRetries      = 1
	RetryBackoffMin = 250 * time.Millisecond
	RetryBackoffMax = 750 * time.Millisecond
)

// ClassifyError determines the recovery action for a failed Embed/Complete
// call from its gRPC status code.
func ClassifyError(err error) RecoveryAction {
	if err == nil {
		return NoRetry
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NoRetry
	}

	st, ok := status.FromError(err)
	if !ok {
		return NoRetry
	}

	switch st.Code() {
	case codes.Unavailable, codes.Aborted:
		return RetryNewConn
	case codes.ResourceExhausted:
		return RetrySameConn
	case codes.DeadlineExceeded, codes.Canceled:
		return NoRetry
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied,
		codes.NotFound, codes.Unimplemented:
		return NoRetry
	default:
		return NoRetry
	}
}
