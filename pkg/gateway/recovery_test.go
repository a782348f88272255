package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RecoveryAction
	}{
		{"nil error", nil, NoRetry},
		{"context canceled", context.Canceled, NoRetry},
		{"context deadline exceeded", context.DeadlineExceeded, NoRetry},
		{"unavailable", status.Error(codes.Unavailable, "down"), RetryNewConn},
		{"aborted", status.Error(codes.Aborted, "conflict"), RetryNewConn},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "rate limited"), RetrySameConn},
		{"invalid argument", status.Error(codes.InvalidArgument, "bad request"), NoRetry},
		{"unauthenticated", status.Error(codes.Unauthenticated, "no creds"), NoRetry},
		{"plain error not a grpc status", errors.New("boom"), NoRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}
