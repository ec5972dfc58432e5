package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{"context cancelled", fmt.Errorf("query: %w", context.Canceled), false},
		{"plain error", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	r := &PostgresRepository{delays: []time.Duration{time.Millisecond, time.Millisecond}}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the last delay", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return errors.New("connection reset by peer")
		})
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return ErrSessionNotFound
		})
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		slow := &PostgresRepository{delays: []time.Duration{time.Hour}}
		err := slow.withRetry(ctx, func() error {
			return errors.New("broken pipe")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
