package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverRateLimitRepository(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverRateLimitRepository(primary, fallback, &logger)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("CheckRateLimit", ctx, "u1", 5, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "u1", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, repo.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("CheckRateLimit", ctx, "u2", 5, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "u2", 5, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "u2", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackUntilRecoveryInterval", func(t *testing.T) {
		fallback.On("CheckRateLimit", ctx, "u3", 5, time.Minute).Return(false, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "u3", 5, time.Minute)
		assert.NoError(t, err)
		assert.False(t, allowed)
		primary.AssertNotCalled(t, "CheckRateLimit", ctx, "u3", 5, time.Minute)
	})

	t.Run("RecoversAfterInterval", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("CheckRateLimit", ctx, "u4", 5, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "u4", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, repo.Degraded())
	})
}

func TestFailover_WithRealStores(t *testing.T) {
	logger := zerolog.New(io.Discard)
	broken := NewRedisRateLimitRepository(nil)
	repo := NewFailoverRateLimitRepository(broken, NewMemoryRateLimitRepository(), &logger)

	allowed, err := repo.CheckRateLimit(context.Background(), "k", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(context.Background(), "k", 1, time.Minute)
	assert.NoError(t, err)
	assert.False(t, allowed)
}
