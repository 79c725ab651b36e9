package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRecoveryInterval = time.Minute

// FailoverRateLimitRepository обращается к primary, а после ошибки переключается
// на fallback и раз в recoveryInterval пробует вернуться.
type FailoverRateLimitRepository struct {
	primary          domain.RateLimitStore
	fallback         domain.RateLimitStore
	logger           *zerolog.Logger
	recoveryInterval time.Duration
	isDown           atomic.Bool
	lastCheck        atomic.Int64
	now              func() time.Time
}

func NewFailoverRateLimitRepository(primary, fallback domain.RateLimitStore, logger *zerolog.Logger) *FailoverRateLimitRepository {
	return &FailoverRateLimitRepository{
		primary:          primary,
		fallback:         fallback,
		logger:           logger,
		recoveryInterval: defaultRecoveryInterval,
		now:              time.Now,
	}
}

func (r *FailoverRateLimitRepository) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary rate limit store failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

func (r *FailoverRateLimitRepository) shouldProbe() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > r.recoveryInterval
}

func (r *FailoverRateLimitRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.shouldProbe() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary rate limit store recovered")
			}
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

// Degraded сообщает, работает ли хранилище на fallback.
func (r *FailoverRateLimitRepository) Degraded() bool {
	return r.isDown.Load()
}
