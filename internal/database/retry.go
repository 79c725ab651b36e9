package database

import (
	"context"
	"time"
)

// connectBackoff controls how long NewDB waits for the database to come up.
type connectBackoff struct {
	Retries int
	Initial time.Duration
	Max     time.Duration
}

// delay doubles per attempt (1-based) and is capped at Max.
func (b connectBackoff) delay(attempt int) time.Duration {
	d := b.Initial
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

func (db *DB) pingWithRetry(ctx context.Context, backoff connectBackoff) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt > backoff.Retries {
			return err
		}
		wait := backoff.delay(attempt)
		db.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("Database is not reachable yet")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
