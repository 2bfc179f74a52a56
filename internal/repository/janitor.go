package repository

import (
	"context"
	"log/slog"
	"time"
)

// RunJanitor purges expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration) {
	cleanupTicker := time.NewTicker(interval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Session janitor stopping.")
			return
		case now := <-cleanupTicker.C:
			n, err := p.PurgeExpired(ctx, now)
			if err != nil {
				slog.ErrorContext(ctx, "failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "Purged expired sessions", "sessions.count", n)
			}
		}
	}
}
