package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSchemaRetry keeps trying to create the schema every interval until it
// succeeds or ctx is done. It is used when the database was unreachable at
// startup. The returned channel is closed when the loop exits.
func StartSchemaRetry(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := prepare(ctx, db, startupTimeout); err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Warn("database not ready, will retry", zap.Error(err))
					continue
				}
				log.Info("database available, schema ready")
				return
			}
		}
	}()
	return done
}
