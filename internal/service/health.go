package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Messages reported by /health. Driver errors may carry host addresses, so
// only the class of failure is exposed.
const (
	dbConnectionFailed = "database connection failed"
	dbError            = "database error"
)

// Pinger checks that the database answers queries.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is reported by GET /health.
type HealthStatus struct {
	Status string `json:"status"`
	DBOK   bool   `json:"db_ok"`
	DB     string `json:"db"`
}

// HealthService reports database reachability.
type HealthService struct {
	db  Pinger
	log *zap.Logger
}

func NewHealthService(db Pinger, log *zap.Logger) *HealthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthService{db: db, log: log}
}

// Ping returns the database error, if any, bounded by a short timeout.
func (s *HealthService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return s.db.Ping(ctx)
}

// Check summarizes the database state. The service itself is always up.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	if err := s.Ping(ctx); err != nil {
		msg := dbMessage(err)
		s.log.Warn("database health check failed", zap.String("class", msg), zap.Error(err))
		return HealthStatus{Status: "degraded", DBOK: false, DB: msg}
	}
	return HealthStatus{Status: "ok", DBOK: true, DB: "connected"}
}

func dbMessage(err error) string {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return dbConnectionFailed
	default:
		return dbError
	}
}
