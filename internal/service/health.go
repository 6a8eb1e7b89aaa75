package service

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/repo"
)

var (
	ErrDatabaseNotReachable = errors.New("database not reachable")
	ErrRedisNotReachable    = errors.New("redis not reachable")
	ErrNATSNotReachable     = errors.New("nats not reachable")
)

// EntryCounter is satisfied by *repo.Entry.
type EntryCounter interface {
	CountByKind(ctx context.Context, date string) (map[string]int, error)
}

var _ EntryCounter = (*repo.Entry)(nil)

type Health struct {
	DB      *bun.DB
	Redis   *redis.Client
	NATS    *nats.Conn
	Entries EntryCounter

	now func() time.Time
}

func NewHealth(db *bun.DB, redis *redis.Client, nats *nats.Conn, entryRepo *repo.Entry) *Health {
	return &Health{
		DB:      db,
		Redis:   redis,
		NATS:    nats,
		Entries: entryRepo,
		now:     time.Now,
	}
}

// HealthReport is what /_/health answers when every backend is reachable.
type HealthReport struct {
	Status string `json:"status"`
	Date   string `json:"date"`
	// Entries counts today's entries per kind, so an idle line shows up as zeros.
	Entries map[string]int `json:"entries"`
}

func (s *Health) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return errors.Wrap(ErrDatabaseNotReachable, err.Error())
	}

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return errors.Wrap(ErrRedisNotReachable, err.Error())
	}

	// nats pings on its own every 20 seconds (see infra/nats.go)
	status := s.NATS.Status()
	if status != nats.CONNECTED && status != nats.DRAINING_PUBS && status != nats.DRAINING_SUBS {
		return errors.Wrap(ErrNATSNotReachable, status.String())
	}

	return nil
}

// Report pings every backend, then counts today's entries.
func (s *Health) Report(ctx context.Context) (*HealthReport, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return s.today(ctx)
}

func (s *Health) today(ctx context.Context) (*HealthReport, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	date := now().Format(constant.DateLayout)
	counts, err := s.Entries.CountByKind(ctx, date)
	if err != nil {
		return nil, errors.Wrap(ErrDatabaseNotReachable, err.Error())
	}
	return &HealthReport{Status: "ok", Date: date, Entries: counts}, nil
}
