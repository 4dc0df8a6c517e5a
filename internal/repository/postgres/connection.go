package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventhub/internal/connpool"
)

// Dial opens a lib/pq pool for dsn and checks it with a ping. It is the
// connpool.DialFunc for Postgres.
func Dial(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// NewCache returns a connection cache for dsn wired with Dial, Close and Ping.
func NewCache(dsn string, opts ...connpool.Option[*sql.DB]) *connpool.Cache[*sql.DB] {
	opts = append([]connpool.Option[*sql.DB]{
		connpool.WithCloser(func(ctx context.Context, db *sql.DB) error { return db.Close() }),
		connpool.WithPinger(func(ctx context.Context, db *sql.DB) error { return db.PingContext(ctx) }),
	}, opts...)
	return connpool.New("postgres", dsn, Dial, opts...)
}

// DBProvider hands out the pool used by the repositories.
type DBProvider interface {
	DB(ctx context.Context) (*sql.DB, error)
}

type cachedDB struct {
	cache *connpool.Cache[*sql.DB]
}

// NewDBProvider returns a provider backed by the connection cache.
func NewDBProvider(cache *connpool.Cache[*sql.DB]) DBProvider {
	return cachedDB{cache: cache}
}

func (p cachedDB) DB(ctx context.Context) (*sql.DB, error) {
	return p.cache.Get(ctx)
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
