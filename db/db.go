package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/config"
)

// DB owns the connection pool shared by all concurrent chunk loads. The
// mutex guards only the pool handle swap; it is never held across a query.
type DB struct {
	cfg config.DatabaseConfig
	log *zap.SugaredLogger

	mux sync.RWMutex
	db  *sqlx.DB
}

func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	return &DB{
		cfg: cfg,
		log: zap.S().Named("db"),
		db:  db,
	}, nil
}

func open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	sqlDB, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(int(cfg.MaxPoolSize))
	sqlDB.SetMaxIdleConns(int(cfg.MinPoolSize))
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(time.Second * time.Duration(cfg.MaxIdleLifetime))
	return sqlx.NewDb(sqlDB, "pgx"), nil
}

// Handle returns the current pool. Callers must not retain it across
// retries; a transparently recreated pool invalidates old handles.
func (d *DB) Handle() *sqlx.DB {
	d.mux.RLock()
	defer d.mux.RUnlock()
	return d.db
}

// Reset replaces a closed pool with a fresh one. The swap is a no-op when
// another caller already replaced the handle.
func (d *DB) Reset(old *sqlx.DB) error {
	d.mux.Lock()
	defer d.mux.Unlock()

	if d.db != old {
		return nil
	}

	fresh, err := open(d.cfg)
	if err != nil {
		return err
	}
	_ = old.Close()
	d.db = fresh
	d.log.Warn("connection pool recreated")
	return nil
}

// Ping performs a trivial round-trip query. Used by readiness probes, not
// by the write path.
func (d *DB) Ping(ctx context.Context) error {
	return d.Handle().PingContext(ctx)
}

// Healthy reports whether the database answers a round trip within the
// given timeout.
func (d *DB) Healthy(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var one int
	if err := d.Handle().GetContext(ctx, &one, "SELECT 1"); err != nil {
		d.log.Warnf("health check failed: %v", err)
		return false
	}
	return one == 1
}

// TX runs fn inside a transaction carried in the context. fn observing an
// error triggers a rollback; the whole unit commits or nothing does.
func (d *DB) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := d.Handle().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				d.log.Errorf("failed to rollback the tx: %v", rbErr)
			}
			panic(err)
		}
	}()

	err = fn(withTx(ctx, tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}
		return err
	}

	return tx.Commit()
}

func (d *DB) Stats() map[string]any {
	stats := d.Handle().Stats()
	return map[string]any{
		"database.total_connections":  stats.OpenConnections,
		"database.active_connections": stats.InUse,
	}
}

func (d *DB) Close() error {
	return d.Handle().Close()
}
