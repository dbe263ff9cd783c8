// Package cache is the on-device mirror of the API data: a SQLite file with
// courses, players and rounds linked by foreign keys.
package cache

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var (
	ErrNotFound    = errors.New("cache: not found")
	ErrCourseInUse = errors.New("cache: course has recorded rounds")
)

// Store is a handle on one cache file. The caller owns its lifecycle.
type Store struct {
	db     *bun.DB
	policy domain.DeletePolicy
	log    *zap.Logger
}

// Open opens (creating if needed) the cache at path and migrates it.
func Open(ctx context.Context, path string, policy domain.DeletePolicy, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == "" {
		policy = domain.DeleteRestrict
	}

	bdb, err := db.Open(ctx, db.DriverSQLite, db.SQLiteDSN(path), false)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := migrate(ctx, bdb, log); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &Store{db: bdb, policy: policy, log: log}, nil
}

func migrate(ctx context.Context, bdb *bun.DB, log *zap.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, bdb.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Debug("cache migration applied", zap.String("source", r.Source.Path), zap.Duration("took", r.Duration))
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Policy reports what DeleteCourse does with referencing rounds.
func (s *Store) Policy() domain.DeletePolicy { return s.policy }
