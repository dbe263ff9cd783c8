package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/padraicbc/dgapp/config"
	"github.com/padraicbc/dgapp/models"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Open connects to the store behind dsn and pings it.
func Open(ctx context.Context, driver, dsn string, debug bool) (*bun.DB, error) {
	var db *bun.DB
	switch driver {
	case DriverPostgres, "":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverMySQL:
		sqldb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db = bun.NewDB(sqldb, mysqldialect.New())
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer; a second connection would see SQLITE_BUSY inside transactions.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// SQLiteDSN is config.SQLiteDSN, for callers that only open a database.
func SQLiteDSN(path string) string { return config.SQLiteDSN(path) }

// Setup opens the configured database or exits.
func Setup(cfg *config.Config) *bun.DB {
	db, err := Open(context.Background(), cfg.DBDriver, cfg.DSN(), cfg.Debug)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	return db
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []struct {
		model any
		fks   []string
	}{
		{model: (*models.User)(nil)},
		{model: (*models.Course)(nil)},
		{model: (*models.Player)(nil)},
		{model: (*models.Round)(nil), fks: []string{
			`(player_id) REFERENCES players (id) ON DELETE CASCADE`,
			`(course_id) REFERENCES courses (id)`,
		}},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}

	if db.Dialect().Name() != dialect.PG {
		return nil
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS courses_search_idx ON courses USING GIN (` + courseSearchVector + `)`,
		`CREATE INDEX IF NOT EXISTS rounds_player_id_idx ON rounds (player_id)`,
		`CREATE INDEX IF NOT EXISTS rounds_course_id_idx ON rounds (course_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Warn("create index", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	return nil
}

const courseSearchVector = `to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(location, ''))`

// CourseSearch filters a course query by free text. PostgreSQL uses the
// indexed text search; other dialects match name or location with LIKE.
func CourseSearch(q *bun.SelectQuery, db bun.IDB, text string) *bun.SelectQuery {
	if db.Dialect().Name() == dialect.PG {
		return q.Where(courseSearchVector+` @@ plainto_tsquery('simple', ?)`, text)
	}
	like := "%" + text + "%"
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("LOWER(c.name) LIKE LOWER(?)", like).
			WhereOr("LOWER(c.location) LIKE LOWER(?)", like)
	})
}
