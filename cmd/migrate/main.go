// cmd/migrate/main.go
// Copies users, courses, players and rounds from a MySQL deployment into
// the PostgreSQL database named by the usual DB_* settings. Rows that already
// exist are skipped, so the copy can be re-run.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/dgapp?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/uptrace/bun"

	"github.com/padraicbc/dgapp/config"
	bundb "github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/dgapp?parseTime=true")
	}
	myDB, err := bundb.Open(ctx, bundb.DriverMySQL, cfg.MySQLDSN, cfg.Debug)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB, err := bundb.Open(ctx, bundb.DriverPostgres, cfg.PostgresDSN(), cfg.Debug)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	// Parents before children, so FK checks stay on.
	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"users", func() (int, error) { return copyTable[models.User](ctx, myDB, pgDB) }},
		{"courses", func() (int, error) { return copyTable[models.Course](ctx, myDB, pgDB) }},
		{"players", func() (int, error) { return copyTable[models.Player](ctx, myDB, pgDB) }},
		{"rounds", func() (int, error) { return copyTable[models.Round](ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-10s  %d rows migrated", s.name, n)
	}

	resetUserSequence(ctx, pgDB)
	log.Println("migration complete")
}

// copyTable pages through the source table by primary key and inserts each
// batch, skipping rows that already exist. The count is rows read from src.
func copyTable[T any](ctx context.Context, src, dst *bun.DB) (int, error) {
	total := 0
	for offset := 0; ; offset += batchSize {
		var batch []T
		err := src.NewSelect().Model(&batch).
			OrderExpr("id").
			Limit(batchSize).
			Offset(offset).
			Scan(ctx)
		if err != nil {
			return total, err
		}
		// The insert scans RETURNING rows back into batch, dropping skipped ones.
		n := len(batch)
		if n == 0 {
			return total, nil
		}
		if _, err := dst.NewInsert().Model(&batch).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
			return total, fmt.Errorf("insert batch at %d: %w", offset, err)
		}
		total += n
		if n < batchSize {
			return total, nil
		}
	}
}

// resetUserSequence advances users_id_seq past the copied ids. The other
// tables use uuid keys.
func resetUserSequence(ctx context.Context, pgDB *bun.DB) {
	q := "SELECT setval('users_id_seq', COALESCE((SELECT MAX(id) FROM users), 1))"
	if _, err := pgDB.ExecContext(ctx, q); err != nil {
		log.Printf("reset seq users_id_seq: %v", err)
		return
	}
	log.Println("sequences reset")
}
