// cmd/adduser/main.go
// Creates or updates an API user. Signed-in users may call the write routes
// when the server runs with JWT_SECRET set.
//
// Usage:
//
//	go run ./cmd/adduser -username padraic -password testing
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/padraicbc/dgapp/config"
	bundb "github.com/padraicbc/dgapp/db"
	"github.com/padraicbc/dgapp/handlers"
	"github.com/padraicbc/dgapp/models"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password (required)")
	flag.Parse()

	hash, err := handlers.HashPasswordForUser(*username, *password)
	if err != nil {
		log.Fatal("adduser: ", err)
	}

	ctx := context.Background()
	cfg := config.Load()
	db := bundb.Setup(cfg)
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables: ", err)
	}

	user := &models.User{
		Username: *username,
		Password: hash,
	}
	if _, err := upsertUser(db, user).Exec(ctx); err != nil {
		log.Fatal("insert user: ", err)
	}

	fmt.Printf("user %q saved\n", *username)
}

// upsertUser replaces the password of an existing username.
func upsertUser(db *bun.DB, user *models.User) *bun.InsertQuery {
	q := db.NewInsert().Model(user)
	if db.Dialect().Name() == dialect.MySQL {
		return q.On("DUPLICATE KEY UPDATE").Set("password = VALUES(password)")
	}
	return q.On("CONFLICT (username) DO UPDATE").Set("password = EXCLUDED.password")
}
