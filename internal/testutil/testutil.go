// Package testutil holds helpers shared by the token store and session tests.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	env "github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/interview-ui/config"
	"github.com/target/interview-ui/internal/migrate"
)

// SigningKey signs every token minted by Token.
const SigningKey = "interview-ui-test-key"

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Token mints an HS256 token carrying the three claims the UI reads.
// A zero exp omits the claim, which decoders must reject.
func Token(t TestingTB, sub, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "role": role}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// TestDBConfig reads TEST_DB_* variables with the same field set as the
// server's DB_* configuration.
func TestDBConfig(t TestingTB) config.DBConfig {
	t.Helper()
	var cfg config.DBConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TEST_DB_"}); err != nil {
		t.Fatalf("parse TEST_DB_ config: %v", err)
	}
	return cfg
}

// SkipIfNoTestDB skips unless the test database answers, or fails when
// TEST_REQUIRE_DB demands it.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()

	db, err := sql.Open("pgx", TestDBConfig(t).DSN())
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = db.PingContext(ctx)
		cancel()
		closeAndLog(t, "test db", db)
	}
	if err == nil {
		return
	}
	if requireDB() {
		t.Fatal("Test database not available:", err)
	}
	t.Skip("Test database not available:", err)
}

// SetupEphemeralSchemaDB returns a connection scoped to a fresh schema with
// ui_tokens migrated. The schema is dropped when the test completes.
func SetupEphemeralSchemaDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	cfg := TestDBConfig(t)
	adminDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		t.Fatal("Failed to open admin DB:", err)
	}

	schema := generateSchemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, execErr := adminDB.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); execErr != nil {
		closeAndLog(t, "admin DB", adminDB)
		t.Fatalf("Failed to create schema %s: %v", schema, execErr)
	}

	cfg.Schema = schema
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		closeAndLog(t, "admin DB", adminDB)
		t.Fatal("Failed to open schema-scoped DB:", err)
	}

	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		closeAndLog(t, "schema DB", db)
		if _, dropErr := adminDB.ExecContext(cctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); dropErr != nil {
			t.Logf("Warning: failed to drop schema %s: %v", schema, dropErr)
		}
		closeAndLog(t, "admin DB", adminDB)
	})

	if _, migrateErr := migrate.Run(ctx, db, nil); migrateErr != nil {
		t.Fatal("Failed to migrate ephemeral schema:", migrateErr)
	}
	return db
}

// NewMiniRedis starts an in-process Redis and returns it with a connected client.
// Both are closed when the test completes.
func NewMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })
	return mr, client
}

func generateSchemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "t_" + strings.ReplaceAll(time.Now().Format("150405.000000"), ".", "")
	}
	return "t_" + hex.EncodeToString(b)
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}

func requireDB() bool {
	for _, key := range []string{"TEST_REQUIRE_DB", "TEST_REQUIRE_INFRA"} {
		switch strings.ToLower(os.Getenv(key)) {
		case "1", "true", "yes", "y":
			return true
		}
	}
	return false
}
