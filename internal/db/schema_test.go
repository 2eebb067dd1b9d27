package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCheckRosterSchema(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	pool, err := NewPool(dsn)
	if err != nil {
		t.Fatalf("pg pool: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	missing := "roster_users_" + uuid.NewString()[:8]
	ok, err := tableExists(ctx, pool, missing)
	if err != nil {
		t.Fatalf("tableExists error: %v", err)
	}
	if ok {
		t.Fatalf("expected %s to be missing", missing)
	}

	if _, err := pool.Exec(ctx, RosterSchema); err != nil {
		t.Fatalf("schema: %v", err)
	}

	if err := CheckRosterSchema(ctx, pool); err != nil {
		if errors.Is(err, ErrRosterTableMissing) {
			t.Fatalf("table created but reported missing")
		}
		t.Fatalf("CheckRosterSchema error: %v", err)
	}
}
