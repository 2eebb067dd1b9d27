package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRosterTableMissing = errors.New("roster_users table does not exist")

// RosterSchema is the layout of the roster_users mirror table. It is owned by
// whatever fills the mirror; the service itself only reads rows.
const RosterSchema = `
CREATE TABLE IF NOT EXISTS roster_users (
	id                   INTEGER PRIMARY KEY,
	position             INTEGER NOT NULL DEFAULT 0,
	name                 TEXT NOT NULL DEFAULT '',
	username             TEXT NOT NULL DEFAULT '',
	email                TEXT NOT NULL DEFAULT '',
	phone                TEXT NOT NULL DEFAULT '',
	website              TEXT NOT NULL DEFAULT '',
	street               TEXT NOT NULL DEFAULT '',
	suite                TEXT NOT NULL DEFAULT '',
	city                 TEXT NOT NULL DEFAULT '',
	zipcode              TEXT NOT NULL DEFAULT '',
	geo_lat              TEXT,
	geo_lng              TEXT,
	company_name         TEXT NOT NULL DEFAULT '',
	company_catch_phrase TEXT,
	company_bs           TEXT
)`

// CheckRosterSchema fails with ErrRosterTableMissing when the mirror table has
// not been created. Nothing is written.
func CheckRosterSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ok, err := tableExists(ctx, pool, "roster_users")
	if err != nil {
		return fmt.Errorf("check roster schema: %w", err)
	}
	if !ok {
		return ErrRosterTableMissing
	}
	return nil
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var ok bool
	err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, name).Scan(&ok)
	return ok, err
}
