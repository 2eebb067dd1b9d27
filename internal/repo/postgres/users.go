package postgres

import (
	"context"
	"fmt"

	"github.com/geocoder89/userroster/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersSource reads the roster from a roster_users mirror table. It is
// read-only: roster edits never reach the database.
type UsersSource struct {
	pool *pgxpool.Pool
}

func NewUsersSource(pool *pgxpool.Pool) *UsersSource {
	return &UsersSource{pool: pool}
}

func (r *UsersSource) Name() string { return "postgres" }

func (r *UsersSource) FetchUsers(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, username, email, phone, website,
                street, suite, city, zipcode, geo_lat, geo_lng,
                company_name, company_catch_phrase, company_bs
         FROM roster_users
         ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query roster_users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan roster_users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u           user.User
		lat, lng    *string
		catchPhrase *string
		bs          *string
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.Phone,
		&u.Website,
		&u.Address.Street,
		&u.Address.Suite,
		&u.Address.City,
		&u.Address.Zipcode,
		&lat,
		&lng,
		&u.Company.Name,
		&catchPhrase,
		&bs,
	)
	if err != nil {
		return user.User{}, err
	}

	if lat != nil && lng != nil {
		u.Address.Geo = &user.Geo{Lat: *lat, Lng: *lng}
	}
	if catchPhrase != nil {
		u.Company.CatchPhrase = *catchPhrase
	}
	if bs != nil {
		u.Company.BS = *bs
	}
	return u, nil
}
