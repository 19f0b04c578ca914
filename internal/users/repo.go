package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add inserts the user and sets its ID. Returns ErrEmailExists if the email is taken.
func (r *Repo) Add(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.StartSpan(ctx, "usersRepo.Add")
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users (name, password, email) VALUES ($1, $2, $3) RETURNING id;`,
		user.Name, user.PasswordHash, user.Email,
	).Scan(&user.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.StartSpan(ctx, "usersRepo.Get")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	row := r.db.QueryRow(
		ctx,
		`SELECT id, name, password, email FROM users WHERE id = $1;`,
		id,
	)
	return scanUser(row)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.StartSpan(ctx, "usersRepo.GetByEmail")
	defer func() { tracing.EndSpan(span, err) }()

	row := r.db.QueryRow(
		ctx,
		`SELECT id, name, password, email FROM users WHERE email = $1;`,
		strings.TrimSpace(email),
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &user.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
