package market

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ DB *pgxpool.Pool }

var ErrEmailTaken = NewError(CodeValidation, "email already registered")

func (r *UserRepo) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	u := User{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: passwordHash}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, email, name, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		u.ID, u.Email, u.Name, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, ErrEmailTaken
		}
		return nil, WrapInternal(err, "insert user")
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`,
		email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapInternal(err, "get user by email")
	}
	return &u, nil
}

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at FROM users WHERE id=$1`,
		id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapInternal(err, "get user")
	}
	return &u, nil
}
