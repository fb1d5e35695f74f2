package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

type userRepo struct {
	db *sqlx.DB
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO users (
		id, email, password_hash, first_name, last_name, native_language, created_at, last_login_at
	) VALUES (
		:id, :email, :password_hash, :first_name, :last_name, :native_language, :created_at, :last_login_at)`, u)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT id, email, password_hash, first_name, last_name,
		native_language, created_at, last_login_at FROM users WHERE email = ?`), email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (r *userRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), at, id)
	if err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}
