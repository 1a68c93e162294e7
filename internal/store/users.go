package store

import (
	"context"
	"fmt"
	"time"

	"blogicum/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &created); err != nil {
		return nil, notFound(err)
	}
	u.CreatedAt = fromUnix(created)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(username, email, first_name, last_name, password_hash, created_at) VALUES(?,?,?,?,?,?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, unix(u.CreatedAt))
	if isUnique(err, "users.username") {
		return 0, ErrDuplicateUsername
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return u.ID, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// UpdateProfile rewrites the editable profile fields of u.
func (s *Store) UpdateProfile(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ? WHERE id = ?`,
		u.Username, u.Email, u.FirstName, u.LastName, u.ID)
	if isUnique(err, "users.username") {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return affected(res)
}
