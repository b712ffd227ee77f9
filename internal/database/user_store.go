package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/models"
)

const userColumns = "id, full_name, email, password_hash, phone, role, created_at, updated_at"

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail finds a user for login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByID finds a user by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// CreateUser inserts u. A taken email returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	query := "INSERT INTO users (" + userColumns + ") VALUES (" + placeholders(8) + ")"
	_, err := s.DB.ExecContext(ctx, query, u.ID, u.FullName, u.Email, u.PasswordHash, u.Phone, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// EnsureAdmin makes sure an admin account exists for u.Email.
// An existing account with that email is promoted; otherwise u is inserted.
// It reports whether a new row was created.
func (s *Store) EnsureAdmin(ctx context.Context, u *models.User) (bool, error) {
	existing, err := s.GetUserByEmail(ctx, u.Email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return false, nil
		}
		_, err := s.DB.ExecContext(ctx, "UPDATE users SET role = ?, updated_at = ? WHERE id = ?", models.RoleAdmin, s.now(), existing.ID)
		if err != nil {
			return false, fmt.Errorf("promote admin: %w", err)
		}
		return false, nil
	case errors.Is(err, ErrNotFound):
		u.Role = models.RoleAdmin
		if err := s.CreateUser(ctx, u); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}
