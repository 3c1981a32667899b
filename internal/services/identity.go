package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/google/uuid"
)

// CreateUser inserts an identity row. Unique violations surface as ErrConflict.
func CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	u := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     username,
		IsActive:     true,
		PasswordHash: passwordHash,
	}
	err := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING created_at
	`, u.ID, u.Email, u.Username, u.PasswordHash).Scan(&u.CreatedAt)
	if database.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// DeleteUser removes an identity row; used to undo a half-finished signup.
func DeleteUser(ctx context.Context, id string) error {
	_, err := database.PostgresDB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// FindUserByLogin looks a user up by username or email, case-insensitively.
func FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	var u models.User
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, is_active, created_at
		FROM users
		WHERE LOWER(username) = $1 OR LOWER(email) = $1
		LIMIT 1
	`, login).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// GetUserByID returns the identity row for id.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, email, username, is_active, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Username, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UsernameTaken checks availability against the identity table.
func UsernameTaken(ctx context.Context, normalized string) (bool, error) {
	var exists bool
	err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = $1)`, normalized,
	).Scan(&exists)
	return exists, err
}

// Admin is an administrator identity row.
type Admin struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
}

// FindAdmin looks an admin up by username.
func FindAdmin(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, is_active
		FROM admins WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

// CreateAdmin provisions an administrator account.
func CreateAdmin(ctx context.Context, username, email, passwordHash string) (*Admin, error) {
	a := &Admin{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	_, err := database.PostgresDB.ExecContext(ctx, `
		INSERT INTO admins (id, username, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
	`, a.ID, a.Username, a.Email, a.PasswordHash)
	if database.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: admin already exists", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return a, nil
}
