package repository

import (
	"context"
	"errors"
	"fmt"

	"ambulance-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user and returns its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int, error) {
	query := `
		INSERT INTO users (username, password, full_name, address, phone, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`
	var id int
	err := r.db.QueryRow(ctx, query,
		user.Username, user.Password, user.FullName, user.Address, user.Phone, user.IsAdmin,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, username, password, full_name, address, phone, is_admin, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password, full_name, address, phone, is_admin, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) scanOne(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.FullName,
		&user.Address, &user.Phone, &user.IsAdmin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListByUsernames retrieves the users matching any of the given usernames
func (r *UserRepository) ListByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	query := `
		SELECT id, username, password, full_name, address, phone, is_admin, created_at
		FROM users
		WHERE username = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Password, &user.FullName,
			&user.Address, &user.Phone, &user.IsAdmin, &user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdatePassword replaces the stored password hash for a user
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, hash string) error {
	query := `UPDATE users SET password = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, hash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
