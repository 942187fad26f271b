package repository

import (
	"context"
	"errors"
	"fmt"

	"ambulance-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The ambulance location is a singleton row with a fixed id.
const locationRowID = 1

// LocationRepository handles database operations for the ambulance location
type LocationRepository struct {
	db *pgxpool.Pool
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{db: db}
}

// Get retrieves the singleton location row
func (r *LocationRepository) Get(ctx context.Context) (*models.LocationRecord, error) {
	return r.GetByID(ctx, locationRowID)
}

// GetByID retrieves a location row by id
func (r *LocationRepository) GetByID(ctx context.Context, id int) (*models.LocationRecord, error) {
	query := `
		SELECT latitude, longitude, address_text, is_busy, updated_at
		FROM ambulance_location
		WHERE id = $1
	`
	var rec models.LocationRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.Latitude, &rec.Longitude, &rec.AddressText, &rec.IsBusy, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or updates the singleton row. A nil isBusy leaves the
// stored busy flag untouched on update; on insert it defaults to false.
func (r *LocationRepository) Upsert(ctx context.Context, latitude, longitude float64, isBusy *bool) error {
	var query string
	var args []interface{}

	if isBusy != nil {
		query = `
			INSERT INTO ambulance_location (id, latitude, longitude, is_busy, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (id) DO UPDATE
			SET latitude = $2, longitude = $3, is_busy = $4, updated_at = NOW()
		`
		args = []interface{}{locationRowID, latitude, longitude, *isBusy}
	} else {
		query = `
			INSERT INTO ambulance_location (id, latitude, longitude, is_busy, updated_at)
			VALUES ($1, $2, $3, FALSE, NOW())
			ON CONFLICT (id) DO UPDATE
			SET latitude = $2, longitude = $3, updated_at = NOW()
		`
		args = []interface{}{locationRowID, latitude, longitude}
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

// SetAddress stores the resolved address text without touching anything else
func (r *LocationRepository) SetAddress(ctx context.Context, address string) error {
	query := `UPDATE ambulance_location SET address_text = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, address, locationRowID); err != nil {
		return fmt.Errorf("failed to set address: %w", err)
	}
	return nil
}

// SetBusy updates only the busy flag. A missing row is not an error.
func (r *LocationRepository) SetBusy(ctx context.Context, isBusy bool) error {
	query := `UPDATE ambulance_location SET is_busy = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, isBusy, locationRowID); err != nil {
		return fmt.Errorf("failed to set busy status: %w", err)
	}
	return nil
}
