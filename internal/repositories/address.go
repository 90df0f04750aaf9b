package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

type AddressRepository struct {
	db DBTX
}

func NewAddressRepository(db DBTX) *AddressRepository {
	return &AddressRepository{db: db}
}

const addressColumns = `id, user_id, line1, line2, city, state, postal_code, country, is_default, created_at, updated_at`

func scanAddress(row rowScanner) (*models.Address, error) {
	a := &models.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AddressRepository) Create(ctx context.Context, a *models.Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (`+addressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.UserID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault,
		a.CreatedAt, a.UpdatedAt)
	return wrapErr("create address", err, nil)
}

func (r *AddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get address", err, models.ErrAddressNotFound)
	}
	return a, nil
}

// List returns addresses, restricted to one user when userID is set.
func (r *AddressRepository) List(ctx context.Context, userID string, limit, offset int) ([]*models.Address, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + addressColumns + ` FROM addresses`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = $1 ORDER BY is_default DESC, created_at, id LIMIT $2 OFFSET $3`
		args = append(args, userID, limit, offset)
	} else {
		query += ` ORDER BY created_at, id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list addresses", err, nil)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, wrapErr("scan address", err, nil)
		}
		addresses = append(addresses, a)
	}
	return addresses, wrapErr("list addresses", rows.Err(), nil)
}

func (r *AddressRepository) Update(ctx context.Context, a *models.Address) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET line1 = $1, line2 = $2, city = $3, state = $4, postal_code = $5, country = $6,
		    is_default = $7, updated_at = $8
		WHERE id = $9`,
		a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault, a.UpdatedAt, a.ID)
	if err != nil {
		return wrapErr("update address", err, nil)
	}
	return requireAffected("update address", res, models.ErrAddressNotFound)
}

// ClearDefault unsets the default flag on all of a user's addresses.
func (r *AddressRepository) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE addresses SET is_default = $1 WHERE user_id = $2`, false, userID)
	return wrapErr("clear default address", err, nil)
}

func (r *AddressRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete address", err, nil)
	}
	return requireAffected("delete address", res, models.ErrAddressNotFound)
}
