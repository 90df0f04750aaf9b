package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

// UserRepository handles user data operations
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, password_hash, first_name, last_name, phone, image_url, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// Create inserts a user. PasswordHash must already be set.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.Phone, user.ImageURL, user.CreatedAt, user.UpdatedAt,
	)
	return wrapErr("create user", err, nil)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("get user", err, models.ErrUserNotFound)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (for authentication)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrapErr("get user by email", err, models.ErrUserNotFound)
	}
	return user, nil
}

// List returns users newest first.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list users", err, nil)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("scan user", err, nil)
		}
		users = append(users, user)
	}
	return users, wrapErr("list users", rows.Err(), nil)
}

// Update writes every editable column, including the password hash.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, first_name = $4, last_name = $5,
		    phone = $6, image_url = $7, updated_at = $8
		WHERE id = $9`,
		user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.Phone, user.ImageURL, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return wrapErr("update user", err, nil)
	}
	return requireAffected("update user", res, models.ErrUserNotFound)
}

// Delete removes a user. Addresses, reviews and wishlist entries cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete user", err, nil)
	}
	return requireAffected("delete user", res, models.ErrUserNotFound)
}
