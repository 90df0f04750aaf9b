package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

type AdminRepository struct {
	db DBTX
}

func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, username, email, password_hash, role, image_url, created_at, updated_at`

func scanAdmin(row rowScanner) (*models.Admin, error) {
	admin := &models.Admin{}
	err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.ImageURL,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	return admin, err
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.Role == "" {
		admin.Role = models.AdminRoleAdmin
	}
	now := time.Now().UTC()
	admin.CreatedAt, admin.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (`+adminColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.Role, admin.ImageURL,
		admin.CreatedAt, admin.UpdatedAt,
	)
	return wrapErr("create admin", err, nil)
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get admin", err, models.ErrAdminNotFound)
	}
	return admin, nil
}

// GetByIdentifier finds an admin by username or email.
func (r *AdminRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Admin, error) {
	admin, err := scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = $1 OR LOWER(email) = LOWER($1)`, identifier))
	if err != nil {
		return nil, wrapErr("get admin", err, models.ErrAdminNotFound)
	}
	return admin, nil
}

func (r *AdminRepository) List(ctx context.Context, limit, offset int) ([]*models.Admin, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list admins", err, nil)
	}
	defer rows.Close()

	var admins []*models.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, wrapErr("scan admin", err, nil)
		}
		admins = append(admins, admin)
	}
	return admins, wrapErr("list admins", rows.Err(), nil)
}

func (r *AdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	admin.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE admins
		SET username = $1, email = $2, password_hash = $3, role = $4, image_url = $5, updated_at = $6
		WHERE id = $7`,
		admin.Username, admin.Email, admin.PasswordHash, admin.Role, admin.ImageURL, admin.UpdatedAt, admin.ID,
	)
	if err != nil {
		return wrapErr("update admin", err, nil)
	}
	return requireAffected("update admin", res, models.ErrAdminNotFound)
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete admin", err, nil)
	}
	return requireAffected("delete admin", res, models.ErrAdminNotFound)
}

// CountByRole is used to keep at least one SuperAdmin.
func (r *AdminRepository) CountByRole(ctx context.Context, role models.AdminRole) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE role = $1`, role).Scan(&n)
	return n, wrapErr("count admins", err, nil)
}
