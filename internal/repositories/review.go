package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at`

func scanReview(row rowScanner) (*models.Review, error) {
	rv := &models.Review{}
	err := row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.Author)
	return rv, err
}

const reviewSelect = `SELECT ` + reviewColumns + `, COALESCE(u.username, '') FROM reviews r LEFT JOIN users u ON u.id = r.user_id`

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt)
	return wrapErr("create review", err, nil)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, wrapErr("get review", err, models.ErrReviewNotFound)
	}
	return rv, nil
}

// List returns reviews, restricted to one product when productID is set.
func (r *ReviewRepository) List(ctx context.Context, productID string, limit, offset int) ([]*models.Review, error) {
	limit, offset = clampPage(limit, offset)
	query := reviewSelect
	var args []interface{}
	if productID != "" {
		query += ` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id LIMIT $2 OFFSET $3`
		args = append(args, productID, limit, offset)
	} else {
		query += ` ORDER BY r.created_at DESC, r.id LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list reviews", err, nil)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, wrapErr("scan review", err, nil)
		}
		reviews = append(reviews, rv)
	}
	return reviews, wrapErr("list reviews", rows.Err(), nil)
}

func (r *ReviewRepository) Update(ctx context.Context, rv *models.Review) error {
	rv.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`,
		rv.Rating, rv.Comment, rv.UpdatedAt, rv.ID)
	if err != nil {
		return wrapErr("update review", err, nil)
	}
	return requireAffected("update review", res, models.ErrReviewNotFound)
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete review", err, nil)
	}
	return requireAffected("delete review", res, models.ErrReviewNotFound)
}
