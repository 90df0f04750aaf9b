package repositories

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ecommerce-platform/internal/models"

	"github.com/google/uuid"
)

// CategoryRepository handles category data operations
type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, slug, description, image_url, created_at, updated_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.CreatedAt, c.UpdatedAt)
	return wrapErr("create category", err, nil)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get category", err, models.ErrCategoryNotFound)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrapErr("list categories", err, nil)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapErr("scan category", err, nil)
		}
		categories = append(categories, c)
	}
	return categories, wrapErr("list categories", rows.Err(), nil)
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, slug = $2, description = $3, image_url = $4, updated_at = $5
		WHERE id = $6`,
		c.Name, c.Slug, c.Description, c.ImageURL, c.UpdatedAt, c.ID)
	if err != nil {
		return wrapErr("update category", err, nil)
	}
	return requireAffected("update category", res, models.ErrCategoryNotFound)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete category", err, nil)
	}
	return requireAffected("delete category", res, models.ErrCategoryNotFound)
}

// ProductRepository handles product data operations
type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, category_id, name, slug, description, price, stock, image_url, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Price = models.RoundMoney(p.Price)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return wrapErr("create product", err, nil)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("get product", err, models.ErrProductNotFound)
	}
	return p, nil
}

// List returns products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.CategoryID != "" {
		where = append(where, "category_id = "+arg(filter.CategoryID))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "LOWER(name) LIKE "+arg("%"+strings.ToLower(s)+"%"))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query += " ORDER BY created_at DESC, id LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list products", err, nil)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err, nil)
		}
		products = append(products, p)
	}
	return products, wrapErr("list products", rows.Err(), nil)
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	p.Price = models.RoundMoney(p.Price)
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, slug = $3, description = $4, price = $5, stock = $6,
		    image_url = $7, updated_at = $8
		WHERE id = $9`,
		p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return wrapErr("update product", err, nil)
	}
	return requireAffected("update product", res, models.ErrProductNotFound)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete product", err, nil)
	}
	return requireAffected("delete product", res, models.ErrProductNotFound)
}
