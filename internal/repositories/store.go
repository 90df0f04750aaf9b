package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/models"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store bundles every repository over one connection or transaction.
type Store struct {
	db *sql.DB

	Users       *UserRepository
	Admins      *AdminRepository
	Categories  *CategoryRepository
	Products    *ProductRepository
	Carts       *CartRepository
	Orders      *OrderRepository
	Addresses   *AddressRepository
	Reviews     *ReviewRepository
	Wishlist    *WishlistRepository
	Revocations *RevocationRepository
}

// NewStore creates a store backed by db.
func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(q DBTX, db *sql.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(q),
		Admins:      NewAdminRepository(q),
		Categories:  NewCategoryRepository(q),
		Products:    NewProductRepository(q),
		Carts:       NewCartRepository(q),
		Orders:      NewOrderRepository(q),
		Addresses:   NewAddressRepository(q),
		Reviews:     NewReviewRepository(q),
		Wishlist:    NewWishlistRepository(q),
		Revocations: NewRevocationRepository(q),
	}
}

// InTx runs fn with a Store bound to a single transaction. Calling InTx on a
// store that is already transaction-bound runs fn in the same transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(newStore(tx, nil))
	})
}

// DB returns the underlying pool, nil for a transaction-bound store.
func (s *Store) DB() *sql.DB {
	return s.db
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var (
	pqKeyRegex     = regexp.MustCompile(`Key \(([^)]+)\)`)
	sqliteKeyRegex = regexp.MustCompile(`UNIQUE constraint failed: ([\w.]+)`)
)

// uniqueViolation reports whether err is a uniqueness violation and, if so,
// which column caused it.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if m := pqKeyRegex.FindStringSubmatch(pqErr.Detail); m != nil {
			return lastSegment(m[1]), true
		}
		return pqErr.Constraint, true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		if m := sqliteKeyRegex.FindStringSubmatch(sqliteErr.Error()); m != nil {
			return lastSegment(m[1]), true
		}
		return "value", true
	}

	return "", false
}

// lastSegment turns "users.email" or "user_id, product_id" into a field name.
func lastSegment(s string) string {
	s = strings.TrimSpace(strings.Split(s, ",")[0])
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// wrapErr maps driver errors onto the model error taxonomy.
func wrapErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}
	if field, ok := uniqueViolation(err); ok {
		return &models.DuplicateError{Field: field}
	}
	return &models.PersistenceError{Op: op, Err: err}
}

// requireAffected converts a zero-row update or delete into notFound.
func requireAffected(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &models.PersistenceError{Op: op, Err: err}
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
