package repositories

import (
	"context"
	"time"

	"ecommerce-platform/internal/models"
)

// RevocationRepository stores per-subject "logged out everywhere" cut-offs.
type RevocationRepository struct {
	db DBTX
}

func NewRevocationRepository(db DBTX) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Revoke invalidates every token for the subject issued at or before at.
func (r *RevocationRepository) Revoke(ctx context.Context, subjectID string, principal models.Principal, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_revocations (subject_id, principal, revoked_before)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject_id, principal) DO UPDATE SET revoked_before = excluded.revoked_before`,
		subjectID, principal, at.UTC())
	return wrapErr("revoke sessions", err, nil)
}

// RevokedBefore returns the cut-off for the subject, if any.
func (r *RevocationRepository) RevokedBefore(ctx context.Context, subjectID string, principal models.Principal) (time.Time, bool, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT revoked_before FROM session_revocations WHERE subject_id = $1 AND principal = $2`,
		subjectID, principal).Scan(&at)
	if err != nil {
		if err = wrapErr("get revocation", err, models.ErrNotFound); err == models.ErrNotFound {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}
