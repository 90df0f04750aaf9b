package models

import "time"

// Principal identifies which kind of actor a session belongs to.
type Principal string

const (
	PrincipalUser  Principal = "user"
	PrincipalAdmin Principal = "admin"
)

// SessionRevocation invalidates every token for a subject issued before
// RevokedBefore.
type SessionRevocation struct {
	SubjectID     string    `json:"subject_id" db:"subject_id"`
	Principal     Principal `json:"principal" db:"principal"`
	RevokedBefore time.Time `json:"revoked_before" db:"revoked_before"`
}
