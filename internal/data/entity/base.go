package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and audit columns shared by every table.
// Rentals are never deleted (terminal statuses preserve the audit trail),
// so there is no soft-delete column.
type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
