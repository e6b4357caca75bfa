package model

import (
	"time"

	"github.com/google/uuid"
)

// Card is a proposal being voted on. Immutable after creation; cards are
// ordered by creation time within a session.
type Card struct {
	ID          uuid.UUID
	SessionID   SessionID
	Title       string
	Description string
	CreatedAt   time.Time
}
