package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionID = uuid.UUID

// Session is a bounded voting event. Once closed (Active == false) no
// further votes are accepted for it.
type Session struct {
	ID         SessionID
	AccessCode string
	Active     bool
	CreatedAt  time.Time
	ClosedAt   *time.Time
}

const AccessCodeLen = 6

type User struct {
	ID        uuid.UUID
	Name      string
	IsAdmin   bool
	SessionID SessionID
	CreatedAt time.Time
}
