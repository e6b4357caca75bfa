package model

import (
	"time"

	"github.com/google/uuid"
)

type Choice = bool

const (
	ChoiceYes Choice = true
	ChoiceNo  Choice = false
)

// Vote is one user's current yes/no choice on one card. At most one row
// exists per (card, user, session); a resubmission updates in place.
type Vote struct {
	ID        uuid.UUID
	CardID    uuid.UUID
	UserID    uuid.UUID
	SessionID SessionID
	Choice    Choice
	CreatedAt time.Time
}

// Tally holds the aggregate yes/no counts for a single card.
type Tally struct {
	Yes int `json:"yes"`
	No  int `json:"no"`
}

func (t Tally) Total() int {
	return t.Yes + t.No
}
