package infra_postgres_card

import (
	"context"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type cardDTO struct {
	ID          uuid.UUID `db:"id"`
	SessionID   uuid.UUID `db:"session_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (d *Driver) Create(ctx context.Context, card model.Card) error {
	dto := cardDTO{
		ID:          card.ID,
		SessionID:   card.SessionID,
		Title:       card.Title,
		Description: card.Description,
		CreatedAt:   card.CreatedAt,
	}

	query := `
		INSERT INTO cards (id, session_id, title, description, created_at)
		VALUES (:id, :session_id, :title, :description, :created_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

// BySession returns cards in creation order. Ordering is part of the store
// contract: clients render cards exactly as returned here.
func (d *Driver) BySession(ctx context.Context, sessionID model.SessionID) ([]model.Card, error) {
	var dtos []cardDTO

	query := `
		SELECT id, session_id, title, description, created_at
		FROM cards
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	err := d.db.SelectContext(ctx, &dtos, query, sessionID)
	if err != nil {
		return nil, err
	}

	cards := make([]model.Card, 0, len(dtos))
	for _, dto := range dtos {
		cards = append(cards, model.Card{
			ID:          dto.ID,
			SessionID:   dto.SessionID,
			Title:       dto.Title,
			Description: dto.Description,
			CreatedAt:   dto.CreatedAt,
		})
	}
	return cards, nil
}
