package infra_postgres_vote

import (
	"context"
	"database/sql"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type voteDTO struct {
	ID        uuid.UUID `db:"id"`
	CardID    uuid.UUID `db:"card_id"`
	UserID    uuid.UUID `db:"user_id"`
	SessionID uuid.UUID `db:"session_id"`
	Choice    bool      `db:"choice"`
	CreatedAt time.Time `db:"created_at"`
}

func (dto voteDTO) toModel() model.Vote {
	return model.Vote{
		ID:        dto.ID,
		CardID:    dto.CardID,
		UserID:    dto.UserID,
		SessionID: dto.SessionID,
		Choice:    dto.Choice,
		CreatedAt: dto.CreatedAt,
	}
}

func (d *Driver) Find(ctx context.Context, sessionID model.SessionID, cardID, userID uuid.UUID) (model.Vote, error) {
	var dto voteDTO

	query := `
		SELECT id, card_id, user_id, session_id, choice, created_at
		FROM votes
		WHERE session_id = $1 AND card_id = $2 AND user_id = $3
	`

	err := d.db.GetContext(ctx, &dto, query, sessionID, cardID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Vote{}, usecase_session.ErrResourceNotFound
		}
		return model.Vote{}, err
	}

	return dto.toModel(), nil
}

// Insert relies on the unique (card_id, user_id, session_id) constraint:
// a concurrent duplicate degrades to an in-place choice update instead of
// a second row.
func (d *Driver) Insert(ctx context.Context, vote model.Vote) error {
	dto := voteDTO{
		ID:        vote.ID,
		CardID:    vote.CardID,
		UserID:    vote.UserID,
		SessionID: vote.SessionID,
		Choice:    vote.Choice,
		CreatedAt: vote.CreatedAt,
	}

	query := `
		INSERT INTO votes (id, card_id, user_id, session_id, choice, created_at)
		VALUES (:id, :card_id, :user_id, :session_id, :choice, :created_at)
		ON CONFLICT (card_id, user_id, session_id)
		DO UPDATE SET choice = EXCLUDED.choice
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

func (d *Driver) UpdateChoice(ctx context.Context, voteID uuid.UUID, choice model.Choice) error {
	query := `
		UPDATE votes
		SET choice = $2
		WHERE id = $1
	`

	result, err := d.db.ExecContext(ctx, query, voteID, choice)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_session.ErrResourceNotFound
	}

	return nil
}

func (d *Driver) BySession(ctx context.Context, sessionID model.SessionID) ([]model.Vote, error) {
	var dtos []voteDTO

	query := `
		SELECT id, card_id, user_id, session_id, choice, created_at
		FROM votes
		WHERE session_id = $1
	`

	err := d.db.SelectContext(ctx, &dtos, query, sessionID)
	if err != nil {
		return nil, err
	}

	return toModels(dtos), nil
}

func (d *Driver) ByUser(ctx context.Context, sessionID model.SessionID, userID uuid.UUID) ([]model.Vote, error) {
	var dtos []voteDTO

	query := `
		SELECT id, card_id, user_id, session_id, choice, created_at
		FROM votes
		WHERE session_id = $1 AND user_id = $2
	`

	err := d.db.SelectContext(ctx, &dtos, query, sessionID, userID)
	if err != nil {
		return nil, err
	}

	return toModels(dtos), nil
}

func toModels(dtos []voteDTO) []model.Vote {
	votes := make([]model.Vote, 0, len(dtos))
	for _, dto := range dtos {
		votes = append(votes, dto.toModel())
	}
	return votes
}
