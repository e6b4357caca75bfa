package infra_postgres_session

import (
	"context"
	"database/sql"
	"strings"
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

type sessionDTO struct {
	ID         uuid.UUID    `db:"id"`
	AccessCode string       `db:"access_code"`
	Active     bool         `db:"active"`
	CreatedAt  time.Time    `db:"created_at"`
	ClosedAt   sql.NullTime `db:"closed_at"`
}

type userDTO struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	IsAdmin   bool      `db:"is_admin"`
	SessionID uuid.UUID `db:"session_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (dto sessionDTO) toModel() model.Session {
	session := model.Session{
		ID:         dto.ID,
		AccessCode: dto.AccessCode,
		Active:     dto.Active,
		CreatedAt:  dto.CreatedAt,
	}
	if dto.ClosedAt.Valid {
		closedAt := dto.ClosedAt.Time
		session.ClosedAt = &closedAt
	}
	return session
}

func (d *Driver) Create(ctx context.Context, session model.Session) error {
	dto := sessionDTO{
		ID:         session.ID,
		AccessCode: session.AccessCode,
		Active:     session.Active,
		CreatedAt:  session.CreatedAt,
	}

	query := `
		INSERT INTO sessions (id, access_code, active, created_at)
		VALUES (:id, :access_code, :active, :created_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "duplicate key") {
			return usecase_session.ErrCodeConflict
		}
		return err
	}
	return nil
}

func (d *Driver) ByID(ctx context.Context, id model.SessionID) (model.Session, error) {
	var dto sessionDTO

	query := `
		SELECT id, access_code, active, created_at, closed_at
		FROM sessions
		WHERE id = $1
	`

	err := d.db.GetContext(ctx, &dto, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Session{}, usecase_session.ErrResourceNotFound
		}
		return model.Session{}, err
	}

	return dto.toModel(), nil
}

func (d *Driver) ByAccessCode(ctx context.Context, code string) (model.Session, error) {
	var dto sessionDTO

	query := `
		SELECT id, access_code, active, created_at, closed_at
		FROM sessions
		WHERE access_code = $1
	`

	err := d.db.GetContext(ctx, &dto, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Session{}, usecase_session.ErrResourceNotFound
		}
		return model.Session{}, err
	}

	return dto.toModel(), nil
}

func (d *Driver) Close(ctx context.Context, code string, closedAt time.Time) error {
	query := `
		UPDATE sessions
		SET active = false, closed_at = $2
		WHERE access_code = $1 AND active = true
	`

	result, err := d.db.ExecContext(ctx, query, code, closedAt)
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

func (d *Driver) AddUser(ctx context.Context, user model.User) error {
	dto := userDTO{
		ID:        user.ID,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		SessionID: user.SessionID,
		CreatedAt: user.CreatedAt,
	}

	query := `
		INSERT INTO users (id, name, is_admin, session_id, created_at)
		VALUES (:id, :name, :is_admin, :session_id, :created_at)
	`

	_, err := d.db.NamedExecContext(ctx, query, dto)
	return err
}

func (d *Driver) Users(ctx context.Context, sessionID model.SessionID) ([]model.User, error) {
	var dtos []userDTO

	query := `
		SELECT id, name, is_admin, session_id, created_at
		FROM users
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	err := d.db.SelectContext(ctx, &dtos, query, sessionID)
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(dtos))
	for _, dto := range dtos {
		users = append(users, model.User{
			ID:        dto.ID,
			Name:      dto.Name,
			IsAdmin:   dto.IsAdmin,
			SessionID: dto.SessionID,
			CreatedAt: dto.CreatedAt,
		})
	}
	return users, nil
}
