// Package client_store gives the client side its view of the durable
// store: typed request/response calls against the session REST API. Every
// call is all-or-nothing; there are no partial results.
package client_store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrSessionClosed = errors.New("session is closed")
)

//go:generate mockery --name=Store --output=./mocks/store --filename=store.go
type Store interface {
	SessionByCode(ctx context.Context, code string) (model.Session, error)
	CreateSession(ctx context.Context) (model.Session, error)
	CloseSession(ctx context.Context, code string) error
	JoinSession(ctx context.Context, code string, name string, isAdmin bool) (model.User, error)

	Cards(ctx context.Context, code string) ([]model.Card, error)
	CreateCard(ctx context.Context, code string, title, description string) (model.Card, error)

	Votes(ctx context.Context, code string) ([]model.Vote, error)
	FindVote(ctx context.Context, code string, cardID, userID uuid.UUID) (model.Vote, bool, error)
	InsertVote(ctx context.Context, code string, cardID, userID uuid.UUID, choice model.Choice) (model.Vote, error)
	UpdateVote(ctx context.Context, code string, voteID uuid.UUID, choice model.Choice) error
}

// Client is the HTTP implementation of Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type sessionDTO struct {
	ID         string  `json:"id"`
	AccessCode string  `json:"access_code"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	ClosedAt   *string `json:"closed_at"`
}

type userDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

type cardDTO struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type voteDTO struct {
	ID        string `json:"id"`
	CardID    string `json:"card_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Vote      bool   `json:"vote"`
	CreatedAt string `json:"created_at"`
}

func (c *Client) SessionByCode(ctx context.Context, code string) (model.Session, error) {
	var dto sessionDTO
	if err := c.call(ctx, http.MethodGet, "/sessions/"+code, nil, &dto); err != nil {
		return model.Session{}, err
	}
	return toSession(dto)
}

func (c *Client) CreateSession(ctx context.Context) (model.Session, error) {
	var dto sessionDTO
	if err := c.call(ctx, http.MethodPost, "/sessions", nil, &dto); err != nil {
		return model.Session{}, err
	}
	return toSession(dto)
}

func (c *Client) CloseSession(ctx context.Context, code string) error {
	return c.call(ctx, http.MethodPatch, "/sessions/"+code, nil, nil)
}

func (c *Client) JoinSession(ctx context.Context, code string, name string, isAdmin bool) (model.User, error) {
	body := map[string]any{
		"name":     name,
		"is_admin": isAdmin,
	}

	var dto userDTO
	if err := c.call(ctx, http.MethodPost, "/sessions/"+code+"/users", body, &dto); err != nil {
		return model.User{}, err
	}
	return toUser(dto)
}

func (c *Client) Cards(ctx context.Context, code string) ([]model.Card, error) {
	var dtos []cardDTO
	if err := c.call(ctx, http.MethodGet, "/sessions/"+code+"/cards", nil, &dtos); err != nil {
		return nil, err
	}

	cards := make([]model.Card, 0, len(dtos))
	for _, dto := range dtos {
		card, err := toCard(dto)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (c *Client) CreateCard(ctx context.Context, code string, title, description string) (model.Card, error) {
	body := map[string]any{
		"title":       title,
		"description": description,
	}

	var dto cardDTO
	if err := c.call(ctx, http.MethodPost, "/sessions/"+code+"/cards", body, &dto); err != nil {
		return model.Card{}, err
	}
	return toCard(dto)
}

func (c *Client) Votes(ctx context.Context, code string) ([]model.Vote, error) {
	return c.votes(ctx, "/sessions/"+code+"/votes")
}

func (c *Client) FindVote(ctx context.Context, code string, cardID, userID uuid.UUID) (model.Vote, bool, error) {
	path := fmt.Sprintf("/sessions/%s/votes?card_id=%s&user_id=%s", code, cardID, userID)

	votes, err := c.votes(ctx, path)
	if err != nil {
		return model.Vote{}, false, err
	}
	if len(votes) == 0 {
		return model.Vote{}, false, nil
	}
	return votes[0], true, nil
}

func (c *Client) InsertVote(ctx context.Context, code string, cardID, userID uuid.UUID, choice model.Choice) (model.Vote, error) {
	body := map[string]any{
		"card_id": cardID.String(),
		"user_id": userID.String(),
		"vote":    choice,
	}

	var dto voteDTO
	if err := c.call(ctx, http.MethodPost, "/sessions/"+code+"/votes", body, &dto); err != nil {
		return model.Vote{}, err
	}
	return toVote(dto)
}

func (c *Client) UpdateVote(ctx context.Context, code string, voteID uuid.UUID, choice model.Choice) error {
	body := map[string]any{
		"vote": choice,
	}
	return c.call(ctx, http.MethodPatch, "/sessions/"+code+"/votes/"+voteID.String(), body, nil)
}

func (c *Client) votes(ctx context.Context, path string) ([]model.Vote, error) {
	var dtos []voteDTO
	if err := c.call(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}

	votes := make([]model.Vote, 0, len(dtos))
	for _, dto := range dtos {
		vote, err := toVote(dto)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrSessionClosed
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store call failed: %s - %s", resp.Status, string(payload))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toSession(dto sessionDTO) (model.Session, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.Session{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return model.Session{}, err
	}

	session := model.Session{
		ID:         id,
		AccessCode: dto.AccessCode,
		Active:     dto.Active,
		CreatedAt:  createdAt,
	}
	if dto.ClosedAt != nil {
		closedAt, err := time.Parse(time.RFC3339Nano, *dto.ClosedAt)
		if err != nil {
			return model.Session{}, err
		}
		session.ClosedAt = &closedAt
	}
	return session, nil
}

func toUser(dto userDTO) (model.User, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.User{}, err
	}
	sessionID, err := uuid.Parse(dto.SessionID)
	if err != nil {
		return model.User{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return model.User{}, err
	}

	return model.User{
		ID:        id,
		Name:      dto.Name,
		IsAdmin:   dto.IsAdmin,
		SessionID: sessionID,
		CreatedAt: createdAt,
	}, nil
}

func toCard(dto cardDTO) (model.Card, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.Card{}, err
	}
	sessionID, err := uuid.Parse(dto.SessionID)
	if err != nil {
		return model.Card{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return model.Card{}, err
	}

	return model.Card{
		ID:          id,
		SessionID:   sessionID,
		Title:       dto.Title,
		Description: dto.Description,
		CreatedAt:   createdAt,
	}, nil
}

func toVote(dto voteDTO) (model.Vote, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.Vote{}, err
	}
	cardID, err := uuid.Parse(dto.CardID)
	if err != nil {
		return model.Vote{}, err
	}
	userID, err := uuid.Parse(dto.UserID)
	if err != nil {
		return model.Vote{}, err
	}
	sessionID, err := uuid.Parse(dto.SessionID)
	if err != nil {
		return model.Vote{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, dto.CreatedAt)
	if err != nil {
		return model.Vote{}, err
	}

	return model.Vote{
		ID:        id,
		CardID:    cardID,
		UserID:    userID,
		SessionID: sessionID,
		Choice:    dto.Vote,
		CreatedAt: createdAt,
	}, nil
}
