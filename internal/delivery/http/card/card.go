package http_card

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	http_common "github.com/avoronov/quorum/core/internal/delivery/http/common"
	ws_session "github.com/avoronov/quorum/core/internal/delivery/ws/session"
	"github.com/avoronov/quorum/core/internal/model"
	usecase_card "github.com/avoronov/quorum/core/internal/usecase/card"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
)

type Controller struct {
	usecase *usecase_card.Usecase
	hub     *ws_session.Hub
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_card.Usecase, hub *ws_session.Hub, opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		hub:     hub,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	cards := router.Group("/sessions/:access_code/cards")
	{
		cards.GET("", c.list)
		cards.POST("", c.create)
	}
}

type CardDTO struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toCardDTO(card model.Card) CardDTO {
	return CardDTO{
		ID:          card.ID.String(),
		SessionID:   card.SessionID.String(),
		Title:       card.Title,
		Description: card.Description,
		CreatedAt:   card.CreatedAt.Format(time.RFC3339Nano),
	}
}

// List returns the session's cards in creation order
// @Summary List cards
// @Tags Cards
// @Param access_code path string true "Access code"
// @Produce json
// @Success 200 {array} CardDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/cards [get]
func (c *Controller) list(ctx *gin.Context) {
	code := ctx.Param("access_code")

	cards, err := c.usecase.List(ctx, code)
	if err != nil {
		c.respondError(ctx, code, "failed to list cards", err)
		return
	}

	dtos := make([]CardDTO, 0, len(cards))
	for _, card := range cards {
		dtos = append(dtos, toCardDTO(card))
	}
	ctx.JSON(http.StatusOK, dtos)
}

type CreateCardRequestDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Create authors a new card and pushes it to live participants
// @Summary Add card
// @Tags Cards
// @Accept json
// @Produce json
// @Param access_code path string true "Access code"
// @Param request body CreateCardRequestDTO true "Card"
// @Success 201 {object} CardDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 409 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/cards [post]
func (c *Controller) create(ctx *gin.Context) {
	code := ctx.Param("access_code")

	var req CreateCardRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	card, err := c.usecase.Add(ctx, code, req.Title, req.Description)
	if err != nil {
		c.respondError(ctx, code, "failed to add card", err)
		return
	}

	// Broadcast only after the durable insert; clients that miss the frame
	// still pick the card up on their next hydration.
	dto := toCardDTO(card)
	c.hub.BroadcastCardAdded(card.SessionID, ws_session.CardPayload{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		CreatedAt:   dto.CreatedAt,
		SessionID:   dto.SessionID,
	})

	ctx.JSON(http.StatusCreated, dto)
}

func (c *Controller) respondError(ctx *gin.Context, code string, msg string, err error) {
	c.logger.Error(msg, slog.String("access_code", code), slog.String("error", err.Error()))

	switch {
	case errors.Is(err, usecase_session.ErrResourceNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "not found",
		})
	case errors.Is(err, usecase_session.ErrSessionClosed):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Message: "session is closed",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
	}
}
