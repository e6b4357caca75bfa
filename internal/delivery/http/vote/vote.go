package http_vote

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	http_common "github.com/avoronov/quorum/core/internal/delivery/http/common"
	"github.com/avoronov/quorum/core/internal/model"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	usecase_vote "github.com/avoronov/quorum/core/internal/usecase/vote"
)

type Controller struct {
	usecase *usecase_vote.Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_vote.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	votes := router.Group("/sessions/:access_code/votes")
	{
		votes.GET("", c.list)
		votes.POST("", c.create)
		votes.PATCH("/:vote_id", c.update)
	}
}

type VoteDTO struct {
	ID        string `json:"id"`
	CardID    string `json:"card_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Vote      bool   `json:"vote"`
	CreatedAt string `json:"created_at"`
}

func toVoteDTO(vote model.Vote) VoteDTO {
	return VoteDTO{
		ID:        vote.ID.String(),
		CardID:    vote.CardID.String(),
		UserID:    vote.UserID.String(),
		SessionID: vote.SessionID.String(),
		Vote:      vote.Choice,
		CreatedAt: vote.CreatedAt.Format(time.RFC3339Nano),
	}
}

type listQueryDTO struct {
	CardID string `form:"card_id"`
	UserID string `form:"user_id"`
}

// List returns votes for a session. With both card_id and user_id set it
// degrades to the point query of the store contract (zero or one row).
// @Summary List votes
// @Tags Votes
// @Param access_code path string true "Access code"
// @Param card_id query string false "Card filter"
// @Param user_id query string false "User filter"
// @Produce json
// @Success 200 {array} VoteDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/votes [get]
func (c *Controller) list(ctx *gin.Context) {
	code := ctx.Param("access_code")

	var query listQueryDTO
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	if query.CardID != "" && query.UserID != "" {
		c.pointQuery(ctx, code, query)
		return
	}

	var userID *uuid.UUID
	if query.UserID != "" {
		parsed, err := uuid.Parse(query.UserID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "invalid user id format",
			})
			return
		}
		userID = &parsed
	}

	votes, err := c.usecase.Votes(ctx, code, userID)
	if err != nil {
		c.respondError(ctx, code, "failed to list votes", err)
		return
	}

	dtos := make([]VoteDTO, 0, len(votes))
	for _, vote := range votes {
		dtos = append(dtos, toVoteDTO(vote))
	}
	ctx.JSON(http.StatusOK, dtos)
}

func (c *Controller) pointQuery(ctx *gin.Context, code string, query listQueryDTO) {
	cardID, err := uuid.Parse(query.CardID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid card id format",
		})
		return
	}
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid user id format",
		})
		return
	}

	vote, err := c.usecase.Find(ctx, code, cardID, userID)
	if err != nil {
		if errors.Is(err, usecase_session.ErrResourceNotFound) {
			// The point query is a lookup, not an existence assertion:
			// an absent vote is an empty list, not a 404.
			ctx.JSON(http.StatusOK, []VoteDTO{})
			return
		}
		c.respondError(ctx, code, "failed to find vote", err)
		return
	}

	ctx.JSON(http.StatusOK, []VoteDTO{toVoteDTO(vote)})
}

type CreateVoteRequestDTO struct {
	CardID string `json:"card_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
	Vote   *bool  `json:"vote" binding:"required"`
}

// Create inserts a first-time vote
// @Summary Cast vote
// @Tags Votes
// @Accept json
// @Produce json
// @Param access_code path string true "Access code"
// @Param request body CreateVoteRequestDTO true "Vote"
// @Success 201 {object} VoteDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 409 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/votes [post]
func (c *Controller) create(ctx *gin.Context) {
	code := ctx.Param("access_code")

	var req CreateVoteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid card id format",
		})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid user id format",
		})
		return
	}

	vote, err := c.usecase.Insert(ctx, code, cardID, userID, *req.Vote)
	if err != nil {
		c.respondError(ctx, code, "failed to cast vote", err)
		return
	}

	ctx.JSON(http.StatusCreated, toVoteDTO(vote))
}

type UpdateVoteRequestDTO struct {
	Vote *bool `json:"vote" binding:"required"`
}

// Update rewrites an existing vote's choice in place
// @Summary Change vote
// @Tags Votes
// @Accept json
// @Param access_code path string true "Access code"
// @Param vote_id path string true "Vote id"
// @Param request body UpdateVoteRequestDTO true "New choice"
// @Success 204
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 409 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/votes/{vote_id} [patch]
func (c *Controller) update(ctx *gin.Context) {
	code := ctx.Param("access_code")

	voteID, err := uuid.Parse(ctx.Param("vote_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid vote id format",
		})
		return
	}

	var req UpdateVoteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	if err := c.usecase.UpdateChoice(ctx, code, voteID, *req.Vote); err != nil {
		c.respondError(ctx, code, "failed to update vote", err)
		return
	}

	ctx.Status(http.StatusNoContent)
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
