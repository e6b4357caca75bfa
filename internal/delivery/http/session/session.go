package http_session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	http_common "github.com/avoronov/quorum/core/internal/delivery/http/common"
	"github.com/avoronov/quorum/core/internal/model"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
)

type Controller struct {
	usecase *usecase_session.Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_session.Usecase, opts ...ControllerOption) *Controller {
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
	sessions := router.Group("/sessions")
	{
		sessions.POST("", c.create)
		sessions.GET("/:access_code", c.detail)
		sessions.PATCH("/:access_code", c.close)
		sessions.POST("/:access_code/users", c.join)
		sessions.GET("/:access_code/users", c.users)
	}
}

type SessionDTO struct {
	ID         string  `json:"id"`
	AccessCode string  `json:"access_code"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	ClosedAt   *string `json:"closed_at"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

func toSessionDTO(session model.Session) SessionDTO {
	dto := SessionDTO{
		ID:         session.ID.String(),
		AccessCode: session.AccessCode,
		Active:     session.Active,
		CreatedAt:  session.CreatedAt.Format(time.RFC3339Nano),
	}
	if session.ClosedAt != nil {
		closedAt := session.ClosedAt.Format(time.RFC3339Nano)
		dto.ClosedAt = &closedAt
	}
	return dto
}

func toUserDTO(user model.User) UserDTO {
	return UserDTO{
		ID:        user.ID.String(),
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
		SessionID: user.SessionID.String(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339Nano),
	}
}

// Create opens a new voting session with a fresh access code
// @Summary Create session
// @Tags Sessions
// @Produce json
// @Success 201 {object} SessionDTO
// @Failure 500 {object} http_common.ErrorResponse
// @Failure 503 {object} http_common.ErrorResponse
// @Router /sessions [post]
func (c *Controller) create(ctx *gin.Context) {
	session, err := c.usecase.Create(ctx)
	if err != nil {
		c.logger.Error("failed to create session", slog.String("error", err.Error()))
		if errors.Is(err, usecase_session.ErrSessionsUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "unavailable",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusCreated, toSessionDTO(session))
}

// Detail resolves a session by its access code
// @Summary Session detail
// @Tags Sessions
// @Param access_code path string true "Access code"
// @Produce json
// @Success 200 {object} SessionDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code} [get]
func (c *Controller) detail(ctx *gin.Context) {
	code := ctx.Param("access_code")

	session, err := c.usecase.Resolve(ctx, code)
	if err != nil {
		c.respondError(ctx, code, "failed to resolve session", err)
		return
	}

	ctx.JSON(http.StatusOK, toSessionDTO(session))
}

// Close deactivates a session; no votes are accepted afterwards
// @Summary Close session
// @Tags Sessions
// @Param access_code path string true "Access code"
// @Success 204
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code} [patch]
func (c *Controller) close(ctx *gin.Context) {
	code := ctx.Param("access_code")

	if err := c.usecase.Close(ctx, code); err != nil {
		c.respondError(ctx, code, "failed to close session", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

type JoinRequestDTO struct {
	Name    string `json:"name" binding:"required"`
	IsAdmin bool   `json:"is_admin"`
}

// Join adds a participant to the session behind the access code
// @Summary Join session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param access_code path string true "Access code"
// @Param request body JoinRequestDTO true "Participant"
// @Success 201 {object} UserDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 409 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/users [post]
func (c *Controller) join(ctx *gin.Context) {
	code := ctx.Param("access_code")

	var req JoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	user, err := c.usecase.Join(ctx, code, req.Name, req.IsAdmin)
	if err != nil {
		c.respondError(ctx, code, "failed to join session", err)
		return
	}

	ctx.JSON(http.StatusCreated, toUserDTO(user))
}

// Users lists the session's participants
// @Summary List participants
// @Tags Sessions
// @Param access_code path string true "Access code"
// @Produce json
// @Success 200 {array} UserDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Failure 500 {object} http_common.ErrorResponse
// @Router /sessions/{access_code}/users [get]
func (c *Controller) users(ctx *gin.Context) {
	code := ctx.Param("access_code")

	users, err := c.usecase.Users(ctx, code)
	if err != nil {
		c.respondError(ctx, code, "failed to list users", err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}
	ctx.JSON(http.StatusOK, dtos)
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
