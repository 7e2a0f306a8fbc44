package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suckingout/poker-nights-api/internal/api/handler/v1/request"
	"github.com/suckingout/poker-nights-api/internal/api/handler/v1/response"
	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	UpdateProfile(ctx context.Context, session domain.Session, displayName, timezone string) (domain.User, error)
}

type StatsService interface {
	GetUserStats(ctx context.Context, userID uint) (domain.UserStats, error)
}

type UserHandler struct {
	svc      UserService
	statsSvc StatsService
}

func NewUserHandler(svc UserService, statsSvc StatsService) *UserHandler {
	return &UserHandler{
		svc:      svc,
		statsSvc: statsSvc,
	}
}

// HandleGetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID   path      int  true  "user ID"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/{userID} [get]
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	userID, err := parseUintParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))
			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleUpdateMyProfile godoc
// @Summary      Update the caller's display name and timezone
// @Tags         users
// @Produce      json
// @Param        request  body      request.UpdateProfileRequest true "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /me [put]
func (h *UserHandler) HandleUpdateMyProfile(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	var req request.UpdateProfileRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.UpdateProfile(ctx.Request.Context(), session, req.DisplayName, req.Timezone)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateMyProfile -> h.svc.UpdateProfile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetMyStats godoc
// @Summary      Get the caller's derived stats
// @Tags         users
// @Produce      json
// @Success      200      {object}  domain.UserStats
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /me/stats [get]
func (h *UserHandler) HandleGetMyStats(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	stats, err := h.statsSvc.GetUserStats(ctx.Request.Context(), session.UserID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMyStats -> h.statsSvc.GetUserStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %v", name)
	}

	return uint(parsed), nil
}
