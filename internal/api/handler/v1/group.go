package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suckingout/poker-nights-api/internal/api/handler/v1/request"
	"github.com/suckingout/poker-nights-api/internal/api/handler/v1/response"
	"github.com/suckingout/poker-nights-api/internal/domain"
	"github.com/suckingout/poker-nights-api/internal/service"
)

type GroupService interface {
	CreateGroup(ctx context.Context, session domain.Session, group domain.Group) (domain.Group, error)
	GetGroup(ctx context.Context, groupID uint) (domain.Group, error)
	GetGroups(ctx context.Context, session domain.Session) ([]domain.Group, error)
	GetMembers(ctx context.Context, groupID uint) ([]domain.UserInfo, error)
	InviteMember(ctx context.Context, session domain.Session, groupID uint, email string) (domain.Group, domain.NotifyOutcome, error)
	CancelInvite(ctx context.Context, session domain.Session, groupID uint, email string) (domain.Group, error)
	AcceptInvite(ctx context.Context, session domain.Session, groupID uint) (domain.Group, error)
	RemoveMember(ctx context.Context, session domain.Session, groupID, userID uint) (domain.Group, error)
}

type GroupStatsService interface {
	GetGroupLeaderboard(ctx context.Context, groupID uint) ([]domain.GroupStats, error)
}

type GroupHandler struct {
	svc      GroupService
	statsSvc GroupStatsService
}

func NewGroupHandler(svc GroupService, statsSvc GroupStatsService) *GroupHandler {
	return &GroupHandler{
		svc:      svc,
		statsSvc: statsSvc,
	}
}

// HandleCreateGroup godoc
// @Summary      Create a group
// @Tags         groups
// @Produce      json
// @Param        request   body      request.CreateGroupRequest true "request body"
// @Success      201      {object}   domain.Group
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /groups [post]
func (h *GroupHandler) HandleCreateGroup(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	var req request.CreateGroupRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.svc.CreateGroup(ctx.Request.Context(), session, domain.Group{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateGroup -> h.svc.CreateGroup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

// HandleGetGroups godoc
// @Summary      List the caller's groups
// @Tags         groups
// @Produce      json
// @Success      200      {array}    domain.Group
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /groups [get]
func (h *GroupHandler) HandleGetGroups(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	groups, err := h.svc.GetGroups(ctx.Request.Context(), session)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetGroups -> h.svc.GetGroups -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

// HandleGetGroup godoc
// @Summary      Get a group by ID
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Success      200      {object}  domain.Group
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID} [get]
func (h *GroupHandler) HandleGetGroup(ctx *gin.Context) {
	groupID, err := parseUintParam(ctx, "groupID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.svc.GetGroup(ctx.Request.Context(), groupID)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleGetGroup", err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

// HandleGetMembers godoc
// @Summary      List a group's members
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Success      200      {array}   domain.UserInfo
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/members [get]
func (h *GroupHandler) HandleGetMembers(ctx *gin.Context) {
	groupID, err := parseUintParam(ctx, "groupID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	members, err := h.svc.GetMembers(ctx.Request.Context(), groupID)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleGetMembers", err)
		return
	}

	ctx.JSON(http.StatusOK, members)
}

// HandleGetLeaderboard godoc
// @Summary      Get a group's leaderboard
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Success      200      {array}   domain.GroupStats
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/leaderboard [get]
func (h *GroupHandler) HandleGetLeaderboard(ctx *gin.Context) {
	groupID, err := parseUintParam(ctx, "groupID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	leaderboard, err := h.statsSvc.GetGroupLeaderboard(ctx.Request.Context(), groupID)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleGetLeaderboard", err)
		return
	}

	ctx.JSON(http.StatusOK, leaderboard)
}

// HandleInviteMember godoc
// @Summary      Invite a member by email
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Param        request   body     request.InviteMemberRequest true "request body"
// @Success      200      {object}  response.GroupInviteResponse
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/invites [post]
func (h *GroupHandler) HandleInviteMember(ctx *gin.Context) {
	session, groupID, ok := h.sessionAndGroupID(ctx)
	if !ok {
		return
	}

	var req request.InviteMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, outcome, err := h.svc.InviteMember(ctx.Request.Context(), session, groupID, req.Email)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleInviteMember", err)
		return
	}

	ctx.JSON(http.StatusOK, response.GroupInviteResponse{
		Group:            group,
		NotificationSent: outcome.NotificationSent,
		NotificationErr:  outcome.NotificationErr,
	})
}

// HandleCancelInvite godoc
// @Summary      Withdraw a group invitation
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Param        request   body     request.InviteMemberRequest true "request body"
// @Success      200      {object}  domain.Group
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/invites/remove [post]
func (h *GroupHandler) HandleCancelInvite(ctx *gin.Context) {
	session, groupID, ok := h.sessionAndGroupID(ctx)
	if !ok {
		return
	}

	var req request.InviteMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.svc.CancelInvite(ctx.Request.Context(), session, groupID, req.Email)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleCancelInvite", err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

// HandleAcceptInvite godoc
// @Summary      Accept an invitation to a group
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Success      200      {object}  domain.Group
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/accept [post]
func (h *GroupHandler) HandleAcceptInvite(ctx *gin.Context) {
	session, groupID, ok := h.sessionAndGroupID(ctx)
	if !ok {
		return
	}

	group, err := h.svc.AcceptInvite(ctx.Request.Context(), session, groupID)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleAcceptInvite", err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

// HandleRemoveMember godoc
// @Summary      Remove a member from a group
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Param        request   body     request.RemoveMemberRequest true "request body"
// @Success      200      {object}  domain.Group
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/members/remove [post]
func (h *GroupHandler) HandleRemoveMember(ctx *gin.Context) {
	session, groupID, ok := h.sessionAndGroupID(ctx)
	if !ok {
		return
	}

	var req request.RemoveMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.svc.RemoveMember(ctx.Request.Context(), session, groupID, req.UserID)
	if err != nil {
		h.renderGroupErr(ctx, "v1.HandleRemoveMember", err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (h *GroupHandler) sessionAndGroupID(ctx *gin.Context) (domain.Session, uint, bool) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return domain.Session{}, 0, false
	}

	groupID, err := parseUintParam(ctx, "groupID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Session{}, 0, false
	}

	return session, groupID, true
}

func (h *GroupHandler) renderGroupErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrGroupNotFound))
	case errors.Is(err, service.ErrNotGroupOwner):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotGroupOwner))
	case errors.Is(err, service.ErrNotInvited):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotInvited))
	case errors.Is(err, service.ErrCannotRemoveOwner):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrCannotRemoveOwner))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}
