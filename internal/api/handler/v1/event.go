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

type EventService interface {
	CreateEvent(ctx context.Context, session domain.Session, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, eventID uint) (domain.Event, error)
	GetEvents(ctx context.Context, session domain.Session) ([]domain.Event, error)
	GetParticipants(ctx context.Context, eventID uint) ([]domain.UserInfo, error)
	JoinEvent(ctx context.Context, session domain.Session, eventID uint) (domain.Event, error)
	LeaveEvent(ctx context.Context, session domain.Session, eventID uint) (domain.Event, error)
	InvitePlayer(ctx context.Context, session domain.Session, eventID uint, email string) (domain.Event, domain.NotifyOutcome, error)
	RemoveInvite(ctx context.Context, session domain.Session, eventID uint, email string) (domain.Event, error)
	SetWinners(ctx context.Context, session domain.Session, eventID uint, winners domain.Winners) (domain.Event, error)
	CancelEvent(ctx context.Context, session domain.Session, eventID uint) error
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Produce      json
// @Param        request   body      request.CreateEventRequest true "request body"
// @Success      201      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [post]
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	var req request.CreateEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), session, domain.Event{
		Title:      req.Title,
		Date:       req.Date,
		Location:   req.Location,
		BuyInCents: req.BuyInCents,
		MaxPlayers: req.MaxPlayers,
		Timezone:   req.Timezone,
		GroupID:    req.GroupID,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleGetEvents godoc
// @Summary      List the caller's events
// @Tags         events
// @Produce      json
// @Success      200      {array}    domain.Event
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [get]
func (h *EventHandler) HandleGetEvents(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	events, err := h.svc.GetEvents(ctx.Request.Context(), session)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvents -> h.svc.GetEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event by ID
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		h.renderEventErr(ctx, "v1.HandleGetEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetParticipants godoc
// @Summary      List an event's participants
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      200      {array}   domain.UserInfo
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/participants [get]
func (h *EventHandler) HandleGetParticipants(ctx *gin.Context) {
	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	participants, err := h.svc.GetParticipants(ctx.Request.Context(), eventID)
	if err != nil {
		h.renderEventErr(ctx, "v1.HandleGetParticipants", err)
		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleJoinEvent godoc
// @Summary      Join an event
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/join [post]
func (h *EventHandler) HandleJoinEvent(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	event, err := h.svc.JoinEvent(ctx.Request.Context(), session, eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventFull) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventFull))
			return
		}

		h.renderEventErr(ctx, "v1.HandleJoinEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleLeaveEvent godoc
// @Summary      Leave an event
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/leave [post]
func (h *EventHandler) HandleLeaveEvent(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	event, err := h.svc.LeaveEvent(ctx.Request.Context(), session, eventID)
	if err != nil {
		if errors.Is(err, service.ErrOwnerCannotLeave) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrOwnerCannotLeave))
			return
		}

		h.renderEventErr(ctx, "v1.HandleLeaveEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleInvitePlayer godoc
// @Summary      Invite a player by email
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        request   body     request.InvitePlayerRequest true "request body"
// @Success      200      {object}  response.InviteResponse
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/invites [post]
func (h *EventHandler) HandleInvitePlayer(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	var req request.InvitePlayerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, outcome, err := h.svc.InvitePlayer(ctx.Request.Context(), session, eventID, req.Email)
	if err != nil {
		h.renderEventErr(ctx, "v1.HandleInvitePlayer", err)
		return
	}

	ctx.JSON(http.StatusOK, response.InviteResponse{
		Event:            event,
		NotificationSent: outcome.NotificationSent,
		NotificationErr:  outcome.NotificationErr,
	})
}

// HandleRemoveInvite godoc
// @Summary      Withdraw an invitation
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        request   body     request.InvitePlayerRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/invites/remove [post]
func (h *EventHandler) HandleRemoveInvite(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	var req request.InvitePlayerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.RemoveInvite(ctx.Request.Context(), session, eventID, req.Email)
	if err != nil {
		h.renderEventErr(ctx, "v1.HandleRemoveInvite", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleSetWinners godoc
// @Summary      Record the winners and complete the event
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        request   body     request.SetWinnersRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/winners [put]
func (h *EventHandler) HandleSetWinners(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	var req request.SetWinnersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.SetWinners(ctx.Request.Context(), session, eventID, domain.Winners{
		First:  winnerEntry(req.First),
		Second: winnerEntry(req.Second),
		Third:  winnerEntry(req.Third),
	})
	if err != nil {
		if errors.Is(err, service.ErrPrizesExceedPool) ||
			errors.Is(err, service.ErrPrizesNotDescending) ||
			errors.Is(err, service.ErrNoWinners) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		h.renderEventErr(ctx, "v1.HandleSetWinners", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCancelEvent godoc
// @Summary      Cancel and delete an event
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      204      "no content"
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [delete]
func (h *EventHandler) HandleCancelEvent(ctx *gin.Context) {
	session, eventID, ok := h.sessionAndEventID(ctx)
	if !ok {
		return
	}

	if err := h.svc.CancelEvent(ctx.Request.Context(), session, eventID); err != nil {
		h.renderEventErr(ctx, "v1.HandleCancelEvent", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *EventHandler) sessionAndEventID(ctx *gin.Context) (domain.Session, uint, bool) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return domain.Session{}, 0, false
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Session{}, 0, false
	}

	return session, eventID, true
}

func (h *EventHandler) renderEventErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrEventNotFound))
	case errors.Is(err, service.ErrNotEventOwner):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotEventOwner))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}

func winnerEntry(req *request.WinnerEntryRequest) *domain.WinnerEntry {
	if req == nil {
		return nil
	}

	return &domain.WinnerEntry{
		UserID:     req.UserID,
		PrizeCents: req.PrizeCents,
	}
}
