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

type TableService interface {
	AddTable(ctx context.Context, session domain.Session, eventID uint, name string, maxSeats int) (domain.Event, error)
	RemoveTable(ctx context.Context, session domain.Session, eventID, tableID uint) (domain.Event, error)
	ReserveSeat(ctx context.Context, session domain.Session, eventID, tableID uint, seatNumber int) (domain.Event, error)
	ReleaseSeat(ctx context.Context, session domain.Session, eventID, tableID uint, seatNumber int) (domain.Event, error)
}

type TableHandler struct {
	svc TableService
}

func NewTableHandler(svc TableService) *TableHandler {
	return &TableHandler{
		svc: svc,
	}
}

// HandleAddTable godoc
// @Summary      Add a table to an event
// @Tags         tables
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        request   body     request.AddTableRequest true "request body"
// @Success      201      {object}  domain.Event
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/tables [post]
func (h *TableHandler) HandleAddTable(ctx *gin.Context) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.AddTableRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.AddTable(ctx.Request.Context(), session, eventID, req.Name, req.MaxSeats)
	if err != nil {
		h.renderTableErr(ctx, "v1.HandleAddTable", err)
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleRemoveTable godoc
// @Summary      Remove a table and its reservations
// @Tags         tables
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        tableID   path     int  true  "table ID"
// @Success      200      {object}  domain.Event
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/tables/{tableID} [delete]
func (h *TableHandler) HandleRemoveTable(ctx *gin.Context) {
	params, ok := h.sessionAndTableParams(ctx)
	if !ok {
		return
	}

	event, err := h.svc.RemoveTable(ctx.Request.Context(), params.session, params.eventID, params.tableID)
	if err != nil {
		h.renderTableErr(ctx, "v1.HandleRemoveTable", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleReserveSeat godoc
// @Summary      Reserve a seat at a table
// @Tags         tables
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        tableID   path     int  true  "table ID"
// @Param        request   body     request.ReserveSeatRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/tables/{tableID}/reserve [post]
func (h *TableHandler) HandleReserveSeat(ctx *gin.Context) {
	params, req, ok := h.sessionAndSeatParams(ctx)
	if !ok {
		return
	}

	event, err := h.svc.ReserveSeat(ctx.Request.Context(), params.session, params.eventID, params.tableID, req.SeatNumber)
	if err != nil {
		h.renderTableErr(ctx, "v1.HandleReserveSeat", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleReleaseSeat godoc
// @Summary      Release a reserved seat
// @Tags         tables
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Param        tableID   path     int  true  "table ID"
// @Param        request   body     request.ReserveSeatRequest true "request body"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/tables/{tableID}/release [post]
func (h *TableHandler) HandleReleaseSeat(ctx *gin.Context) {
	params, req, ok := h.sessionAndSeatParams(ctx)
	if !ok {
		return
	}

	event, err := h.svc.ReleaseSeat(ctx.Request.Context(), params.session, params.eventID, params.tableID, req.SeatNumber)
	if err != nil {
		h.renderTableErr(ctx, "v1.HandleReleaseSeat", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

type tableParams struct {
	session domain.Session
	eventID uint
	tableID uint
}

func (h *TableHandler) sessionAndTableParams(ctx *gin.Context) (tableParams, bool) {
	session, err := sessionFromContext(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))
		return tableParams{}, false
	}

	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return tableParams{}, false
	}

	tableID, err := parseUintParam(ctx, "tableID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return tableParams{}, false
	}

	return tableParams{session: session, eventID: eventID, tableID: tableID}, true
}

func (h *TableHandler) sessionAndSeatParams(ctx *gin.Context) (tableParams, request.ReserveSeatRequest, bool) {
	params, ok := h.sessionAndTableParams(ctx)
	if !ok {
		return tableParams{}, request.ReserveSeatRequest{}, false
	}

	var req request.ReserveSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return tableParams{}, request.ReserveSeatRequest{}, false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return tableParams{}, request.ReserveSeatRequest{}, false
	}

	return params, req, true
}

func (h *TableHandler) renderTableErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrEventNotFound))
	case errors.Is(err, service.ErrTableNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrTableNotFound))
	case errors.Is(err, service.ErrNotEventOwner):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotEventOwner))
	case errors.Is(err, service.ErrNotParticipant):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotParticipant))
	case errors.Is(err, service.ErrNotSeatOccupant):
		response.RenderErr(ctx, response.ErrForbidden(service.ErrNotSeatOccupant))
	case errors.Is(err, service.ErrSeatOutOfRange):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrSeatOutOfRange))
	case errors.Is(err, service.ErrSeatNotReserved):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrSeatNotReserved))
	case errors.Is(err, service.ErrSeatTaken):
		response.RenderErr(ctx, response.ErrConflict(service.ErrSeatTaken))
	case errors.Is(err, service.ErrAlreadySeated):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadySeated))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%v -> %w", op, err)))
	}
}
