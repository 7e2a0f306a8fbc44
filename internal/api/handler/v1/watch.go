package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/suckingout/poker-nights-api/internal/api/handler/v1/response"
	"github.com/suckingout/poker-nights-api/internal/service"
	"github.com/suckingout/poker-nights-api/internal/watch"
)

const (
	watchWriteWait = 10 * time.Second
	watchPingEvery = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

// WatchHandler streams live document snapshots over a websocket. One
// connection observes one topic; the client reconnects after a deletion.
type WatchHandler struct {
	hub      *watch.Hub
	eventSvc EventService
	groupSvc GroupService
}

func NewWatchHandler(hub *watch.Hub, eventSvc EventService, groupSvc GroupService) *WatchHandler {
	return &WatchHandler{
		hub:      hub,
		eventSvc: eventSvc,
		groupSvc: groupSvc,
	}
}

// HandleWatchEvent godoc
// @Summary      Stream live snapshots of an event
// @Tags         events
// @Produce      json
// @Param        eventID   path     int  true  "event ID"
// @Success      101      {string}  string "Switching Protocols to WebSocket"
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/watch [get]
func (h *WatchHandler) HandleWatchEvent(ctx *gin.Context) {
	eventID, err := parseUintParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.eventSvc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		h.renderWatchErr(ctx, err)
		return
	}

	topic := watch.EventTopic(eventID)
	h.serve(ctx, topic, watch.Snapshot{Topic: topic, Data: event})
}

// HandleWatchGroup godoc
// @Summary      Stream live snapshots of a group
// @Tags         groups
// @Produce      json
// @Param        groupID   path     int  true  "group ID"
// @Success      101      {string}  string "Switching Protocols to WebSocket"
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /groups/{groupID}/watch [get]
func (h *WatchHandler) HandleWatchGroup(ctx *gin.Context) {
	groupID, err := parseUintParam(ctx, "groupID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.groupSvc.GetGroup(ctx.Request.Context(), groupID)
	if err != nil {
		h.renderWatchErr(ctx, err)
		return
	}

	topic := watch.GroupTopic(groupID)
	h.serve(ctx, topic, watch.Snapshot{Topic: topic, Data: group})
}

// serve subscribes before replying with the initial snapshot so no write
// between the read and the upgrade is missed.
func (h *WatchHandler) serve(ctx *gin.Context, topic string, initial watch.Snapshot) {
	sub := h.hub.Subscribe(topic)

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sub.Cancel()
		zap.L().Warn("websocket upgrade failed", zap.String("topic", topic), zap.Error(err))
		return
	}

	go h.readPump(conn, sub)
	h.writePump(conn, sub, initial)
}

// readPump discards client frames; its job is cancelling the subscription
// when the peer goes away.
func (h *WatchHandler) readPump(conn *websocket.Conn, sub *watch.Subscription) {
	defer sub.Cancel()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WatchHandler) writePump(conn *websocket.Conn, sub *watch.Subscription, initial watch.Snapshot) {
	ticker := time.NewTicker(watchPingEvery)
	defer func() {
		ticker.Stop()
		sub.Cancel()
		conn.Close()
	}()

	if err := h.writeSnapshot(conn, initial); err != nil {
		return
	}

	for {
		select {
		case snapshot, ok := <-sub.Updates():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(watchWriteWait))
				return
			}

			if err := h.writeSnapshot(conn, snapshot); err != nil {
				return
			}

			if snapshot.Deleted {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "deleted"), time.Now().Add(watchWriteWait))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(watchWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *WatchHandler) writeSnapshot(conn *websocket.Conn, snapshot watch.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(watchWriteWait))

	return conn.WriteJSON(snapshot)
}

func (h *WatchHandler) renderWatchErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrGroupNotFound):
		response.RenderErr(ctx, response.ErrNotFound(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
