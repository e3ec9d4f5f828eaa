// internal/handlers/ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsReadLimit  = 512
	// live queries deliver the newest page only
	liveQueryLimit = 50
)

// frame is one message pushed to a live query client.
type frame struct {
	Collection string      `json:"collection"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	At         time.Time   `json:"at"`
}

// LiveHandler streams query snapshots over websockets. Each connection holds one hub
// subscription, released when the client goes away.
type LiveHandler struct {
	hub                 *events.Hub
	applicationService  *services.ApplicationService
	notificationService *services.NotificationService
	upgrader            websocket.Upgrader
	log                 logrus.FieldLogger
}

func NewLiveHandler(hub *events.Hub, applicationService *services.ApplicationService, notificationService *services.NotificationService, allowedOrigins []string, log logrus.FieldLogger) *LiveHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LiveHandler{
		hub:                 hub,
		applicationService:  applicationService,
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.WithField("component", "live"),
	}
}

// GET /v1/ws/notifications
func (h *LiveHandler) Notifications(c *gin.Context) {
	p := principal(c)
	h.serve(c, events.CollectionNotifications, func(ctx context.Context) (interface{}, error) {
		items, _, err := h.notificationService.List(ctx, p, false, 0, liveQueryLimit)
		return items, err
	})
}

// GET /v1/ws/applications
// Applicants see their own applications, admins all, attorneys their queue.
func (h *LiveHandler) Applications(c *gin.Context) {
	p := principal(c)
	query, _, ok := applicationQuery(c)
	if !ok {
		return
	}
	query.Offset, query.Limit = 0, liveQueryLimit

	h.serve(c, events.CollectionApplications, func(ctx context.Context) (interface{}, error) {
		apps, _, err := h.applicationService.ListForPrincipal(ctx, p, query)
		return apps, err
	})
}

func (h *LiveHandler) serve(c *gin.Context, collection string, query events.QueryFunc) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already answered the request
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()

	userID, _ := utils.GetUserIDFromContext(c)
	log := h.log.WithFields(logrus.Fields{"collection": collection, "user_id": userID})
	log.Info("live query opened")
	defer log.Info("live query closed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.hub.Subscribe(ctx, collection, query)
	defer sub.Close()

	go h.readPump(conn, cancel)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			out := frame{Collection: collection, Data: snap.Data, At: snap.At}
			if snap.Err != nil {
				out.Data = nil
				out.Error = publicError(snap.Err)
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump drains client frames so pongs are processed; cancel fires when the peer leaves.
func (h *LiveHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func publicError(err error) string {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return "forbidden"
	case errors.Is(err, services.ErrNotFound):
		return "not found"
	default:
		return "query failed"
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
