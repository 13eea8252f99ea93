package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"auth_service/internal/models"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Same-origin checks are left to the reverse proxy; the route is already behind bearer auth.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventCursor remembers how far the stream has read. Event timestamps are not unique,
// so ids already sent at the cursor instant are remembered and skipped.
type eventCursor struct {
	from time.Time
	seen map[string]struct{}
}

func newEventCursor(from time.Time) *eventCursor {
	return &eventCursor{from: from, seen: make(map[string]struct{})}
}

// advance filters out already-sent events and moves the cursor past the rest.
// events must be ordered by OccurredAt ascending.
func (cur *eventCursor) advance(events []models.AuthEvent) []models.AuthEvent {
	fresh := make([]models.AuthEvent, 0, len(events))
	for _, e := range events {
		if e.OccurredAt.Before(cur.from) {
			continue
		}
		if _, ok := cur.seen[e.EventID]; ok {
			continue
		}
		if e.OccurredAt.After(cur.from) {
			cur.from = e.OccurredAt
			cur.seen = make(map[string]struct{})
		}
		cur.seen[e.EventID] = struct{}{}
		fresh = append(fresh, e)
	}
	return fresh
}

// @Summary      Stream auth events
// @Description  WebSocket; pushes {"type":"events","data":[...]} with audit events newer than 'since' (default: connect time).
// @Tags         events
// @Param        since        query  string  false  "RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'"
// @Param        interval     query  string  false  "Poll interval, e.g. 2s (max 10s)"
// @Param        interval_ms  query  int     false  "Poll interval in ms (max 10000)"
// @Router       /api/protected/events/ws [get]
// @Security     BearerAuth
func (h *Handler) eventsStream(c *gin.Context) {
	interval := h.parseInterval(c)
	since := time.Now().UTC()
	if qs := c.Query("since"); qs != "" {
		t, _, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'since' time"})
			return
		}
		since = t
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	cursor := newEventCursor(since)

	// The first envelope is sent even when empty so clients know the stream is live.
	if err := h.sendEvents(ctx, conn, cursor, true); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendEvents(ctx, conn, cursor, false); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// sendEvents writes events newer than the cursor. Empty batches are skipped unless force is set.
func (h *Handler) sendEvents(ctx context.Context, conn *websocket.Conn, cursor *eventCursor, force bool) error {
	events, err := h.services.EventLog.List(ctx, service.LogFilter{From: cursor.from})
	if err != nil {
		h.log.Errorw("ws_list_events_failed", "err", err)
		return err
	}
	fresh := cursor.advance(events)
	if len(fresh) == 0 && !force {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "events", Data: fresh})
}
