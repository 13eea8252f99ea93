package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"auth_service/internal/models"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestEventCursor_Advance(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := newEventCursor(t0)

	batch := []models.AuthEvent{
		{EventID: "old", OccurredAt: t0.Add(-time.Second)},
		{EventID: "a", OccurredAt: t0},
		{EventID: "b", OccurredAt: t0.Add(time.Second)},
		{EventID: "c", OccurredAt: t0.Add(time.Second)},
	}
	if got := cur.advance(batch); len(got) != 3 {
		t.Fatalf("first batch: %+v", got)
	}
	if !cur.from.Equal(t0.Add(time.Second)) {
		t.Fatalf("cursor not advanced: %v", cur.from)
	}

	// the repository returns the cursor instant inclusively
	again := append(batch[2:], models.AuthEvent{EventID: "d", OccurredAt: t0.Add(time.Second)})
	got := cur.advance(again)
	if len(got) != 1 || got[0].EventID != "d" {
		t.Fatalf("second batch: %+v", got)
	}
}

type wsEnvelopeIn struct {
	Type  string             `json:"type"`
	Data  []models.AuthEvent `json:"data"`
	Error string             `json:"error"`
}

func dialEvents(t *testing.T, srv *httptest.Server, query url.Values) *websocket.Conn {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/api/protected/events/ws"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), authHeader("valid"))
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func TestWebSocket_EventStream_InitialAndIncremental(t *testing.T) {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := models.AuthEvent{EventID: "e1", OccurredAt: since.Add(time.Second), Type: models.EventRegister, Username: "alice"}
	logs := &mockEventLog{resp: []models.AuthEvent{first}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{authorizeID: 1}, EventLog: logs})

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialEvents(t, srv, url.Values{"interval_ms": {"20"}, "since": {since.Format(time.RFC3339)}})
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env wsEnvelopeIn
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "events" || len(env.Data) != 1 || env.Data[0].EventID != "e1" {
		t.Fatalf("bad initial envelope: %+v", env)
	}

	second := models.AuthEvent{EventID: "e2", OccurredAt: since.Add(2 * time.Second), Type: models.EventLogin, Username: "alice"}
	logs.set([]models.AuthEvent{first, second}, nil)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	env = wsEnvelopeIn{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].EventID != "e2" {
		t.Fatalf("expected only e2, got %+v", env)
	}

	// the next poll asks the repository for events from the new cursor onward
	deadline := time.Now().Add(time.Second)
	for !logs.lastFilter().From.Equal(second.OccurredAt) {
		if time.Now().After(deadline) {
			t.Fatalf("cursor not pushed to repository: %v", logs.lastFilter().From)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocket_InitialListError_Closes(t *testing.T) {
	logs := &mockEventLog{err: errors.New("boom")}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{authorizeID: 1}, EventLog: logs})

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialEvents(t, srv, nil)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}

func TestWebSocket_BadSince(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{authorizeID: 1}, EventLog: &mockEventLog{}})
	w := getWithAuth(r, "/api/protected/events/ws?since=yesterday")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
