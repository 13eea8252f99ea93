package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/secure", h.authMiddleware, func(c *gin.Context) {
		uid, _ := c.Get(ctxUserIDKey)
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": uid})
	})
	return r
}

func TestAuthMiddleware_RejectsWithGenericBody(t *testing.T) {
	auth := &mockAuth{authorizeErr: &service.Error{
		Kind:    service.KindAuthorization,
		Message: service.MsgUnauthorized,
		Err:     errors.New("token is expired"),
	}}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
	}
	var out struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Error != service.MsgUnauthorized {
		t.Fatalf("error message: got %q", out.Error)
	}
	if auth.lastHeader != "Bearer expired" {
		t.Fatalf("Authorize got %q", auth.lastHeader)
	}
}

func TestAuthMiddleware_SuccessSetsUserIDAndProceeds(t *testing.T) {
	auth := &mockAuth{authorizeID: 123}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	var resp struct {
		OK     bool `json:"ok"`
		UserID int  `json:"userId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK || resp.UserID != 123 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	auth := &mockAuth{authorizeErr: &service.Error{Kind: service.KindAuthorization, Message: service.MsgUnauthorized}}
	events := &mockEventLog{}
	r := newTestRouter(&service.Service{Authorization: auth, EventLog: events})

	for _, path := range []string{"/api/protected/data", "/api/protected/events", "/api/protected/events/ws"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", path, w.Code)
		}
	}
	if events.calls != 0 {
		t.Fatalf("event log reached without auth")
	}
}

func TestProtectedData(t *testing.T) {
	r := newTestRouter(&service.Service{Authorization: &mockAuth{authorizeID: 1}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/protected/data", nil)
	req.Header = authHeader("anything")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if m := decodeBody(t, w); m["data"] != protectedPayload {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}
