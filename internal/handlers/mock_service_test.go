package handlers

import (
	"context"
	"net/http"
	"sync"

	"auth_service/internal/models"
	"auth_service/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerRes  models.AuthResult
	registerErr  error
	loginRes     models.AuthResult
	loginErr     error
	authorizeID  int
	authorizeErr error

	lastRegister      service.RegisterInput
	lastLoginUsername string
	lastLoginPassword string
	lastHeader        string
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (models.AuthResult, error) {
	m.lastRegister = in
	return m.registerRes, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, username, password string) (models.AuthResult, error) {
	m.lastLoginUsername = username
	m.lastLoginPassword = password
	return m.loginRes, m.loginErr
}

func (m *mockAuth) Authorize(header string) (int, error) {
	m.lastHeader = header
	return m.authorizeID, m.authorizeErr
}

type mockEventLog struct {
	mu    sync.Mutex
	resp  []models.AuthEvent
	err   error
	last  service.LogFilter
	calls int
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.AuthEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = f
	return append([]models.AuthEvent(nil), m.resp...), m.err
}

func (m *mockEventLog) set(resp []models.AuthEvent, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resp = resp
	m.err = err
}

func (m *mockEventLog) lastFilter() service.LogFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
