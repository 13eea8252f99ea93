package service

import (
	"context"
	"time"

	"auth_service/internal/logger"
	"auth_service/internal/models"
	"auth_service/internal/repository"
)

// Authorization covers registration, login and bearer-token checks.
type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (models.AuthResult, error)
	Login(ctx context.Context, username, password string) (models.AuthResult, error)
	// Authorize validates an Authorization header value and returns the user id it carries.
	Authorize(header string) (int, error)
}

// EventLog exposes the audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AuthEvent, error)
}

// TokenIssuer mints and checks bearer tokens.
type TokenIssuer interface {
	Issue(userID int) (string, error)
	Verify(token string) (int, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "REGISTER", "REGISTER_FAILED", "LOGIN", "LOGIN_FAILED"
}

// Deps are the collaborators that are not repositories.
type Deps struct {
	Hasher              PasswordHasher
	Tokens              TokenIssuer
	Log                 *logger.Logger
	RequireBearerScheme bool
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	EventLog
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Auth, repos.EventRepo, deps),
		EventLog:      NewEventLogService(repos.EventRepo),
	}
}
