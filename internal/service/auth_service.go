package service

import (
	"context"
	"errors"
	"strings"

	"auth_service/internal/logger"
	"auth_service/internal/models"
	"auth_service/internal/repository"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AuthService handles user auth logic
type AuthService struct {
	authRepo      repository.Authorization
	events        repository.EventRepo
	hasher        PasswordHasher
	tokens        TokenIssuer
	log           *logger.Logger
	requireBearer bool
}

func NewAuthService(authRepo repository.Authorization, events repository.EventRepo, deps Deps) *AuthService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		authRepo:      authRepo,
		events:        events,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		log:           log,
		requireBearer: deps.RequireBearerScheme,
	}
}

var _ Authorization = (*AuthService)(nil)

// Register validates input, stores a hashed credential and returns the public record with a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return models.AuthResult{}, newError(KindValidation, MsgFieldsRequired, nil)
	}
	if !validEmail(email) {
		return models.AuthResult{}, newError(KindValidation, MsgInvalidEmail, nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.AuthResult{}, internalError("hash password", err)
	}

	u := models.User{Username: username, Email: email, PasswordHash: hash}
	u.ID, err = s.authRepo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.record(ctx, models.AuthEvent{Type: models.EventRegisterFailed, Username: username, Description: MsgUsernameTaken})
			return models.AuthResult{}, newError(KindDuplicateUser, MsgUsernameTaken, err)
		}
		return models.AuthResult{}, internalError("create user", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.AuthResult{}, internalError("issue token", err)
	}

	s.record(ctx, models.AuthEvent{Type: models.EventRegister, Username: username, UserID: u.ID, Description: "user registered"})
	return u.Public(token), nil
}

// Login checks credentials and returns the public record with a fresh token.
// Unknown username and wrong password share a Kind but keep distinct messages.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.AuthResult, error) {
	username = strings.TrimSpace(username)
	u, err := s.authRepo.GetByUsername(ctx, username)
	if err != nil {
		return models.AuthResult{}, internalError("lookup user", err)
	}
	if u == nil {
		s.record(ctx, models.AuthEvent{Type: models.EventLoginFailed, Username: username, Description: "unknown username"})
		return models.AuthResult{}, newError(KindAuthentication, MsgInvalidUsername, nil)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return models.AuthResult{}, internalError("verify password", err)
	}
	if !ok {
		s.record(ctx, models.AuthEvent{Type: models.EventLoginFailed, Username: username, UserID: u.ID, Description: "password mismatch"})
		return models.AuthResult{}, newError(KindAuthentication, MsgIncorrectPassword, nil)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.AuthResult{}, internalError("issue token", err)
	}

	s.record(ctx, models.AuthEvent{Type: models.EventLogin, Username: u.Username, UserID: u.ID, Description: "login succeeded"})
	return u.Public(token), nil
}

// Authorize splits the header on its first space and verifies what follows.
// The scheme word is only checked when requireBearer is set.
func (s *AuthService) Authorize(header string) (int, error) {
	if header == "" {
		return 0, newError(KindAuthorization, MsgUnauthorized, errors.New("missing Authorization header"))
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return 0, newError(KindAuthorization, MsgUnauthorized, errors.New("invalid Authorization header format"))
	}
	if s.requireBearer && !strings.EqualFold(scheme, "Bearer") {
		return 0, newError(KindAuthorization, MsgUnauthorized, errors.New("unsupported authorization scheme"))
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		return 0, newError(KindAuthorization, MsgUnauthorized, err)
	}
	return userID, nil
}

// record appends to the audit log; a failed write is logged and otherwise ignored.
func (s *AuthService) record(ctx context.Context, e models.AuthEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Warnw("auth_audit_append_failed", "type", e.Type, "username", e.Username, "err", err)
	}
}

func validEmail(email string) bool {
	return validate.Var(email, "email") == nil
}
