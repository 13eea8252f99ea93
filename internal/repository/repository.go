package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auth_service/internal/models"
)

// ErrDuplicateUsername is returned by Create when the username is already taken.
var ErrDuplicateUsername = errors.New("username already exists")

// Authorization persists credential records.
type Authorization interface {
	// Create inserts u and returns the assigned id.
	Create(ctx context.Context, u models.User) (int, error)
	// GetByUsername returns (nil, nil) when no record matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EventRepo is the append-only audit log of authentication attempts.
type EventRepo interface {
	Append(ctx context.Context, e models.AuthEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AuthEvent, error)
}

type Repository struct {
	Auth      Authorization
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Auth:      NewUserRepository(db),
		EventRepo: NewEventSQLite(db),
	}
}
