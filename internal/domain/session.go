package domain

import (
	"context"
	"iter"
	"time"
)

// Session represents a conference session or talk.
// swagger:model Session
type Session struct {
	ID            *int64    `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	StartDateTime time.Time `json:"start_date_time" validate:"required"`
	EndDateTime   time.Time `json:"end_date_time" validate:"required"`
}

// NewSession returns a new Session with the given fields. ID is set by the repository on insert.
func NewSession(title, description string, startDateTime, endDateTime time.Time) *Session {
	return &Session{
		Title:         title,
		Description:   description,
		StartDateTime: startDateTime,
		EndDateTime:   endDateTime,
	}
}

// GetID returns the identifier or 0 when the session has not been persisted.
func (s *Session) GetID() int64 {
	if s == nil || s.ID == nil {
		return 0
	}
	return *s.ID
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	FindByID(ctx context.Context, id int64) (*Session, error)
	FindAll(ctx context.Context) iter.Seq2[*Session, error]
	FindAllBy(ctx context.Context, page *PaginationParams, criteria Criteria) iter.Seq2[*Session, error]
	Count(ctx context.Context, criteria Criteria) (int64, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, session *Session) (*Session, error)
	Update(ctx context.Context, session *Session) (int64, error)
	Save(ctx context.Context, session *Session) (*Session, error)
	DeleteByID(ctx context.Context, id int64) error
}

// SessionService defines the business logic for managing sessions.
type SessionService interface {
	Create(ctx context.Context, session *Session) (*Session, error)
	Update(ctx context.Context, session *Session) (*Session, error)
	PartialUpdate(ctx context.Context, patch *Session) (*Session, error)
	Get(ctx context.Context, id int64) (*Session, error)
	List(ctx context.Context, page PaginationParams) ([]*Session, int64, error)
	Stream(ctx context.Context, sort []SortOrder) iter.Seq2[*Session, error]
	Delete(ctx context.Context, id int64) error
}
