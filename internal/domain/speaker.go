package domain

import (
	"context"
	"iter"
)

// Speaker represents a conference speaker. Speaker owns the speaker/session relation.
// swagger:model Speaker
type Speaker struct {
	ID        *int64     `json:"id"`
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Twitter   string     `json:"twitter" validate:"required"`
	Bio       string     `json:"bio" validate:"required"`
	Sessions  []*Session `json:"sessions"`
}

// NewSpeaker returns a new Speaker with no sessions. ID is set by the repository on insert.
func NewSpeaker(firstName, lastName, email, twitter, bio string) *Speaker {
	return &Speaker{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Twitter:   twitter,
		Bio:       bio,
		Sessions:  []*Session{},
	}
}

// GetID returns the identifier or 0 when the speaker has not been persisted.
func (s *Speaker) GetID() int64 {
	if s == nil || s.ID == nil {
		return 0
	}
	return *s.ID
}

// SessionIDs returns the identifiers of the related sessions, skipping unsaved ones.
func (s *Speaker) SessionIDs() []int64 {
	ids := make([]int64, 0, len(s.Sessions))
	for _, sess := range s.Sessions {
		if sess != nil && sess.ID != nil {
			ids = append(ids, *sess.ID)
		}
	}
	return ids
}

// SpeakerRepository defines the interface for speaker storage, including the
// rel_speaker__sessions link table.
type SpeakerRepository interface {
	FindByID(ctx context.Context, id int64) (*Speaker, error)
	FindOneWithEagerRelationships(ctx context.Context, id int64) (*Speaker, error)
	FindAll(ctx context.Context) iter.Seq2[*Speaker, error]
	FindAllBy(ctx context.Context, page *PaginationParams, criteria Criteria) iter.Seq2[*Speaker, error]
	FindAllWithEagerRelationships(ctx context.Context, page *PaginationParams) ([]*Speaker, error)
	FindBySessions(ctx context.Context, sessionID int64) iter.Seq2[*Speaker, error]
	Count(ctx context.Context, criteria Criteria) (int64, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Insert(ctx context.Context, speaker *Speaker) (*Speaker, error)
	Update(ctx context.Context, speaker *Speaker) (int64, error)
	Save(ctx context.Context, speaker *Speaker) (*Speaker, error)
	DeleteByID(ctx context.Context, id int64) error
}

// SpeakerService defines the business logic for managing speakers.
type SpeakerService interface {
	Create(ctx context.Context, speaker *Speaker) (*Speaker, error)
	Update(ctx context.Context, speaker *Speaker) (*Speaker, error)
	PartialUpdate(ctx context.Context, patch *Speaker) (*Speaker, error)
	Get(ctx context.Context, id int64) (*Speaker, error)
	List(ctx context.Context, page PaginationParams, eager bool) ([]*Speaker, int64, error)
	ListBySession(ctx context.Context, sessionID int64) ([]*Speaker, error)
	Stream(ctx context.Context, sort []SortOrder) iter.Seq2[*Speaker, error]
	Delete(ctx context.Context, id int64) error
}
