package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"conferencegateway/internal/domain"
)

type sessionService struct {
	sessionRepo    domain.SessionRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewSessionService(sessionRepo domain.SessionRepository, logger *slog.Logger, timeout time.Duration) domain.SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		logger:         orDiscard(logger),
		contextTimeout: timeout,
	}
}

func (s *sessionService) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if session.ID != nil {
		return nil, fmt.Errorf("%w: a new session cannot already have an id", domain.ErrInvalidInput)
	}
	if err := validateEntity(session); err != nil {
		return nil, err
	}
	saved, err := s.sessionRepo.Save(ctx, session)
	if err != nil {
		s.logger.ErrorContext(ctx, "create session failed", "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}
	return saved, nil
}

func (s *sessionService) Update(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if session.ID == nil {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	if err := validateEntity(session); err != nil {
		return nil, err
	}
	exists, err := s.sessionRepo.ExistsByID(ctx, *session.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	saved, err := s.sessionRepo.Save(ctx, session)
	if err != nil {
		s.logger.ErrorContext(ctx, "update session failed", "session_id", *session.ID, "error", err)
		return nil, fmt.Errorf("update session: %w", err)
	}
	return saved, nil
}

// PartialUpdate copies the non-zero fields of patch onto the stored session and saves it.
func (s *sessionService) PartialUpdate(ctx context.Context, patch *domain.Session) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.ID == nil {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	current, err := s.sessionRepo.FindByID(ctx, *patch.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if patch.Title != "" {
		current.Title = patch.Title
	}
	if patch.Description != "" {
		current.Description = patch.Description
	}
	if !patch.StartDateTime.IsZero() {
		current.StartDateTime = patch.StartDateTime
	}
	if !patch.EndDateTime.IsZero() {
		current.EndDateTime = patch.EndDateTime
	}
	if err := validateEntity(current); err != nil {
		return nil, err
	}
	saved, err := s.sessionRepo.Save(ctx, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "partial update session failed", "session_id", *patch.ID, "error", err)
		return nil, fmt.Errorf("update session: %w", err)
	}
	return saved, nil
}

func (s *sessionService) Get(ctx context.Context, id int64) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// List returns one page of sessions and the total number of sessions.
func (s *sessionService) List(ctx context.Context, page domain.PaginationParams) ([]*domain.Session, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions := []*domain.Session{}
	for session, err := range s.sessionRepo.FindAllBy(ctx, &page, nil) {
		if err != nil {
			return nil, 0, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	total, err := s.sessionRepo.Count(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// Stream yields every session in sort order without materializing the list.
// Rows are read as the consumer pulls them.
func (s *sessionService) Stream(ctx context.Context, sort []domain.SortOrder) iter.Seq2[*domain.Session, error] {
	return func(yield func(*domain.Session, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()

		for session, err := range s.sessionRepo.FindAllBy(ctx, &domain.PaginationParams{Sort: sort}, nil) {
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidCriteria) {
					s.logger.ErrorContext(ctx, "stream sessions failed", "error", err)
				}
				yield(nil, fmt.Errorf("stream sessions: %w", err))
				return
			}
			if !yield(session, nil) {
				return
			}
		}
	}
}

func (s *sessionService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.sessionRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "delete session failed", "session_id", id, "error", err)
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
