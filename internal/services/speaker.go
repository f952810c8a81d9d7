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

type speakerService struct {
	speakerRepo    domain.SpeakerRepository
	sessionRepo    domain.SessionRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewSpeakerService(speakerRepo domain.SpeakerRepository, sessionRepo domain.SessionRepository, logger *slog.Logger, timeout time.Duration) domain.SpeakerService {
	return &speakerService{
		speakerRepo:    speakerRepo,
		sessionRepo:    sessionRepo,
		logger:         orDiscard(logger),
		contextTimeout: timeout,
	}
}

func (s *speakerService) Create(ctx context.Context, speaker *domain.Speaker) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if speaker.ID != nil {
		return nil, fmt.Errorf("%w: a new speaker cannot already have an id", domain.ErrInvalidInput)
	}
	if err := validateEntity(speaker); err != nil {
		return nil, err
	}
	saved, err := s.speakerRepo.Save(ctx, speaker)
	if err != nil {
		s.logger.ErrorContext(ctx, "create speaker failed", "error", err)
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return saved, nil
}

func (s *speakerService) Update(ctx context.Context, speaker *domain.Speaker) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if speaker.ID == nil {
		return nil, fmt.Errorf("%w: speaker id is required", domain.ErrInvalidInput)
	}
	if err := validateEntity(speaker); err != nil {
		return nil, err
	}
	exists, err := s.speakerRepo.ExistsByID(ctx, *speaker.ID)
	if err != nil {
		return nil, fmt.Errorf("check speaker: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	saved, err := s.speakerRepo.Save(ctx, speaker)
	if err != nil {
		s.logger.ErrorContext(ctx, "update speaker failed", "speaker_id", *speaker.ID, "error", err)
		return nil, fmt.Errorf("update speaker: %w", err)
	}
	return saved, nil
}

// PartialUpdate copies the non-zero fields of patch onto the stored speaker and
// saves it. A nil Sessions keeps the stored sessions; a non-nil one replaces them.
func (s *speakerService) PartialUpdate(ctx context.Context, patch *domain.Speaker) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.ID == nil {
		return nil, fmt.Errorf("%w: speaker id is required", domain.ErrInvalidInput)
	}
	current, err := s.speakerRepo.FindOneWithEagerRelationships(ctx, *patch.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	if patch.FirstName != "" {
		current.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		current.LastName = patch.LastName
	}
	if patch.Email != "" {
		current.Email = patch.Email
	}
	if patch.Twitter != "" {
		current.Twitter = patch.Twitter
	}
	if patch.Bio != "" {
		current.Bio = patch.Bio
	}
	if patch.Sessions != nil {
		current.Sessions = patch.Sessions
	}
	if err := validateEntity(current); err != nil {
		return nil, err
	}
	saved, err := s.speakerRepo.Save(ctx, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "partial update speaker failed", "speaker_id", *patch.ID, "error", err)
		return nil, fmt.Errorf("update speaker: %w", err)
	}
	return saved, nil
}

// Get returns the speaker with its sessions.
func (s *speakerService) Get(ctx context.Context, id int64) (*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speaker, err := s.speakerRepo.FindOneWithEagerRelationships(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return speaker, nil
}

// List returns one page of speakers and the total number of speakers. With
// eager set every speaker carries its sessions.
func (s *speakerService) List(ctx context.Context, page domain.PaginationParams, eager bool) ([]*domain.Speaker, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var speakers []*domain.Speaker
	if eager {
		var err error
		speakers, err = s.speakerRepo.FindAllWithEagerRelationships(ctx, &page)
		if err != nil {
			return nil, 0, fmt.Errorf("list speakers: %w", err)
		}
	} else {
		speakers = []*domain.Speaker{}
		for speaker, err := range s.speakerRepo.FindAllBy(ctx, &page, nil) {
			if err != nil {
				return nil, 0, fmt.Errorf("list speakers: %w", err)
			}
			speakers = append(speakers, speaker)
		}
	}
	total, err := s.speakerRepo.Count(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("count speakers: %w", err)
	}
	return speakers, total, nil
}

// ListBySession returns the speakers of a session. The session must exist.
func (s *speakerService) ListBySession(ctx context.Context, sessionID int64) ([]*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	exists, err := s.sessionRepo.ExistsByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	speakers := []*domain.Speaker{}
	for speaker, err := range s.speakerRepo.FindBySessions(ctx, sessionID) {
		if err != nil {
			return nil, fmt.Errorf("list speakers of session: %w", err)
		}
		speakers = append(speakers, speaker)
	}
	return speakers, nil
}

// Stream yields every speaker in sort order, without sessions.
func (s *speakerService) Stream(ctx context.Context, sort []domain.SortOrder) iter.Seq2[*domain.Speaker, error] {
	return func(yield func(*domain.Speaker, error) bool) {
		ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()

		for speaker, err := range s.speakerRepo.FindAllBy(ctx, &domain.PaginationParams{Sort: sort}, nil) {
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidCriteria) {
					s.logger.ErrorContext(ctx, "stream speakers failed", "error", err)
				}
				yield(nil, fmt.Errorf("stream speakers: %w", err))
				return
			}
			if !yield(speaker, nil) {
				return
			}
		}
	}
}

func (s *speakerService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.speakerRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "delete speaker failed", "speaker_id", id, "error", err)
		return fmt.Errorf("delete speaker: %w", err)
	}
	return nil
}
