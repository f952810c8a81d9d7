package services

import (
	"context"
	"iter"
	"slices"

	"conferencegateway/internal/domain"
)

// fakeSessionRepo is an in-memory SessionRepository for tests.
type fakeSessionRepo struct {
	byID    map[int64]*domain.Session
	nextID  int64
	saveErr error // if set, Save returns this error
	listErr error // if set, list sequences yield this error
	saved   []*domain.Session
}

func newFakeSessionRepo(sessions ...*domain.Session) *fakeSessionRepo {
	f := &fakeSessionRepo{byID: make(map[int64]*domain.Session), nextID: 1}
	for _, s := range sessions {
		f.put(s)
	}
	return f
}

func (f *fakeSessionRepo) put(s *domain.Session) {
	if s.ID == nil {
		id := f.nextID
		s.ID = &id
	}
	if *s.ID >= f.nextID {
		f.nextID = *s.ID + 1
	}
	cp := *s
	f.byID[*s.ID] = &cp
}

func (f *fakeSessionRepo) ids() []int64 {
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id int64) (*domain.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) FindAll(ctx context.Context) iter.Seq2[*domain.Session, error] {
	return f.FindAllBy(ctx, nil, nil)
}

func (f *fakeSessionRepo) FindAllBy(ctx context.Context, page *domain.PaginationParams, criteria domain.Criteria) iter.Seq2[*domain.Session, error] {
	return func(yield func(*domain.Session, error) bool) {
		if f.listErr != nil {
			yield(nil, f.listErr)
			return
		}
		ids := f.ids()
		if page != nil && page.PageSize > 0 {
			ids = paginate(ids, page)
		}
		for _, id := range ids {
			cp := *f.byID[id]
			if !yield(&cp, nil) {
				return
			}
		}
	}
}

func (f *fakeSessionRepo) Count(ctx context.Context, criteria domain.Criteria) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeSessionRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeSessionRepo) Insert(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	f.put(s)
	return s, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *domain.Session) (int64, error) {
	if _, ok := f.byID[*s.ID]; !ok {
		return 0, nil
	}
	f.put(s)
	return 1, nil
}

func (f *fakeSessionRepo) Save(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, s)
	if s.ID == nil {
		return f.Insert(ctx, s)
	}
	if n, _ := f.Update(ctx, s); n == 0 {
		return nil, domain.ErrStaleUpdate
	}
	return s, nil
}

func (f *fakeSessionRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeSpeakerRepo is an in-memory SpeakerRepository for tests. Links are kept
// as session ids per speaker.
type fakeSpeakerRepo struct {
	byID     map[int64]*domain.Speaker
	links    map[int64][]int64
	sessions *fakeSessionRepo
	nextID   int64
	listErr  error // if set, list sequences yield this error
}

func newFakeSpeakerRepo(sessions *fakeSessionRepo) *fakeSpeakerRepo {
	return &fakeSpeakerRepo{
		byID:     make(map[int64]*domain.Speaker),
		links:    make(map[int64][]int64),
		sessions: sessions,
		nextID:   1,
	}
}

func (f *fakeSpeakerRepo) scalar(id int64) *domain.Speaker {
	cp := *f.byID[id]
	cp.Sessions = []*domain.Session{}
	return &cp
}

func (f *fakeSpeakerRepo) eager(id int64) *domain.Speaker {
	s := f.scalar(id)
	for _, sid := range f.links[id] {
		if sess, err := f.sessions.FindByID(context.Background(), sid); err == nil {
			s.Sessions = append(s.Sessions, sess)
		}
	}
	return s
}

func (f *fakeSpeakerRepo) ids() []int64 {
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeSpeakerRepo) FindByID(ctx context.Context, id int64) (*domain.Speaker, error) {
	if _, ok := f.byID[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return f.scalar(id), nil
}

func (f *fakeSpeakerRepo) FindOneWithEagerRelationships(ctx context.Context, id int64) (*domain.Speaker, error) {
	if _, ok := f.byID[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return f.eager(id), nil
}

func (f *fakeSpeakerRepo) FindAll(ctx context.Context) iter.Seq2[*domain.Speaker, error] {
	return f.FindAllBy(ctx, nil, nil)
}

func (f *fakeSpeakerRepo) FindAllBy(ctx context.Context, page *domain.PaginationParams, criteria domain.Criteria) iter.Seq2[*domain.Speaker, error] {
	return func(yield func(*domain.Speaker, error) bool) {
		if f.listErr != nil {
			yield(nil, f.listErr)
			return
		}
		ids := f.ids()
		if page != nil && page.PageSize > 0 {
			ids = paginate(ids, page)
		}
		for _, id := range ids {
			if !yield(f.scalar(id), nil) {
				return
			}
		}
	}
}

func (f *fakeSpeakerRepo) FindAllWithEagerRelationships(ctx context.Context, page *domain.PaginationParams) ([]*domain.Speaker, error) {
	out := []*domain.Speaker{}
	for s, err := range f.FindAllBy(ctx, page, nil) {
		if err != nil {
			return nil, err
		}
		out = append(out, f.eager(*s.ID))
	}
	return out, nil
}

func (f *fakeSpeakerRepo) FindBySessions(ctx context.Context, sessionID int64) iter.Seq2[*domain.Speaker, error] {
	return func(yield func(*domain.Speaker, error) bool) {
		for _, id := range f.ids() {
			if slices.Contains(f.links[id], sessionID) {
				if !yield(f.scalar(id), nil) {
					return
				}
			}
		}
	}
}

func (f *fakeSpeakerRepo) Count(ctx context.Context, criteria domain.Criteria) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeSpeakerRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeSpeakerRepo) Insert(ctx context.Context, s *domain.Speaker) (*domain.Speaker, error) {
	id := f.nextID
	f.nextID++
	s.ID = &id
	cp := *s
	f.byID[id] = &cp
	return s, nil
}

func (f *fakeSpeakerRepo) Update(ctx context.Context, s *domain.Speaker) (int64, error) {
	if _, ok := f.byID[*s.ID]; !ok {
		return 0, nil
	}
	cp := *s
	f.byID[*s.ID] = &cp
	return 1, nil
}

func (f *fakeSpeakerRepo) Save(ctx context.Context, s *domain.Speaker) (*domain.Speaker, error) {
	if s.ID == nil {
		f.Insert(ctx, s)
	} else if n, _ := f.Update(ctx, s); n == 0 {
		return nil, domain.ErrStaleUpdate
	}
	f.links[*s.ID] = s.SessionIDs()
	return s, nil
}

func (f *fakeSpeakerRepo) DeleteByID(ctx context.Context, id int64) error {
	delete(f.links, id)
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func paginate(ids []int64, page *domain.PaginationParams) []int64 {
	start := min(page.Offset(), len(ids))
	end := min(start+page.PageSize, len(ids))
	return ids[start:end]
}
