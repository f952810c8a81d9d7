package postgres

import (
	"context"
	"fmt"
	"iter"

	"conferencegateway/internal/domain"
)

var sessionWriteColumns = []string{"title", "description", "start_date_time", "end_date_time"}

type sessionRepository struct {
	em        *EntityManager
	mapper    *SessionRowMapper
	converter ColumnConverter
}

// NewSessionRepository returns a domain.SessionRepository implemented with Postgres.
func NewSessionRepository(em *EntityManager, mapper *SessionRowMapper) domain.SessionRepository {
	return &sessionRepository{em: em, mapper: mapper}
}

func (r *sessionRepository) createQuery(page *domain.PaginationParams, criteria domain.Criteria) (string, []any, error) {
	return Select(SessionColumns(sessionTable, EntityAlias)...).
		From(sessionTable).
		Where(criteria).
		Page(page).
		Build()
}

func (r *sessionRepository) process(row Row) (*domain.Session, error) {
	return r.mapper.Map(row, EntityAlias)
}

func (r *sessionRepository) FindAll(ctx context.Context) iter.Seq2[*domain.Session, error] {
	return r.FindAllBy(ctx, nil, nil)
}

func (r *sessionRepository) FindAllBy(ctx context.Context, page *domain.PaginationParams, criteria domain.Criteria) iter.Seq2[*domain.Session, error] {
	query, args, err := r.createQuery(page, criteria)
	if err != nil {
		return failed[*domain.Session](err)
	}
	return queryAll(ctx, r.em, query, args, r.process)
}

func (r *sessionRepository) FindByID(ctx context.Context, id int64) (*domain.Session, error) {
	s, ok, err := first(r.FindAllBy(ctx, nil, domain.IDEquals(id)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *sessionRepository) Count(ctx context.Context, criteria domain.Criteria) (int64, error) {
	query, args, err := Select().From(sessionTable).Where(criteria).BuildCount()
	if err != nil {
		return 0, err
	}
	return r.em.Count(ctx, query, args)
}

func (r *sessionRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := r.Count(ctx, domain.IDEquals(id))
	return n > 0, err
}

func (r *sessionRepository) values(s *domain.Session) []any {
	return []any{
		r.converter.ToColumn(s.Title),
		r.converter.ToColumn(s.Description),
		r.converter.ToColumn(s.StartDateTime),
		r.converter.ToColumn(s.EndDateTime),
	}
}

func (r *sessionRepository) Insert(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.ID != nil {
		return nil, fmt.Errorf("%w: new session cannot already have an id", domain.ErrInvalidInput)
	}
	id, err := r.em.Insert(ctx, sessionTable.Name, sessionWriteColumns, r.values(s))
	if err != nil {
		return nil, err
	}
	s.ID = &id
	return s, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *domain.Session) (int64, error) {
	if s.ID == nil {
		return 0, fmt.Errorf("%w: session id is required for update", domain.ErrInvalidInput)
	}
	return r.em.Update(ctx, sessionTable.Name, sessionWriteColumns, r.values(s), *s.ID)
}

func (r *sessionRepository) Save(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.ID == nil {
		return r.Insert(ctx, s)
	}
	n, err := r.Update(ctx, s)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: unable to update Session with id = %d", domain.ErrStaleUpdate, *s.ID)
	}
	return s, nil
}

// DeleteByID removes the speaker links that reference the session, then the
// session itself, in one transaction.
func (r *sessionRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.em.WithinTx(ctx, func(tx *EntityManager) error {
		if err := tx.DeleteFromLinkTable(ctx, speakerSessionsLink.Inverse(), id); err != nil {
			return err
		}
		n, err := tx.DeleteByID(ctx, sessionTable.Name, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
