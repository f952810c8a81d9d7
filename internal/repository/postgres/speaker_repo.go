package postgres

import (
	"context"
	"fmt"
	"iter"

	"conferencegateway/internal/domain"
)

var speakerWriteColumns = []string{"first_name", "last_name", "email", "twitter", "bio"}

// linkAlias is the alias of rel_speaker__sessions in join queries.
const linkAlias = "j"

type speakerRepository struct {
	em            *EntityManager
	mapper        *SpeakerRowMapper
	sessionMapper *SessionRowMapper
	converter     ColumnConverter
}

// NewSpeakerRepository returns a domain.SpeakerRepository implemented with Postgres.
// sessionMapper is used when sessions are loaded eagerly.
func NewSpeakerRepository(em *EntityManager, mapper *SpeakerRowMapper, sessionMapper *SessionRowMapper) domain.SpeakerRepository {
	return &speakerRepository{em: em, mapper: mapper, sessionMapper: sessionMapper}
}

func (r *speakerRepository) createQuery(page *domain.PaginationParams, criteria domain.Criteria) (string, []any, error) {
	return Select(SpeakerColumns(speakerTable, EntityAlias)...).
		From(speakerTable).
		Where(criteria).
		Page(page).
		Build()
}

func (r *speakerRepository) process(row Row) (*domain.Speaker, error) {
	return r.mapper.Map(row, EntityAlias)
}

func (r *speakerRepository) FindAll(ctx context.Context) iter.Seq2[*domain.Speaker, error] {
	return r.FindAllBy(ctx, nil, nil)
}

func (r *speakerRepository) FindAllBy(ctx context.Context, page *domain.PaginationParams, criteria domain.Criteria) iter.Seq2[*domain.Speaker, error] {
	query, args, err := r.createQuery(page, criteria)
	if err != nil {
		return failed[*domain.Speaker](err)
	}
	return queryAll(ctx, r.em, query, args, r.process)
}

func (r *speakerRepository) FindByID(ctx context.Context, id int64) (*domain.Speaker, error) {
	s, ok, err := first(r.FindAllBy(ctx, nil, domain.IDEquals(id)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// FindBySessions returns every speaker linked to the session through rel_speaker__sessions.
func (r *speakerRepository) FindBySessions(ctx context.Context, sessionID int64) iter.Seq2[*domain.Speaker, error] {
	link := speakerSessionsLink.Table(linkAlias)
	query, args, err := Select(SpeakerColumns(speakerTable, EntityAlias)...).
		From(speakerTable).
		Join(link, "id", speakerSessionsLink.OwnerColumn).
		Where(domain.Where(linkAlias+"."+speakerSessionsLink.RelatedColumn, domain.OpEq, sessionID)).
		Build()
	if err != nil {
		return failed[*domain.Speaker](err)
	}
	return queryAll(ctx, r.em, query, args, r.process)
}

func (r *speakerRepository) FindOneWithEagerRelationships(ctx context.Context, id int64) (*domain.Speaker, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadSessions(ctx, []*domain.Speaker{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *speakerRepository) FindAllWithEagerRelationships(ctx context.Context, page *domain.PaginationParams) ([]*domain.Speaker, error) {
	speakers := []*domain.Speaker{}
	for s, err := range r.FindAllBy(ctx, page, nil) {
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, s)
	}
	if err := r.loadSessions(ctx, speakers); err != nil {
		return nil, err
	}
	return speakers, nil
}

type linkedSession struct {
	speakerID int64
	session   *domain.Session
}

// loadSessions fills Sessions of every speaker with one join query over the link table.
func (r *speakerRepository) loadSessions(ctx context.Context, speakers []*domain.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Speaker, len(speakers))
	ids := make([]int64, 0, len(speakers))
	for _, s := range speakers {
		s.Sessions = []*domain.Session{}
		byID[s.GetID()] = s
		ids = append(ids, s.GetID())
	}

	link := speakerSessionsLink.Table(linkAlias)
	ownerRef := linkAlias + "." + speakerSessionsLink.OwnerColumn
	cols := append(SessionColumns(sessionTable, EntityAlias),
		Column{Table: link, Name: speakerSessionsLink.OwnerColumn, Alias: linkAlias + "_" + speakerSessionsLink.OwnerColumn})
	query, args, err := Select(cols...).
		From(sessionTable).
		Join(link, "id", speakerSessionsLink.RelatedColumn).
		Where(domain.Where(ownerRef, domain.OpIn, ids)).
		Build()
	if err != nil {
		return err
	}

	mapLinked := func(row Row) (linkedSession, error) {
		owner, err := r.converter.Int64(row, linkAlias+"_"+speakerSessionsLink.OwnerColumn)
		if err != nil {
			return linkedSession{}, err
		}
		sess, err := r.sessionMapper.Map(row, EntityAlias)
		if err != nil {
			return linkedSession{}, err
		}
		var ownerID int64
		if owner != nil {
			ownerID = *owner
		}
		return linkedSession{speakerID: ownerID, session: sess}, nil
	}
	for ls, err := range queryAll(ctx, r.em, query, args, mapLinked) {
		if err != nil {
			return err
		}
		if s, ok := byID[ls.speakerID]; ok {
			s.Sessions = append(s.Sessions, ls.session)
		}
	}
	return nil
}

func (r *speakerRepository) Count(ctx context.Context, criteria domain.Criteria) (int64, error) {
	query, args, err := Select().From(speakerTable).Where(criteria).BuildCount()
	if err != nil {
		return 0, err
	}
	return r.em.Count(ctx, query, args)
}

func (r *speakerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := r.Count(ctx, domain.IDEquals(id))
	return n > 0, err
}

func (r *speakerRepository) values(s *domain.Speaker) []any {
	return []any{
		r.converter.ToColumn(s.FirstName),
		r.converter.ToColumn(s.LastName),
		r.converter.ToColumn(s.Email),
		r.converter.ToColumn(s.Twitter),
		r.converter.ToColumn(s.Bio),
	}
}

func (r *speakerRepository) Insert(ctx context.Context, s *domain.Speaker) (*domain.Speaker, error) {
	if s.ID != nil {
		return nil, fmt.Errorf("%w: new speaker cannot already have an id", domain.ErrInvalidInput)
	}
	id, err := r.em.Insert(ctx, speakerTable.Name, speakerWriteColumns, r.values(s))
	if err != nil {
		return nil, err
	}
	s.ID = &id
	return s, nil
}

func (r *speakerRepository) Update(ctx context.Context, s *domain.Speaker) (int64, error) {
	if s.ID == nil {
		return 0, fmt.Errorf("%w: speaker id is required for update", domain.ErrInvalidInput)
	}
	return r.em.Update(ctx, speakerTable.Name, speakerWriteColumns, r.values(s), *s.ID)
}

// Save inserts or updates the scalar row, then rewrites the speaker's link rows
// to match s.Sessions, all in one transaction. s.ID is only assigned once the
// transaction has committed.
func (r *speakerRepository) Save(ctx context.Context, s *domain.Speaker) (*domain.Speaker, error) {
	var id int64
	err := r.em.WithinTx(ctx, func(tx *EntityManager) error {
		if s.ID == nil {
			var err error
			if id, err = tx.Insert(ctx, speakerTable.Name, speakerWriteColumns, r.values(s)); err != nil {
				return err
			}
		} else {
			id = *s.ID
			n, err := tx.Update(ctx, speakerTable.Name, speakerWriteColumns, r.values(s), id)
			if err != nil {
				return err
			}
			if n <= 0 {
				return fmt.Errorf("%w: unable to update Speaker with id = %d", domain.ErrStaleUpdate, id)
			}
		}
		if err := tx.UpdateLinkTable(ctx, speakerSessionsLink, id, s.SessionIDs()); err != nil {
			return fmt.Errorf("update sessions of speaker %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ID = &id
	return s, nil
}

// DeleteByID clears the speaker's link rows and then deletes the speaker row,
// in one transaction.
func (r *speakerRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.em.WithinTx(ctx, func(tx *EntityManager) error {
		if err := tx.DeleteFromLinkTable(ctx, speakerSessionsLink, id); err != nil {
			return err
		}
		n, err := tx.DeleteByID(ctx, speakerTable.Name, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
