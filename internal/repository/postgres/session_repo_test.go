package postgres

import (
	"context"
	"database/sql"
	"testing"

	"conferencegateway/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertSession = `INSERT INTO session (title, description, start_date_time, end_date_time) VALUES ($1, $2, $3, $4) RETURNING id`
	updateSession = `UPDATE session SET title = $1, description = $2, start_date_time = $3, end_date_time = $4 WHERE id = $5`
)

func newSessionRepo(em *EntityManager) domain.SessionRepository {
	return NewSessionRepository(em, NewSessionRowMapper(ColumnConverter{}))
}

func keynote() *domain.Session {
	return domain.NewSession("Keynote", "Opening", keynoteStart, keynoteEnd)
}

func TestSessionRepository_FindByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Session
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(selectSessions + ` WHERE e.id = $1`)).
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(int64(1), "Keynote", "Opening", keynoteStart, keynoteEnd))
			},
			want: &domain.Session{ID: int64Ptr(1), Title: "Keynote", Description: "Opening", StartDateTime: keynoteStart, EndDateTime: keynoteEnd},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(selectSessions + ` WHERE e.id = $1`)).
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(sessionCols))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, em := newMock(t)
			tt.mock(mock)
			repo := newSessionRepo(em)

			got, err := repo.FindByID(ctx, 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_FindAllBy(t *testing.T) {
	ctx := context.Background()
	_, mock, em := newMock(t)
	repo := newSessionRepo(em)

	mock.ExpectQuery(q(selectSessions + ` WHERE e.title LIKE $1 ORDER BY e.start_date_time ASC LIMIT 2 OFFSET 2`)).
		WithArgs("%Talk%").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(3), "Talk 3", "c", keynoteStart, keynoteEnd).
			AddRow(int64(4), "Talk 4", nil, keynoteStart, keynoteEnd))

	page := &domain.PaginationParams{Page: 2, PageSize: 2, Sort: []domain.SortOrder{{Column: "start_date_time", Direction: domain.SortAsc}}}
	var titles []string
	for s, err := range repo.FindAllBy(ctx, page, domain.Where("title", domain.OpLike, "%Talk%")) {
		require.NoError(t, err)
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Talk 3", "Talk 4"}, titles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindAllBy_InvalidCriteria(t *testing.T) {
	_, mock, em := newMock(t)
	repo := newSessionRepo(em)

	var gotErr error
	for _, err := range repo.FindAllBy(context.Background(), nil, domain.Where("password", domain.OpEq, "x")) {
		gotErr = err
	}
	require.ErrorIs(t, gotErr, domain.ErrInvalidCriteria)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		session func() *domain.Session
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name:    "insert assigns id",
			session: keynote,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(insertSession)).
					WithArgs("Keynote", "Opening", keynoteStart, keynoteEnd).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
			},
			wantID: 21,
		},
		{
			name: "insert with missing title is rejected by storage",
			session: func() *domain.Session {
				s := keynote()
				s.Title = ""
				return s
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(insertSession)).
					WithArgs(nil, "Opening", keynoteStart, keynoteEnd).
					WillReturnError(&pq.Error{Code: "23502"})
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "update existing row",
			session: func() *domain.Session {
				s := keynote()
				s.ID = int64Ptr(21)
				s.Title = "Closing"
				return s
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(q(updateSession)).
					WithArgs("Closing", "Opening", keynoteStart, keynoteEnd, int64(21)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantID: 21,
		},
		{
			name: "update of unknown id is a stale update",
			session: func() *domain.Session {
				s := keynote()
				s.ID = int64Ptr(999)
				return s
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(q(updateSession)).
					WithArgs("Keynote", "Opening", keynoteStart, keynoteEnd, int64(999)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrStaleUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, em := newMock(t)
			tt.mock(mock)
			repo := newSessionRepo(em)

			got, err := repo.Save(ctx, tt.session())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got.ID)
			assert.Equal(t, tt.wantID, *got.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_StaleUpdateIsNotNotFound(t *testing.T) {
	_, mock, em := newMock(t)
	mock.ExpectExec(q(updateSession)).WillReturnResult(sqlmock.NewResult(0, 0))

	s := keynote()
	s.ID = int64Ptr(5)
	_, err := newSessionRepo(em).Save(context.Background(), s)
	require.ErrorIs(t, err, domain.ErrStaleUpdate)
	require.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepository_Insert_RejectsPresetID(t *testing.T) {
	_, mock, em := newMock(t)
	s := keynote()
	s.ID = int64Ptr(1)

	_, err := newSessionRepo(em).Insert(context.Background(), s)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	const unlink = `DELETE FROM rel_speaker__sessions WHERE sessions_id = $1`

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(q(unlink)).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(q(`DELETE FROM session WHERE id = $1`)).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(q(unlink)).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(q(`DELETE FROM session WHERE id = $1`)).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "unlink failure stops the delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(q(unlink)).WithArgs(int64(4)).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
		{
			name: "row delete failure keeps the links",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(q(unlink)).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(q(`DELETE FROM session WHERE id = $1`)).WithArgs(int64(4)).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mock, em := newMock(t)
			tt.mock(mock)

			err := newSessionRepo(em).DeleteByID(ctx, 4)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_CountAndExists(t *testing.T) {
	ctx := context.Background()
	_, mock, em := newMock(t)
	repo := newSessionRepo(em)

	mock.ExpectQuery(q(`SELECT COUNT(*) FROM session e`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(q(`SELECT COUNT(*) FROM session e WHERE e.id = $1`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	exists, err := repo.ExistsByID(ctx, 8)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Inserting one session grows the findAll sequence by exactly one.
func TestSessionRepository_InsertGrowsFindAll(t *testing.T) {
	ctx := context.Background()
	_, mock, em := newMock(t)
	repo := newSessionRepo(em)

	mock.ExpectQuery(q(selectSessions)).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(int64(1), "Panel", "d", keynoteStart, keynoteEnd))
	mock.ExpectQuery(q(insertSession)).
		WithArgs("Keynote", "Opening", keynoteStart, keynoteEnd).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectQuery(q(selectSessions)).
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(int64(1), "Panel", "d", keynoteStart, keynoteEnd).
			AddRow(int64(2), "Keynote", "Opening", keynoteStart, keynoteEnd))

	count := func() int {
		n := 0
		for _, err := range repo.FindAll(ctx) {
			require.NoError(t, err)
			n++
		}
		return n
	}

	before := count()
	saved, err := repo.Save(ctx, keynote())
	require.NoError(t, err)
	assert.Equal(t, int64(2), *saved.ID)
	assert.Equal(t, "Keynote", saved.Title)
	assert.Equal(t, "Opening", saved.Description)
	assert.True(t, keynoteStart.Equal(saved.StartDateTime))
	assert.True(t, keynoteEnd.Equal(saved.EndDateTime))
	assert.Equal(t, before+1, count())
	require.NoError(t, mock.ExpectationsWereMet())
}
