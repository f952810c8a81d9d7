package postgres

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	selectSessions = `SELECT e.id AS e_id, e.title AS e_title, e.description AS e_description, ` +
		`e.start_date_time AS e_start_date_time, e.end_date_time AS e_end_date_time FROM session e`
	selectSpeakers = `SELECT e.id AS e_id, e.first_name AS e_first_name, e.last_name AS e_last_name, ` +
		`e.email AS e_email, e.twitter AS e_twitter, e.bio AS e_bio FROM speaker e`
	deleteSpeakerLinks = `DELETE FROM rel_speaker__sessions WHERE speaker_id = $1`
	insertSpeakerLinks = `INSERT INTO rel_speaker__sessions (speaker_id, sessions_id) SELECT $1, UNNEST($2::bigint[])`
)

var (
	sessionCols = []string{"e_id", "e_title", "e_description", "e_start_date_time", "e_end_date_time"}
	speakerCols = []string{"e_id", "e_first_name", "e_last_name", "e_email", "e_twitter", "e_bio"}

	keynoteStart = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	keynoteEnd   = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
)

func q(s string) string {
	return "^" + regexp.QuoteMeta(s) + "$"
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *EntityManager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock, NewEntityManager(db, nil, nil)
}

func int64Ptr(v int64) *int64 {
	return &v
}
