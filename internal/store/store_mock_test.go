package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a gorm handle over a sqlmock connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// The three stats sub-queries must run inside a single transaction so they
// observe one snapshot of the ticket set.
func TestStats_SingleTransaction(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT machines.type AS label, COUNT(tickets.id) AS total`)).
		WillReturnRows(sqlmock.NewRows([]string{"label", "total"}).
			AddRow("Overlock", 3).
			AddRow("Bordadeira", 9))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT machines.asset_tag AS label, COUNT(tickets.id) AS total`)).
		WillReturnRows(sqlmock.NewRows([]string{"label", "total"}).
			AddRow("M-001", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT machines.asset_tag AS asset_tag, tickets.problem AS problem, COUNT(tickets.id) AS total`)).
		WillReturnRows(sqlmock.NewRows([]string{"asset_tag", "problem", "total"}).
			AddRow("M-001", "Agulha quebrada", 2).
			AddRow("M-001", "Barulho estranho", 1))
	mock.ExpectCommit()

	stats, err := s.Stats(context.Background(), TicketFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalsByType["Overlock"])
	assert.NotContains(t, stats.TotalsByType, "Bordadeira")
	assert.Equal(t, int64(3), stats.TotalsByMachine["M-001"])
	require.Len(t, stats.ProblemsByMachine["M-001"], 2)
	assert.Equal(t, int64(2), stats.ProblemsByMachine["M-001"][0].Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// The time window and sector filter must reach every sub-query identically.
func TestStats_FilterReachesAllQueries(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	f := TicketFilter{Year: 2024, Month: 12, Sector: "Costura"}
	start, end, ok := f.Window()
	require.True(t, ok)

	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(`machines.sector = $1`)).
			WithArgs("Costura", start, end).
			WillReturnRows(sqlmock.NewRows([]string{"label", "total"}))
	}
	mock.ExpectCommit()

	_, err := s.Stats(context.Background(), f)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
