package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingenzi/console-gateway/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestInsertAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	username := "alice"
	entry := &models.AuditLog{
		Username:  &username,
		Action:    models.AuditActionScreenSubmit,
		Resource:  "countries",
		IPAddress: "10.0.0.1",
		UserAgent: "test",
	}
	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)

	// Insert fills in the identifier and timestamp.
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "action", "resource", "resource_id", "details", "ip_address", "user_agent", "created_at"}).
		AddRow("a1", "alice", models.AuditActionLogin, "session", nil, nil, "10.0.0.1", "test", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs ORDER BY created_at DESC LIMIT $1")).
		WithArgs(50).
		WillReturnRows(rows)

	entries, err := repo.ListRecent(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionLogin, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentScopedToUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "action", "resource", "resource_id", "details", "ip_address", "user_agent", "created_at"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs WHERE username = $1 ORDER BY created_at DESC LIMIT $2")).
		WithArgs("bob", 10).
		WillReturnRows(rows)

	entries, err := repo.ListRecent(context.Background(), "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeOlderThan(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	cutoff := time.Now().Add(-90 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM audit_logs").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	affected, err := repo.PurgeOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
