package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/csvboard/internal/model"
)

func fileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "filename", "size", "created_at"})
}

func TestFileRepo_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO files (id,user_id,filename,size,created_at) VALUES (?,?,?,?,?) ON DUPLICATE KEY UPDATE")).
		WithArgs("f-new", "u1", "data.csv", int64(12), now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id=? AND filename=?")).
		WithArgs("u1", "data.csv").
		WillReturnRows(fileRows().AddRow("f-old", "u1", "data.csv", 12, now))

	got, err := repo.Upsert(context.Background(), model.FileRecord{ID: "f-new", OwnerID: "u1", Filename: "data.csv", Size: 12, CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, "f-old", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepo_ListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)
	t1 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM files WHERE user_id=? ORDER BY created_at DESC")).
		WithArgs("u1").
		WillReturnRows(fileRows().
			AddRow("f2", "u1", "b.csv", 2, t2).
			AddRow("f1", "u1", "a.csv", 1, t1))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b.csv", got[0].Filename)
	assert.Equal(t, "a.csv", got[1].Filename)
}

func TestFileRepo_ListByOwner_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	mock.ExpectQuery(`FROM files WHERE user_id=\?`).WithArgs("u1").WillReturnRows(fileRows())

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	mock.ExpectQuery(`FROM files WHERE id=\?`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepo_DeleteByOwnerAndName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM files WHERE user_id=? AND filename=?")).
		WithArgs("u1", "a.csv").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM files WHERE user_id=? AND filename=?")).
		WithArgs("u2", "a.csv").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteByOwnerAndName(context.Background(), "u1", "a.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DeleteByOwnerAndName(context.Background(), "u2", "a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRepo_CountByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM files WHERE user_id=?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
