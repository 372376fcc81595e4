package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/storage"
)

func TestDelete_NonOwnerCannotDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")
	b := f.mustRegister(t, "bob", "pw")

	_, _, err := f.upload.AcceptUpload(ctx, a, []byte("x,y\n1,2\n"), "f.csv")
	require.NoError(t, err)

	assert.ErrorIs(t, f.files.Delete(ctx, b, "f.csv"), ErrNotFound)

	list, err := f.files.ListForOwner(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "f.csv", list[0].Filename)

	assert.ErrorIs(t, f.files.DeleteByID(ctx, b, list[0].ID), ErrForbidden)
	list, err = f.files.ListForOwner(ctx, a)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.blobs.Get(ctx, storage.FileKey(a, "f.csv"))
	assert.NoError(t, err)
}

func TestDelete_OwnerRemovesRecordAndBytes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")
	_, _, err := f.upload.AcceptUpload(ctx, a, []byte("x\n1\n"), "f.csv")
	require.NoError(t, err)

	require.NoError(t, f.files.Delete(ctx, a, "f.csv"))

	n, err := f.files.Count(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = f.blobs.Get(ctx, storage.FileKey(a, "f.csv"))
	assert.ErrorIs(t, err, storage.ErrNotExist)

	assert.ErrorIs(t, f.files.Delete(ctx, a, "f.csv"), ErrNotFound)
	assert.Contains(t, f.events.types(), queue.EventFileDeleted)
}

func TestDelete_MissingBlobStillDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")
	rec, err := f.files.Register(ctx, a, "ghost.csv", 10)
	require.NoError(t, err)

	require.NoError(t, f.files.DeleteByID(ctx, a, rec.ID))
	assert.ErrorIs(t, f.files.DeleteByID(ctx, a, rec.ID), ErrNotFound)
}

func TestListForOwner_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"one.csv", "two.csv", "three.csv"} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.files.now = func() time.Time { return at }
		_, err := f.files.Register(ctx, a, name, 1)
		require.NoError(t, err)
	}

	list, err := f.files.ListForOwner(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "three.csv", list[0].Filename)
	assert.Equal(t, "one.csv", list[2].Filename)

	// re-registering refreshes instead of duplicating
	f.files.now = func() time.Time { return base.Add(time.Hour) }
	_, err = f.files.Register(ctx, a, "one.csv", 99)
	require.NoError(t, err)
	list, err = f.files.ListForOwner(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one.csv", list[0].Filename)
	assert.Equal(t, int64(99), list[0].Size)
}

func TestRegister_RejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	_, err := f.files.Register(context.Background(), "u1", " ", 1)
	assert.ErrorIs(t, err, ErrValidation)
}
