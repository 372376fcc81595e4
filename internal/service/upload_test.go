package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/repository"
	"github.com/iliyamo/csvboard/internal/storage"
)

func TestParseForDisplay(t *testing.T) {
	f := newFixture(t)

	table, err := f.upload.ParseForDisplay([]byte("a,b\n1,2\n3,4\n"), "t.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Equal(t, []map[string]string{{"a": "1", "b": "2"}, {"a": "3", "b": "4"}}, table.Rows)

	table, err = f.upload.ParseForDisplay([]byte("a,b\n"), "header.csv")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestParseForDisplay_Rejects(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		filename string
		data     string
		want     error
	}{
		{"xlsx", "report.xlsx", "a,b\n1,2\n", ErrUnsupportedType},
		{"upper-case suffix", "report.CSV", "a,b\n1,2\n", ErrUnsupportedType},
		{"no suffix", "report", "a,b\n1,2\n", ErrUnsupportedType},
		{"empty", "e.csv", "", ErrMalformedContent},
		{"ragged", "r.csv", "a,b\n1,2,3\n", ErrMalformedContent},
		{"duplicate header", "d.csv", "a,a\n1,2\n", ErrMalformedContent},
		{"too large", "big.csv", "a\n" + strings.Repeat("1\n", 1<<20), ErrFileTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.upload.ParseForDisplay([]byte(tc.data), tc.filename)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestAcceptUpload_RejectedTypeRegistersNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")

	_, _, err := f.upload.AcceptUpload(ctx, a, []byte("a,b\n1,2\n"), "report.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = f.upload.AcceptUpload(ctx, a, []byte("a,b\n1\n"), "bad.csv")
	assert.ErrorIs(t, err, ErrMalformedContent)

	n, err := f.files.Count(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotContains(t, f.events.types(), queue.EventFileUploaded)
}

func TestAcceptUpload_StoresBytesAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")
	data := []byte("city,sales\nParis,10\nOslo,7\n")

	table, rec, err := f.upload.AcceptUpload(ctx, a, data, "../q3 sales.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "sales"}, table.Columns)
	assert.Equal(t, "q3_sales.csv", rec.Filename)
	assert.Equal(t, a, rec.OwnerID)
	assert.Equal(t, int64(len(data)), rec.Size)

	got, err := f.blobs.Get(ctx, storage.FileKey(a, "q3_sales.csv"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Contains(t, f.events.types(), queue.EventFileUploaded)
}

func TestAcceptUpload_SameNameDifferentUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")
	b := f.mustRegister(t, "bob", "pw")

	_, _, err := f.upload.AcceptUpload(ctx, a, []byte("v\nalice\n"), "shared.csv")
	require.NoError(t, err)
	_, _, err = f.upload.AcceptUpload(ctx, b, []byte("v\nbob\n"), "shared.csv")
	require.NoError(t, err)

	got, err := f.blobs.Get(ctx, storage.FileKey(a, "shared.csv"))
	require.NoError(t, err)
	assert.Equal(t, "v\nalice\n", string(got))
}

func TestAcceptUpload_BlobFailureRegistersNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.mustRegister(t, "alice", "pw")

	blobs := &failingBlobs{BlobStore: f.blobs, failPut: true}
	up := NewUploadService(f.files, blobs, f.events, zap.NewNop(), 0)
	_, _, err := up.AcceptUpload(ctx, a, []byte("a\n1\n"), "f.csv")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))

	n, err := f.files.Count(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// brokenFiles fails every upsert.
type brokenFiles struct{ repository.FileStore }

func (brokenFiles) Upsert(context.Context, model.FileRecord) (model.FileRecord, error) {
	return model.FileRecord{}, errors.New("db down")
}

func TestAcceptUpload_RecordFailureRemovesBytes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	files := NewFileService(brokenFiles{f.store.Files()}, f.blobs, f.events, zap.NewNop())
	up := NewUploadService(files, f.blobs, f.events, zap.NewNop(), 0)

	_, _, err := up.AcceptUpload(ctx, "u1", []byte("a\n1\n"), "f.csv")
	require.Error(t, err)

	_, err = f.blobs.Get(ctx, storage.FileKey("u1", "f.csv"))
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestAcceptUpload_PublisherErrorIgnored(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	a := f.mustRegister(t, "alice", "pw")

	_, _, err := f.upload.AcceptUpload(context.Background(), a, []byte("a\n1\n"), "f.csv")
	assert.NoError(t, err)
}
