package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/repository/memstore"
	"github.com/iliyamo/csvboard/internal/storage"
)

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store   *memstore.Store
	blobs   *storage.LocalStore
	events  *recordingPublisher
	auth    *AuthService
	files   *FileService
	upload  *UploadService
	profile *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	st := memstore.New()
	ev := &recordingPublisher{}
	log := zap.NewNop()

	files := NewFileService(st.Files(), blobs, ev, log)
	return &fixture{
		store:  st,
		blobs:  blobs,
		events: ev,
		auth: NewAuthService(st.Users(), st.Sessions(), ev, log, AuthOptions{
			Secret:     "test-secret",
			BcryptCost: bcrypt.MinCost,
		}),
		files:   files,
		upload:  NewUploadService(files, blobs, ev, log, 1<<20),
		profile: NewProfileService(st.Users(), st.Files(), blobs, ev, log, bcrypt.MinCost),
	}
}

// mustRegister creates an account and returns its id.
func (f *fixture) mustRegister(t *testing.T, username, password string) string {
	t.Helper()
	id, err := f.auth.Register(context.Background(), username, password)
	require.NoError(t, err)
	return id
}

// failingBlobs wraps a BlobStore and fails Put once armed.
type failingBlobs struct {
	storage.BlobStore
	failPut bool
}

func (b *failingBlobs) Put(ctx context.Context, key string, data []byte) error {
	if b.failPut {
		return errors.New("disk full")
	}
	return b.BlobStore.Put(ctx, key, data)
}
