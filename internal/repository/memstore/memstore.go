// Package memstore is an in-process implementation of the repository
// contracts. It backs STORE_DRIVER=memory for local runs and is what the
// service and HTTP tests exercise.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/csvboard/internal/model"
	"github.com/iliyamo/csvboard/internal/repository"
)

// Store holds users, files and sessions behind one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	files    map[string]model.FileRecord
	sessions map[string]model.Session
}

func New() *Store {
	return &Store{
		users:    map[string]model.User{},
		files:    map[string]model.FileRecord{},
		sessions: map[string]model.Session{},
	}
}

// Users, Files and Sessions expose the store through each contract.
func (s *Store) Users() repository.UserStore       { return userView{s} }
func (s *Store) Files() repository.FileStore       { return fileView{s} }
func (s *Store) Sessions() repository.SessionStore { return sessionView{s} }

type userView struct{ s *Store }

func (v userView) Create(_ context.Context, u model.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	v.s.users[u.ID] = u
	return nil
}

func (v userView) GetByID(_ context.Context, id string) (model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	u, ok := v.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (v userView) GetByUsername(_ context.Context, username string) (model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, u := range v.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (v userView) Update(_ context.Context, id string, upd model.UserUpdate) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Empty() {
		return nil
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Email, upd.Email)
	set(&u.DisplayName, upd.DisplayName)
	set(&u.Bio, upd.Bio)
	set(&u.Avatar, upd.Avatar)
	set(&u.Theme, upd.Theme)
	set(&u.PasswordHash, upd.PasswordHash)
	u.UpdatedAt = time.Now().UTC()
	v.s.users[id] = u
	return nil
}

type fileView struct{ s *Store }

func (v fileView) find(ownerID, filename string) (model.FileRecord, bool) {
	for _, f := range v.s.files {
		if f.OwnerID == ownerID && f.Filename == filename {
			return f, true
		}
	}
	return model.FileRecord{}, false
}

func (v fileView) Upsert(_ context.Context, f model.FileRecord) (model.FileRecord, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if existing, ok := v.find(f.OwnerID, f.Filename); ok {
		existing.Size = f.Size
		existing.CreatedAt = f.CreatedAt
		v.s.files[existing.ID] = existing
		return existing, nil
	}
	v.s.files[f.ID] = f
	return f, nil
}

func (v fileView) ListByOwner(_ context.Context, ownerID string) ([]model.FileRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]model.FileRecord, 0)
	for _, f := range v.s.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (v fileView) GetByOwnerAndName(_ context.Context, ownerID, filename string) (model.FileRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if f, ok := v.find(ownerID, filename); ok {
		return f, nil
	}
	return model.FileRecord{}, repository.ErrNotFound
}

func (v fileView) GetByID(_ context.Context, id string) (model.FileRecord, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	f, ok := v.s.files[id]
	if !ok {
		return model.FileRecord{}, repository.ErrNotFound
	}
	return f, nil
}

func (v fileView) DeleteByOwnerAndName(_ context.Context, ownerID, filename string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	f, ok := v.find(ownerID, filename)
	if !ok {
		return false, nil
	}
	delete(v.s.files, f.ID)
	return true, nil
}

func (v fileView) CountByOwner(_ context.Context, ownerID string) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	n := 0
	for _, f := range v.s.files {
		if f.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

type sessionView struct{ s *Store }

func (v sessionView) Create(_ context.Context, sess model.Session) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.sessions[sess.ID] = sess
	return nil
}

func (v sessionView) Get(_ context.Context, id string) (model.Session, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	sess, ok := v.s.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return sess, nil
}

func (v sessionView) Revoke(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	sess.RevokedAt = &now
	v.s.sessions[id] = sess
	return nil
}
