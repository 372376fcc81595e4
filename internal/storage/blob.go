// Package storage keeps the raw bytes of uploaded files and avatars. Keys
// are slash-separated and built with FileKey and AvatarKey; the metadata
// lives in the file registry, never here.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotExist is returned by Get (and by Delete on backends that can tell)
// when no object is stored under the key.
var ErrNotExist = errors.New("blob does not exist")

// ErrInvalidKey rejects keys that are empty or would escape the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore is implemented by LocalStore and S3Store.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// FileKey is where the bytes of an uploaded file are stored.
func FileKey(userID, filename string) string { return userID + "/" + filename }

// AvatarKey is where a user's avatar image is stored.
func AvatarKey(userID, filename string) string { return "avatars/" + userID + "/" + filename }

// cleanKey normalizes key and rejects absolute or parent-relative paths.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidKey
	}
	return c, nil
}
