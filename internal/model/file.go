package model

import "time"

// FileRecord is the registry entry for an uploaded file. It describes the
// file, it does not hold its bytes. (OwnerID, Filename) is unique.
type FileRecord struct {
    ID        string    // files.id
    OwnerID   string    // files.user_id
    Filename  string    // files.filename (sanitized)
    Size      int64     // files.size in bytes
    CreatedAt time.Time // files.created_at
}
