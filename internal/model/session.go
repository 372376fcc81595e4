package model

import "time"

// Session models a server-side login session. The browser holds a signed
// token that references the session by ID; the token alone is never enough.
//
// Fields:
//  ID        – session identifier, carried in the token's jti claim.
//  UserID    – the logged-in user.
//  ExpiresAt – hard expiry of the session.
//  RevokedAt – set at logout (nil while active).
//  CreatedAt – login time.
type Session struct {
    ID        string
    UserID    string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s Session) Active(now time.Time) bool {
    return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
