package model

import "time"

// DefaultTheme is assigned to every account at registration.
const DefaultTheme = "theme-bluegreen"

// User represents an account as stored by the credential store. The
// PasswordHash never leaves the service layer; handlers work with Profile.
//
// Fields:
//  ID           – opaque identifier (UUID) assigned at creation.
//  Username     – unique login name, immutable after creation.
//  PasswordHash – bcrypt hash of the password.
//  DisplayName  – optional name shown instead of the username.
//  Bio          – optional free text.
//  Email        – optional contact address.
//  Avatar       – stored avatar filename (empty when none).
//  Theme        – presentation preference, DefaultTheme until changed.
//  CreatedAt    – set once at insert; used as the join date.
//  UpdatedAt    – refreshed on every mutation.
type User struct {
    ID           string
    Username     string
    PasswordHash string
    DisplayName  string
    Bio          string
    Email        string
    Avatar       string
    Theme        string
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// ShownName returns the display name, falling back to the username.
func (u User) ShownName() string {
    if u.DisplayName != "" {
        return u.DisplayName
    }
    return u.Username
}

// UserUpdate is a partial update of a User. Nil fields are left untouched;
// stores apply all non-nil fields in a single write.
type UserUpdate struct {
    Email        *string
    DisplayName  *string
    Bio          *string
    Avatar       *string
    Theme        *string
    PasswordHash *string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
    return u.Email == nil && u.DisplayName == nil && u.Bio == nil &&
        u.Avatar == nil && u.Theme == nil && u.PasswordHash == nil
}

// Profile is the read model rendered on the profile and dashboard pages.
type Profile struct {
    UserID      string
    Username    string
    Email       string
    DisplayName string
    Bio         string
    Avatar      string
    Theme       string
    FileCount   int
    JoinedAt    time.Time
}

// ShownName mirrors User.ShownName for the read model.
func (p Profile) ShownName() string {
    if p.DisplayName != "" {
        return p.DisplayName
    }
    return p.Username
}
