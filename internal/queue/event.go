// Package queue defines the activity events exchanged over the message
// broker, the publisher used by the web server and the consumer that turns
// them into an activity log.
package queue

import "time"

// Activity event types.
const (
    EventUserRegistered = "user.registered"
    EventUserLoggedIn   = "user.logged_in"
    EventFileUploaded   = "file.uploaded"
    EventFileDeleted    = "file.deleted"
    EventProfileUpdated = "profile.updated"
    EventThemeUpdated   = "theme.updated"
)

// ActivityEvent is published after a user-visible state change succeeded.
// It carries enough context for the consumer to log it without querying the
// primary store. Detail is free-form (e.g. the new theme name).
type ActivityEvent struct {
    Type       string    `json:"type"`
    UserID     string    `json:"user_id"`
    Username   string    `json:"username,omitempty"`
    Filename   string    `json:"filename,omitempty"`
    Detail     string    `json:"detail,omitempty"`
    OccurredAt time.Time `json:"occurred_at"`
}
