package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/csvboard/internal/model"
)

func TestUserDoc_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	u := model.User{
		ID: "u1", Username: "alice", PasswordHash: "h", DisplayName: "Alice",
		Bio: "b", Email: "e", Avatar: "a.png", Theme: "theme-dark", CreatedAt: now, UpdatedAt: now,
	}
	raw, err := bson.Marshal(toUserDoc(u))
	assert.NoError(t, err)

	var back userDoc
	assert.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, u, back.model())
}

func TestUserDoc_UsesLegacyFieldNames(t *testing.T) {
	raw, err := bson.Marshal(toUserDoc(model.User{ID: "u1", Username: "alice", Theme: model.DefaultTheme, Avatar: "me.png"}))
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "u1", m["_id"])
	assert.Equal(t, model.DefaultTheme, m["preferred_theme"])
	assert.Equal(t, "me.png", m["profile_pic"])
	_, hasBio := m["bio"]
	assert.False(t, hasBio)
}

func TestUpdateDoc_OnlyProvidedFields(t *testing.T) {
	name := "Alice"
	hash := "newhash"
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	got := updateDoc(model.UserUpdate{DisplayName: &name, PasswordHash: &hash}, now)

	assert.Equal(t, bson.M{"$set": bson.M{
		"display_name":  "Alice",
		"password_hash": "newhash",
		"updated_at":    now,
	}}, got)
}
