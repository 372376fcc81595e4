package service

import "context"

// IdentityResolver maps a session token to the user it authenticates.
// *AuthService implements it.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (string, bool)
}

// RequireSession returns the user id behind token or ErrUnauthorized.
func RequireSession(ctx context.Context, ids IdentityResolver, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	uid, ok := ids.CurrentIdentity(ctx, token)
	if !ok {
		return "", ErrUnauthorized
	}
	return uid, nil
}

// RequireOwnership fails with ErrForbidden unless userID owns the resource.
func RequireOwnership(userID, ownerID string) error {
	if userID == "" || userID != ownerID {
		return ErrForbidden
	}
	return nil
}
