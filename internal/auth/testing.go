package auth

import "context"

// SetUserIDForTest stamps an account id into the context the way the
// middleware would, letting handler tests skip minting real tokens.
func SetUserIDForTest(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
