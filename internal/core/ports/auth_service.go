package ports

import "context"

// AuthService registers and authenticates users. Both Signup and Login return
// the obfuscated username that identifies the user in the session.
type AuthService interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	// DisplayName recovers the raw username from a session token.
	DisplayName(token string) (string, error)
	// UsernameTaken reports whether username is already registered.
	UsernameTaken(ctx context.Context, username string) (bool, error)
}
