package ports

import (
	"context"

	"github.com/99minutos/secure-blog/internal/core/domain"
)

// CredentialRepository persists login records keyed by obfuscated username.
// Implementations enforce uniqueness of Username and report a violation as
// domain.ErrUserExists.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	FindByUsername(ctx context.Context, username string) (*domain.Credential, error)
}
