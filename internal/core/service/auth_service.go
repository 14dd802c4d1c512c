package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/secure-blog/internal/core/domain"
	"github.com/99minutos/secure-blog/internal/core/ports"
	"github.com/99minutos/secure-blog/internal/pkg/metrics"
)

// AuthService implements signup and login on top of the credential codec.
// Raw usernames never reach the repository; every lookup goes through the
// obfuscated form.
type AuthService struct {
	repo   ports.CredentialRepository
	codec  ports.CredentialCodec
	logger zerolog.Logger
}

func NewAuthService(repo ports.CredentialRepository, codec ports.CredentialCodec, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, codec: codec, logger: logger}
}

// Signup creates the credential record and returns the session token.
func (s *AuthService) Signup(ctx context.Context, username, password string) (string, error) {
	if !domain.ValidUsername(username) || !domain.ValidPassword(password) {
		return "", domain.ErrInvalidCredentials
	}

	token := s.codec.Obfuscate(username)

	// Fast path for the common duplicate case; the store's unique index is
	// still the authority when two signups race.
	_, err := s.repo.FindByUsername(ctx, token)
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues("exists").Inc()
		return "", domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("signup: %w", err)
	}

	salt, err := s.codec.MakeSalt()
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}
	record, err := s.codec.MakePasswordRecord(username, password, salt)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}

	_, err = s.repo.Create(ctx, &domain.Credential{
		Username:  token,
		Password:  record,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("exists").Inc()
			return "", domain.ErrUserExists
		}
		return "", fmt.Errorf("signup: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	s.logger.Info().Str("user", token).Msg("user signed up")
	return token, nil
}

// Login verifies the password and returns the session token. Unknown users
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", domain.ErrInvalidCredentials
	}

	token := s.codec.Obfuscate(username)
	cred, err := s.repo.FindByUsername(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	name, err := s.codec.Deobfuscate(cred.Username)
	if err != nil || name != username || !s.codec.Verify(username, password, cred.Password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.logger.Debug().Str("user", token).Msg("login rejected")
		return "", domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, nil
}

// DisplayName recovers the raw username carried by a session token.
func (s *AuthService) DisplayName(token string) (string, error) {
	return s.codec.Deobfuscate(token)
}

func (s *AuthService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, s.codec.Obfuscate(username))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("username taken: %w", err)
	}
}
