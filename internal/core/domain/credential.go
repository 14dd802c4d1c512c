package domain

import (
	"errors"
	"regexp"
	"time"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	passwordPattern = regexp.MustCompile(`^.{3,20}$`)
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Credential is the stored login record of a user. Username holds the
// obfuscated form, never the raw name; Password is the "salt,hash" record.
type Credential struct {
	ID        int64     `json:"-" bson:"_id,omitempty" db:"id"`
	Username  string    `json:"username" bson:"username" db:"username"`
	Password  string    `json:"-" bson:"password" db:"password"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// ValidUsername reports whether s is 3-20 letters, digits, '_' or '-'.
func ValidUsername(s string) bool { return usernamePattern.MatchString(s) }

// ValidPassword reports whether s is 3-20 characters of any kind.
func ValidPassword(s string) bool { return passwordPattern.MatchString(s) }

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }
