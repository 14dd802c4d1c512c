package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	c, err := NewCodec([]byte(secret))
	require.NoError(t, err)
	return c
}

var usernames = []string{"abc", "alice", "Bob_the-builder", "x_y_z", "01234567890123456789"}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestObfuscate_RoundTrip(t *testing.T) {
	c := newTestCodec(t, "server-secret")

	for _, u := range usernames {
		token := c.Obfuscate(u)
		assert.NotEqual(t, u, token)

		got, err := c.Deobfuscate(token)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
}

func TestObfuscate_Deterministic(t *testing.T) {
	c := newTestCodec(t, "server-secret")
	assert.Equal(t, c.Obfuscate("alice"), c.Obfuscate("alice"))
	assert.NotEqual(t, c.Obfuscate("alice"), c.Obfuscate("alicf"))

	// A second codec built from the same secret must agree, so tokens
	// survive a restart.
	again := newTestCodec(t, "server-secret")
	assert.Equal(t, c.Obfuscate("alice"), again.Obfuscate("alice"))
}

func TestDeobfuscate_WrongKey(t *testing.T) {
	c := newTestCodec(t, "server-secret")
	other := newTestCodec(t, "another-secret")

	token := c.Obfuscate("alice")
	assert.NotEqual(t, token, other.Obfuscate("alice"))

	_, err := other.Deobfuscate(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestDeobfuscate_Malformed(t *testing.T) {
	c := newTestCodec(t, "server-secret")

	for _, token := range []string{"", "!!!not-base64!!!", "c2hvcnQ"} {
		_, err := c.Deobfuscate(token)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", token)
	}

	token := []byte(c.Obfuscate("alice"))
	mid := len(token) / 2
	if token[mid] == 'A' {
		token[mid] = 'B'
	} else {
		token[mid] = 'A'
	}
	_, err := c.Deobfuscate(string(token))
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestMakeSalt(t *testing.T) {
	c := newTestCodec(t, "server-secret")

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		s, err := c.MakeSalt()
		require.NoError(t, err)
		assert.NotContains(t, s, ",")
		_, dup := seen[s]
		assert.False(t, dup, "salt repeated: %s", s)
		seen[s] = struct{}{}
	}
}

func TestVerify_Properties(t *testing.T) {
	c := newTestCodec(t, "server-secret")
	passwords := []string{"abc", "secret1", "with,comma", "  spaced  ", "ünïcødé!"}

	for _, u := range usernames {
		for _, p := range passwords {
			salt, err := c.MakeSalt()
			require.NoError(t, err)
			record, err := c.MakePasswordRecord(u, p, salt)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(record, salt+","))
			assert.True(t, c.Verify(u, p, record), "own record must verify")
			assert.False(t, c.Verify(u+"x", p, record), "record must not transfer to another user")
			assert.False(t, c.Verify(u, p+"x", record), "wrong password must fail")
		}
	}
}

func TestVerify_SplitsOnFirstComma(t *testing.T) {
	c := newTestCodec(t, "server-secret")

	record, err := c.MakePasswordRecord("alice", "secret1", "salt")
	require.NoError(t, err)
	assert.True(t, c.Verify("alice", "secret1", record))

	// trailing garbage after the hash is part of the hash field, not ignored
	assert.False(t, c.Verify("alice", "secret1", record+",extra"))
	assert.False(t, c.Verify("alice", "secret1", "no-comma-here"))
	assert.False(t, c.Verify("alice", "secret1", ""))
}

func TestMakePasswordRecord_RejectsCommaSalt(t *testing.T) {
	c := newTestCodec(t, "server-secret")
	_, err := c.MakePasswordRecord("alice", "secret1", "sa,lt")
	assert.ErrorIs(t, err, ErrInvalidSalt)
}

func TestVerify_DifferentSecret(t *testing.T) {
	c := newTestCodec(t, "server-secret")
	other := newTestCodec(t, "another-secret")

	record, err := c.MakePasswordRecord("alice", "secret1", "salt")
	require.NoError(t, err)
	assert.False(t, other.Verify("alice", "secret1", record))
}
