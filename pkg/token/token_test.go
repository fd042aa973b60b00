package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	c := NewCodec([]byte("test-secret"), time.Hour)

	tok, err := c.Issue(42, "admin")
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3, "token must be three dot-joined segments")
	assert.NotContains(t, tok, "=", "segments must not be padded")

	claims, err := c.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestParseCorruptedSignature(t *testing.T) {
	c := NewCodec([]byte("test-secret"), time.Hour)
	tok, err := c.Issue(1, "user")
	require.NoError(t, err)

	// Flip one bit in every byte of the decoded signature in turn; each
	// variant must be rejected as a bad signature.
	dot := strings.LastIndex(tok, ".")
	sig, err := base64.RawURLEncoding.DecodeString(tok[dot+1:])
	require.NoError(t, err)
	for i := range sig {
		mutated := make([]byte, len(sig))
		copy(mutated, sig)
		mutated[i] ^= 0x01
		altered := tok[:dot+1] + base64.RawURLEncoding.EncodeToString(mutated)
		_, err := c.Parse(altered)
		assert.ErrorIs(t, err, ErrInvalidSignature, "byte %d", i)
	}
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewCodec([]byte("secret-a"), time.Hour)
	verifier := NewCodec([]byte("secret-b"), time.Hour)

	tok, err := issuer.Issue(1, "user")
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseExpired(t *testing.T) {
	// Negative TTL backdates exp while leaving the signature valid.
	c := NewCodec([]byte("test-secret"), -time.Hour)
	tok, err := c.Issue(1, "user")
	require.NoError(t, err)

	_, err = c.Parse(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParseMalformed(t *testing.T) {
	c := NewCodec([]byte("test-secret"), time.Hour)

	for _, tok := range []string{
		"",
		"abc",
		"a.b",
		"a.b.c.d",
		"not a token at all",
	} {
		_, err := c.Parse(tok)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", tok)
	}
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	c := NewCodec([]byte("test-secret"), time.Hour)

	// alg "none" header with an empty signature segment.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJpZCI6MSwidXNlcm5hbWUiOiJ1c2VyIn0."
	_, err := c.Parse(unsigned)
	assert.Error(t, err)
}
