package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(NewKeyProvider(), ttl)
}

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	tm := newTestManager(time.Hour)

	token, expiresAt, err := tm.Issue("a@x.com", "ADMIN", 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := tm.ParseAndVerify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestTokenValidWithinTTLAndExpiredAfter(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	tm := newTestManager(3600 * time.Second)
	tm.now = func() time.Time { return issued }

	token, _, err := tm.Issue("a@x.com", "ADMIN", 1)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(10 * time.Second) }
	claims, err := tm.ParseAndVerify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)

	tm.now = func() time.Time { return issued.Add(3601 * time.Second) }
	_, err = tm.ParseAndVerify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "expired", ClassifyTokenError(err))
}

func TestTokenSignedWithDifferentKeyFails(t *testing.T) {
	issuer := newTestManager(time.Hour)
	verifier := newTestManager(time.Hour)

	token, _, err := issuer.Issue("a@x.com", "USER", 1)
	require.NoError(t, err)

	_, err = verifier.ParseAndVerify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "signature_invalid", ClassifyTokenError(err))
}

func TestTamperedTokenFails(t *testing.T) {
	tm := newTestManager(time.Hour)

	token, _, err := tm.Issue("a@x.com", "USER", 1)
	require.NoError(t, err)

	// Flip one character near the end of the signature segment.
	tampered := []byte(token)
	pos := len(tampered) - 2
	if tampered[pos] == 'A' {
		tampered[pos] = 'B'
	} else {
		tampered[pos] = 'A'
	}

	_, err = tm.ParseAndVerify(string(tampered))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedTokenFails(t *testing.T) {
	tm := newTestManager(time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := tm.ParseAndVerify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}
