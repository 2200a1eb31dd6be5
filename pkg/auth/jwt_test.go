package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)
	tok, err := m.Generate("u1")
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestManager_RejectsWrongSecretAndExpired(t *testing.T) {
	m := NewManager("secret", time.Hour)
	tok, err := m.Generate("u1")
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate("u1")
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
