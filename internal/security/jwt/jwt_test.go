package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	m := NewManager("0123456789abcdef", 60, "studio-admin")
	tok, err := m.Generate(7, "admin", "jti-1")
	require.NoError(t, err)

	c, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "jti-1", c.JTI)
	assert.Equal(t, "7", c.Subject)
}

func TestIssueAssignsDistinctJTI(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewManager("0123456789abcdef", 3600, "studio-admin")
	m.now = func() time.Time { return now }

	a, err := m.Issue(1, "manager")
	require.NoError(t, err)
	b, err := m.Issue(1, "manager")
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
	assert.Equal(t, now.Add(time.Hour), a.ExpiresAt)

	c, err := m.Parse(a.Token)
	require.NoError(t, err)
	assert.Equal(t, a.JTI, c.JTI)
	assert.Equal(t, "manager", c.Role)
}

func TestParseRejectsForeignSecretAndIssuer(t *testing.T) {
	tok, err := NewManager("0123456789abcdef", 60, "studio-admin").Generate(1, "admin", "x")
	require.NoError(t, err)

	_, err = NewManager("ffffffffffffffff", 60, "studio-admin").Parse(tok)
	assert.Error(t, err)
	assert.False(t, IsExpired(err))
	_, err = NewManager("0123456789abcdef", 60, "other").Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("0123456789abcdef", 60, "studio-admin")
	tok, err := m.Generate(1, "admin", "x")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Parse(tok)
	require.Error(t, err)
	assert.True(t, IsExpired(err))
}
