package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, IsHashed(h))
	assert.True(t, VerifyPassword("s3cret-pass", h))
	assert.False(t, VerifyPassword("wrong", h))
}

func TestVerifyRejectsPlainStored(t *testing.T) {
	assert.False(t, VerifyPassword("abc", "abc"))
	assert.False(t, VerifyPassword("", ""))
}
