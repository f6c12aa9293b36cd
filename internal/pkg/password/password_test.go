package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("s3cret-pass")
	require.NoError(t, err)
	h2, err := Hash("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, Verify("s3cret-pass", h1))
	assert.True(t, Verify("s3cret-pass", h2))
}

func TestVerify_RejectsWrongPassword(t *testing.T) {
	h, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.False(t, Verify("s3cret-passx", h))
}

func TestVerify_MalformedHash_ReturnsFalse(t *testing.T) {
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, Verify("anything", ""))
}
