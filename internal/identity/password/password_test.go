package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashNeverEqualsRaw(t *testing.T) {
	hash, err := Hash("S3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "S3cret!", hash)
	assert.NotEmpty(t, hash)
}

func TestVerify(t *testing.T) {
	hash, err := Hash("S3cret!")
	require.NoError(t, err)

	assert.True(t, Verify(hash, "S3cret!"))
	assert.False(t, Verify(hash, "S3cret"))
	assert.False(t, Verify(hash, "s3cret!"))
	assert.False(t, Verify(hash, ""))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("S3cret!")
	require.NoError(t, err)
	second, err := Hash("S3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
