package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	// 哈希值不是明文，且每次加盐后都不同
	assert.NotEqual(t, "s3cret-password", hashed)
	other, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, other)
}

func TestCheckPasswordHash(t *testing.T) {
	hashed, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret-password", hashed))
	assert.False(t, CheckPasswordHash("wrong-password", hashed))
	assert.False(t, CheckPasswordHash("s3cret-password", "not-a-hash"))
}
