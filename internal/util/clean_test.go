package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Kids’ stories—fun times")...)
	out, err := CleanText(in, "test")
	require.NoError(t, err)
	assert.Equal(t, "Kids' stories--fun times", out)

	out, err = CleanText([]byte{'o', 'k', 0xff}, "broken")
	require.NoError(t, err)
	assert.Equal(t, "ok�", out)
}

func TestIsLikelyBinary(t *testing.T) {
	assert.False(t, IsLikelyBinary([]byte("plain text")))
	assert.True(t, IsLikelyBinary([]byte{'P', 'K', 0x03, 0x04, 0x00}))
}
