package clix

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("limit", 20, "")
	fs.Int("offset", 0, "")
	fs.Int("concurrency", 4, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestParsePagination(t *testing.T) {
	p, err := ParsePagination(newFlags(t, "--limit", "5", "--offset", "10"))
	require.NoError(t, err)
	assert.Equal(t, PaginationParams{Limit: 5, Offset: 10}, p)

	p, _ = ParsePagination(newFlags(t, "--limit", "0", "--offset", "-3"))
	assert.Equal(t, PaginationParams{Limit: 20, Offset: 0}, p)

	p, _ = ParsePagination(newFlags(t, "--limit", "100000"))
	assert.Equal(t, 500, p.Limit)
}

func TestParseConcurrency(t *testing.T) {
	n, err := ParseConcurrency(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ParseConcurrency(newFlags(t, "--concurrency", "0"))
	assert.Error(t, err)
	_, err = ParseConcurrency(newFlags(t, "--concurrency", "65"))
	assert.Error(t, err)
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("first podcast\n\n   \n second podcast \r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first podcast", "second podcast"}, lines)
}
