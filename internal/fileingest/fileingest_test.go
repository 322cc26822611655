package fileingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverDescriptionFiles(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	write("b.txt", "bedtime stories")
	write("a/episode.HTML", "<p>space</p>")
	write("notes.md", "science")
	write("image.png", "binary")
	write("empty.txt", "")
	write(".git/config.txt", "ignored")

	files, err := DiscoverDescriptionFiles(context.Background(), root)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"episode.HTML", "b.txt", "notes.md"}, names)
}

func TestDiscoverDescriptionFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DiscoverDescriptionFiles(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
