package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/atlas-archive/internal/event"
)

func TestTake(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "save2.hg"), []byte("abc"), 0o644))

	tree, err := Take(root)
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.True(t, tree[filepath.Join(root, "sub")].IsDir)
	assert.Equal(t, int64(3), tree[filepath.Join(root, "sub", "save2.hg")].Size)
}

func TestTakeMissingRoot(t *testing.T) {
	_, err := Take(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	t0 := time.Unix(1000, 0)
	prev := Tree{
		"/s/keep.hg":  {Size: 1, ModTime: t0},
		"/s/edit.hg":  {Size: 1, ModTime: t0},
		"/s/gone.hg":  {Size: 1, ModTime: t0},
		"/s/olddir":   {IsDir: true, ModTime: t0},
		"/s/grown.hg": {Size: 1, ModTime: t0},
	}
	next := Tree{
		"/s/keep.hg":  {Size: 1, ModTime: t0},
		"/s/edit.hg":  {Size: 1, ModTime: t0.Add(time.Second)},
		"/s/new.hg":   {Size: 2, ModTime: t0},
		"/s/grown.hg": {Size: 5, ModTime: t0},
	}

	assert.Equal(t, []event.ChangeEvent{
		{Kind: event.Modified, Path: "/s/edit.hg"},
		{Kind: event.Deleted, Path: "/s/gone.hg"},
		{Kind: event.Modified, Path: "/s/grown.hg"},
		{Kind: event.Created, Path: "/s/new.hg"},
		{Kind: event.Deleted, Path: "/s/olddir", IsDir: true},
	}, Diff(prev, next))

	assert.Empty(t, Diff(next, next))
}
