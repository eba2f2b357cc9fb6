package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	afs "github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

var fixedNow = time.Date(2024, 3, 9, 21, 5, 7, 0, time.Local)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func entries(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := map[string]string{}
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range ents {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func newArchiver(filesystem afs.FS) *Archiver {
	return New(filesystem, logging.New("archive-test")).WithClock(func() time.Time { return fixedNow })
}

func TestName(t *testing.T) {
	assert.Equal(t, "2024-03-09_21-05-07_st_76561198_RestorePoint.zip", Name(fixedNow, "st_76561198", "RestorePoint"))
	assert.Equal(t, "saves", SourceName("/games/hello/saves/"))
}

func TestParse(t *testing.T) {
	p, ok := Parse("2024-03-09_21-05-07_st_76561198_RestorePoint.zip")
	require.True(t, ok)
	assert.True(t, fixedNow.Equal(p.Time))
	assert.Equal(t, "st_76561198", p.Source)
	assert.Equal(t, "RestorePoint", p.Suffix)
	assert.Zero(t, p.Seq)

	p, ok = Parse(nameSeq(fixedNow, "saves", "General", 2))
	require.True(t, ok)
	assert.Equal(t, "saves", p.Source)
	assert.Equal(t, "General", p.Suffix)
	assert.Equal(t, 2, p.Seq)

	for _, bad := range []string{
		"notes.zip",
		"2024-03-09_21-05-07_General.zip",
		"2024-03-09_21-05-07_saves_.zip",
		"2024-03-09_21-05-07_saves_General-x.zip",
		"2024-13-09_21-05-07_saves_General.zip",
		"2024-03-09_21-05-07_saves_General.tar",
	} {
		_, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
}

func TestCreateNeverOverwrites(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"save.hg": "new"})

	taken := filepath.Join(dest, Name(fixedNow, "saves", "General"))
	require.NoError(t, os.WriteFile(taken, []byte("earlier run"), 0o644))

	res, err := newArchiver(nil).Create(context.Background(), Request{
		Source:      src,
		Destination: dest,
		Suffix:      "General",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "2024-03-09_21-05-07_saves_General-1.zip"), res.Path)

	earlier, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(earlier))
	assert.Equal(t, map[string]string{"save.hg": "new"}, entries(t, res.Path))
}

func TestCreatePrunesCache(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	dest := t.TempDir()
	writeTree(t, src, map[string]string{
		"save.hg":                        "one",
		"save2.hg":                       "two",
		"sub/mf_save3.hg":                "three",
		"cache/shader.bin":               "x",
		"sub/deeper/cache/nested.bin":    "y",
		"sub/deeper/notcache/keep.txt":   "keep",
		"sub/deeper/cache/more/data.bin": "z",
	})

	res, err := newArchiver(nil).Create(context.Background(), Request{
		Source:      src,
		Destination: dest,
		Suffix:      "General",
		IgnoreCache: true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "2024-03-09_21-05-07_saves_General.zip"), res.Path)
	assert.Equal(t, 4, res.Entries)
	assert.Equal(t, int64(len("one")+len("two")+len("three")+len("keep")), res.Bytes)

	assert.Equal(t, map[string]string{
		"save.hg":                      "one",
		"save2.hg":                     "two",
		"sub/mf_save3.hg":              "three",
		"sub/deeper/notcache/keep.txt": "keep",
	}, entries(t, res.Path))
	assert.Equal(t, []string{"2024-03-09_21-05-07_saves_General.zip"}, listDir(t, dest))
}

func TestCreateKeepsCacheWhenNotIgnored(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	writeTree(t, src, map[string]string{
		"save.hg":          "one",
		"cache/shader.bin": "x",
	})

	res, err := newArchiver(nil).Create(context.Background(), Request{
		Source:      src,
		Destination: t.TempDir(),
		Suffix:      "Other",
	})
	require.NoError(t, err)
	assert.Contains(t, entries(t, res.Path), "cache/shader.bin")
}

func TestCreateSkipsNestedDestination(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	dest := filepath.Join(src, "backups")
	writeTree(t, src, map[string]string{
		"save.hg":                                    "one",
		"backups/2024-01-01_00-00-00_saves_Other.zip": "old",
	})

	res, err := newArchiver(nil).Create(context.Background(), Request{
		Source:      src,
		Destination: dest,
		Suffix:      "AutoSave",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"save.hg": "one"}, entries(t, res.Path))
}

type failingFS struct {
	*afs.OSFS
	renameErr error
	copyErr   error
}

func (f failingFS) Rename(ctx context.Context, oldPath, newPath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.OSFS.Rename(ctx, oldPath, newPath)
}

func (f failingFS) CopyInto(ctx context.Context, dst io.Writer, src string) (afs.Copied, error) {
	if f.copyErr != nil {
		return afs.Copied{}, f.copyErr
	}
	return f.OSFS.CopyInto(ctx, dst, src)
}

func TestCreateRenameFailureLeavesNothing(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"save.hg": "one"})

	boom := errors.New("disk full")
	_, err := newArchiver(failingFS{OSFS: afs.New(), renameErr: boom}).Create(context.Background(), Request{
		Source:      src,
		Destination: dest,
		Suffix:      "Other",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, listDir(t, dest))
}

func TestCreateCopyFailureLeavesNothing(t *testing.T) {
	src := filepath.Join(t.TempDir(), "saves")
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"save.hg": "one", "save2.hg": "two"})

	_, err := newArchiver(failingFS{OSFS: afs.New(), copyErr: errors.New("read error")}).Create(context.Background(), Request{
		Source:      src,
		Destination: dest,
		Suffix:      "Other",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read error")
	assert.Empty(t, listDir(t, dest))
}

func TestCreateMissingSource(t *testing.T) {
	dest := t.TempDir()
	_, err := newArchiver(nil).Create(context.Background(), Request{
		Source:      filepath.Join(t.TempDir(), "gone"),
		Destination: dest,
		Suffix:      "Other",
	})
	require.Error(t, err)
	assert.Empty(t, listDir(t, dest))
}
