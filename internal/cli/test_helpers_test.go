package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raoulx24/atlas-archive/internal/config"
)

type testTree struct {
	root       string
	source     string
	backup     string
	configPath string
}

// newTestTree writes a valid config pointing at a fresh source folder
// containing one save file.
func newTestTree(t *testing.T, mutate func(*config.Config)) *testTree {
	t.Helper()
	root := t.TempDir()
	tt := &testTree{
		root:       root,
		source:     filepath.Join(root, "saves"),
		backup:     filepath.Join(root, "backups"),
		configPath: filepath.Join(root, "atlas.yaml"),
	}
	require.NoError(t, os.MkdirAll(tt.source, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tt.source, "save.hg"), []byte("save"), 0o644))

	cfg := config.Default()
	cfg.SourceFolder = tt.source
	cfg.BackupFolder = tt.backup
	cfg.Watch.Mode = "poll"
	cfg.Watch.PollInterval = 20 * time.Millisecond
	cfg.Watch.DebounceWindow = 100 * time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}
	tt.writeConfig(t, cfg)
	return tt
}

func (tt *testTree) writeConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tt.configPath, data, 0o644))
}

func (tt *testTree) archives(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(tt.backup, "*.zip"))
	require.NoError(t, err)
	return matches
}

func mkdir(path string) error {
	return os.MkdirAll(path, 0o755)
}
