package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/atlas-archive/internal/archive"
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/event"
	"github.com/raoulx24/atlas-archive/internal/journal"
	"github.com/raoulx24/atlas-archive/internal/logging"
	"github.com/raoulx24/atlas-archive/internal/mailbox"
	"github.com/raoulx24/atlas-archive/internal/retention"
)

type fakeRetention struct {
	mu     sync.Mutex
	calls  []string
	delete []string
	err    error
}

func (f *fakeRetention) Apply(_ context.Context, dir, source string, policy retention.Policy) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, source)
	return f.delete, f.err
}

type memRecorder struct {
	mu   sync.Mutex
	runs []journal.Run
}

func (m *memRecorder) Record(_ context.Context, r journal.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	return nil
}

type fixture struct {
	cfg    config.Config
	ret    *fakeRetention
	rec    *memRecorder
	mb     *mailbox.Mailbox[Job]
	worker *Worker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	cfg := *config.Default()
	cfg.SourceFolder = filepath.Join(root, "saves")
	cfg.BackupFolder = filepath.Join(root, "backups")
	require.NoError(t, os.MkdirAll(cfg.SourceFolder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SourceFolder, "save2.hg"), []byte("slot"), 0o644))

	tick := time.Date(2024, 2, 2, 10, 0, 0, 0, time.Local)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}

	f := &fixture{
		cfg: cfg,
		ret: &fakeRetention{},
		rec: &memRecorder{},
		mb:  mailbox.New[Job](),
	}
	log := logging.New("worker-test")
	f.worker = New(cfg, log,
		classify.NewWithExists(func(string) bool { return true }),
		archive.New(nil, log).WithClock(clock),
		f.ret, f.mb, nil,
	).WithRecorder(f.rec)
	return f
}

func (f *fixture) archives(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.cfg.BackupFolder)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func batch(paths ...string) event.Batch {
	var b event.Batch
	for _, p := range paths {
		b = append(b, event.ChangeEvent{Kind: event.Modified, Path: p})
	}
	return b
}

func TestAllow(t *testing.T) {
	all := *config.Default()
	none := all
	none.BackupAutosaves = false
	none.BackupRestorePoints = false
	none.BackupOther = false

	for _, c := range []classify.Category{classify.Undelete, classify.General, classify.RestorePoint, classify.AutoSave, classify.Other} {
		ok, _ := Allow(classify.DescriptorFor(c), all)
		assert.True(t, ok, c.String())
	}

	for c, want := range map[classify.Category]bool{
		classify.Undelete:     true,
		classify.General:      true,
		classify.RestorePoint: false,
		classify.AutoSave:     false,
		classify.Other:        false,
	} {
		ok, reason := Allow(classify.DescriptorFor(c), none)
		assert.Equal(t, want, ok, c.String())
		if !want {
			assert.NotEmpty(t, reason)
		}
	}
}

func TestHandleCreatesArchive(t *testing.T) {
	f := newFixture(t)

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/save2.hg")})

	assert.Equal(t, journal.Succeeded, run.Status)
	assert.Equal(t, "RestorePoint", run.Category)
	assert.Equal(t, 1, run.Entries)
	assert.Equal(t, int64(4), run.Bytes)
	assert.True(t, strings.HasSuffix(run.Archive, "_saves_RestorePoint.zip"))
	assert.FileExists(t, run.Archive)
	assert.Equal(t, []string{"saves"}, f.ret.calls)
	require.Len(t, f.rec.runs, 1)
	assert.Equal(t, run, f.rec.runs[0])
}

func TestHandleSkipsDisabledCategory(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg
	cfg.BackupRestorePoints = false
	f.worker.UpdateConfig(cfg)

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/save2.hg")})

	assert.Equal(t, journal.Skipped, run.Status)
	assert.Contains(t, run.Reason, "Restore Point")
	assert.Empty(t, f.archives(t))
	assert.Empty(t, f.ret.calls)
}

func TestHandleMandatoryIgnoresFlags(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg
	cfg.BackupRestorePoints = false
	cfg.BackupAutosaves = false
	f.worker.UpdateConfig(cfg)

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/save2.hg", "/s/save3.hg")})

	assert.Equal(t, journal.Succeeded, run.Status)
	assert.Equal(t, "General", run.Category)
}

func TestHandleSourceMissing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.RemoveAll(f.cfg.SourceFolder))

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/save.hg")})

	assert.Equal(t, journal.Failed, run.Status)
	assert.Contains(t, run.Reason, "not found")
	assert.Empty(t, f.archives(t))
	assert.Empty(t, f.ret.calls)
}

func TestHandleArchiveFailureSkipsRetention(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg
	// a file where the backup folder should be
	require.NoError(t, os.WriteFile(cfg.BackupFolder, nil, 0o644))

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/notes.txt")})

	assert.Equal(t, journal.Failed, run.Status)
	assert.Empty(t, f.ret.calls)
}

func TestHandleRetentionErrorStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.ret.err = errors.New("listing failed")

	run := f.worker.Handle(context.Background(), Job{Batch: batch("/s/notes.txt")})
	assert.Equal(t, journal.Succeeded, run.Status)
	assert.Equal(t, "Other", run.Category)
}

func TestHandleRealRetention(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg
	cfg.VersionsToKeep = 2
	f.worker.UpdateConfig(cfg)
	f.worker.retention = retention.New(nil, logging.New("worker-test"))

	var runs []journal.Run
	for i := 0; i < 4; i++ {
		runs = append(runs, f.worker.Handle(context.Background(), Job{Batch: batch("/s/save.hg")}))
	}

	assert.Equal(t, 0, runs[0].Pruned)
	assert.Equal(t, 1, runs[2].Pruned)
	assert.Len(t, f.archives(t), 2)
	assert.FileExists(t, runs[3].Archive)
	assert.NoFileExists(t, runs[0].Archive)
}

func TestHandleManualDescriptor(t *testing.T) {
	f := newFixture(t)
	desc := classify.DescriptorFor(classify.General)

	run := f.worker.Handle(context.Background(), Job{Descriptor: &desc})
	assert.Equal(t, "General", run.Category)
	assert.Equal(t, journal.Succeeded, run.Status)
}

func (f *fixture) drain(t *testing.T) {
	t.Helper()
	f.mb.Close()

	done := make(chan struct{})
	go func() {
		f.worker.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after mailbox close")
	}
}

func TestStartRunsEachBurstSeparately(t *testing.T) {
	f := newFixture(t)

	// both bursts settle before the worker gets to them
	f.mb.Put(Job{Batch: batch("/s/save2.hg")})
	f.mb.Put(Job{Batch: batch("/s/save3.hg")})
	f.drain(t)

	require.Len(t, f.rec.runs, 2)
	assert.Equal(t, "RestorePoint", f.rec.runs[0].Category)
	assert.Equal(t, "AutoSave", f.rec.runs[1].Category)
	assert.Len(t, f.archives(t), 2)
}

func TestQueuedBurstsRespectDisabledCategories(t *testing.T) {
	f := newFixture(t)
	cfg := f.cfg
	cfg.BackupRestorePoints = false
	cfg.BackupAutosaves = false
	f.worker.UpdateConfig(cfg)

	f.mb.Put(Job{Batch: batch("/s/save2.hg")})
	f.mb.Put(Job{Batch: batch("/s/save3.hg")})
	f.drain(t)

	require.Len(t, f.rec.runs, 2)
	for _, r := range f.rec.runs {
		assert.Equal(t, journal.Skipped, r.Status, r.Category)
	}
	assert.Empty(t, f.archives(t))
	assert.Empty(t, f.ret.calls)
}
