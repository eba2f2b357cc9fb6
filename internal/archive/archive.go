// Package archive writes zip archives of a source tree.
package archive

import (
	"archive/zip"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"

	afs "github.com/raoulx24/atlas-archive/internal/fs"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

// CacheDir is the directory name pruned when cache-ignoring is enabled.
const CacheDir = "cache"

const maxSeq = 100

// Request describes one archive to produce.
type Request struct {
	Source      string
	Destination string
	Suffix      string
	IgnoreCache bool
}

// Result describes a published archive.
type Result struct {
	Path    string
	Entries int
	Bytes   int64
	// Changed counts files modified while they were being archived.
	Changed int
}

// Archiver produces archives through an fs.FS.
type Archiver struct {
	fs  afs.FS
	log logging.Logger
	now func() time.Time
}

// New creates an Archiver. A nil filesystem means the OS filesystem.
func New(filesystem afs.FS, log logging.Logger) *Archiver {
	if filesystem == nil {
		filesystem = afs.New()
	}
	return &Archiver{fs: filesystem, log: log, now: time.Now}
}

// WithClock overrides the time source used for archive names.
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	a.now = now
	return a
}

// Create writes the archive to a temporary name and renames it into place,
// so a failed run never leaves something that looks like a finished backup.
func (a *Archiver) Create(ctx context.Context, req Request) (Result, error) {
	if err := a.fs.MkdirAll(req.Destination); err != nil {
		return Result{}, errors.Annotatef(err, "creating backup folder %s", req.Destination)
	}

	ts := a.now()
	source := SourceName(req.Source)
	name := Name(ts, source, req.Suffix)
	tmp := filepath.Join(req.Destination, tempName(name))

	res, err := a.write(ctx, req, tmp)
	if err != nil {
		a.discard(ctx, tmp)
		return Result{}, errors.Annotatef(err, "writing archive %s", filepath.Join(req.Destination, name))
	}

	final, err := a.freeName(req.Destination, ts, source, req.Suffix)
	if err != nil {
		a.discard(ctx, tmp)
		return Result{}, err
	}
	if err := a.fs.Rename(ctx, tmp, final); err != nil {
		a.discard(ctx, tmp)
		return Result{}, errors.Annotatef(err, "finalizing archive %s", final)
	}

	res.Path = final
	return res, nil
}

// freeName returns the first archive path for ts that does not exist yet.
// Another writer (a manual backup next to the daemon) may have used the
// same second.
func (a *Archiver) freeName(dir string, ts time.Time, source, suffix string) (string, error) {
	for seq := 0; seq < maxSeq; seq++ {
		path := filepath.Join(dir, nameSeq(ts, source, suffix, seq))
		_, err := a.fs.Stat(path)
		if os.IsNotExist(err) {
			if seq > 0 {
				a.log.Warningf("archive name for %s already taken, using %s", ts.Format(TimestampLayout), filepath.Base(path))
			}
			return path, nil
		}
		if err != nil {
			return "", errors.Annotatef(err, "checking archive name %s", path)
		}
	}
	return "", errors.AlreadyExistsf("archives for %s %s_%s", ts.Format(TimestampLayout), source, suffix)
}

func (a *Archiver) write(ctx context.Context, req Request, tmp string) (res Result, err error) {
	f, err := a.fs.Create(tmp)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	if err := a.walk(ctx, req, zw, &res); err != nil {
		_ = zw.Close()
		return res, err
	}
	if err := zw.Close(); err != nil {
		return res, err
	}
	return res, f.Sync()
}

func (a *Archiver) walk(ctx context.Context, req Request, zw *zip.Writer, res *Result) error {
	root := filepath.Clean(req.Source)
	dest := resolve(req.Destination)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if req.IgnoreCache && d.Name() == CacheDir {
				a.log.Debugf("ignoring %q directory in %s", CacheDir, filepath.Dir(path))
				return filepath.SkipDir
			}
			if resolve(path) == dest {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			a.log.Debugf("skipping non-regular file %s", path)
			return nil
		}

		return a.add(ctx, zw, root, path, res)
	})
}

func (a *Archiver) add(ctx context.Context, zw *zip.Writer, root, path string, res *Result) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	hdr := &zip.FileHeader{
		Name:   filepath.ToSlash(rel),
		Method: zip.Deflate,
	}
	info, err := a.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Debugf("%s vanished before it could be archived", rel)
			return nil
		}
		return errors.Annotatef(err, "stat %s", rel)
	}
	hdr.Modified = info.MTime

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	copied, err := a.fs.CopyInto(ctx, w, path)
	if err != nil {
		return errors.Annotatef(err, "adding %s", rel)
	}

	res.Entries++
	res.Bytes += copied.Bytes
	if copied.Changed {
		res.Changed++
		a.log.Debugf("%s changed during archive", rel)
	}
	return nil
}

func (a *Archiver) discard(ctx context.Context, tmp string) {
	if err := a.fs.Remove(context.WithoutCancel(ctx), tmp); err != nil {
		a.log.Debugf("removing partial archive %s: %v", tmp, err)
	}
}

func resolve(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
