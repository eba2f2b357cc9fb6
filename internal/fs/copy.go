package fs

import (
	"context"
	"io"
	"os"
)

// CopyInto streams src into dst. Opening is retried on transient errors;
// the copy itself is not, since dst may already hold a partial write.
// A source that changes mid-copy is still copied and reported as Changed.
func (o *OSFS) CopyInto(ctx context.Context, dst io.Writer, src string) (Copied, error) {
	orig, err := o.Stat(src)
	if err != nil {
		return Copied{}, err
	}

	var in *os.File
	err = retry(ctx, "open", func() error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		in = f
		return nil
	})
	if err != nil {
		return Copied{}, err
	}
	defer in.Close()

	n, err := io.Copy(dst, in)
	if err != nil {
		return Copied{Bytes: n}, err
	}

	now, err := o.Stat(src)
	if err != nil {
		// removed while we were reading it
		return Copied{Bytes: n, Changed: true}, nil
	}

	return Copied{Bytes: n, Changed: sourceChanged(orig, now)}, nil
}

func sourceChanged(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.MTime.After(orig.MTime) {
		return true
	}
	if now.Size != orig.Size {
		return true
	}
	return false
}
