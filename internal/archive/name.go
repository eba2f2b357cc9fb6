package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout sorts lexicographically in chronological order.
const TimestampLayout = "2006-01-02_15-04-05"

// Ext is the extension of every archive.
const Ext = ".zip"

// Name builds "{timestamp}_{source}_{suffix}.zip".
func Name(ts time.Time, source, suffix string) string {
	return fmt.Sprintf("%s_%s_%s%s", ts.Format(TimestampLayout), source, suffix, Ext)
}

// nameSeq is Name with a "-N" counter before the extension, used when an
// archive of the same second already exists.
func nameSeq(ts time.Time, source, suffix string, seq int) string {
	if seq == 0 {
		return Name(ts, source, suffix)
	}
	return fmt.Sprintf("%s_%s_%s-%d%s", ts.Format(TimestampLayout), source, suffix, seq, Ext)
}

// Parsed is an archive file name split into its parts.
type Parsed struct {
	Time   time.Time
	Source string
	Suffix string
	Seq    int
}

// Parse splits an archive name produced by Name. The suffix is the last
// underscore-separated token, so source names may contain underscores.
func Parse(name string) (Parsed, bool) {
	n := len(TimestampLayout)
	if len(name) <= n || !strings.HasSuffix(name, Ext) {
		return Parsed{}, false
	}
	ts, err := time.ParseInLocation(TimestampLayout, name[:n], time.Local)
	if err != nil {
		return Parsed{}, false
	}

	rest, ok := strings.CutPrefix(strings.TrimSuffix(name[n:], Ext), "_")
	if !ok {
		return Parsed{}, false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return Parsed{}, false
	}
	p := Parsed{Time: ts, Source: rest[:i], Suffix: rest[i+1:]}

	if j := strings.LastIndex(p.Suffix, "-"); j >= 0 {
		seq, err := strconv.Atoi(p.Suffix[j+1:])
		if err != nil || seq < 1 || j == 0 {
			return Parsed{}, false
		}
		p.Seq = seq
		p.Suffix = p.Suffix[:j]
	}
	return p, true
}

// SourceName is the base name of the source folder embedded in archive names.
func SourceName(sourceFolder string) string {
	return filepath.Base(filepath.Clean(sourceFolder))
}

// tempName is unique per process so that a manual backup and the daemon
// never write the same temporary file.
func tempName(final string) string {
	return fmt.Sprintf(".%s.%d.tmp", final, os.Getpid())
}
