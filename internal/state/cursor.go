// Package state persists the small cross-invocation state: the cursor (id
// of the last posted article) and the run metrics record.
//
// Both are whole-file overwrites with no locking; at-most-one concurrent
// invocation is an external operational invariant, enforced by whatever
// schedules the runs.
package state

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"blogbot/pkg/logx"
)

// Cursor stores the identifier of the last successfully posted article as
// decimal text in a single file. Absent file or non-numeric content reads
// as "no prior post".
type Cursor struct {
	path string
	log  logx.Logger
}

func NewCursor(path string, log logx.Logger) *Cursor {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Cursor{path: path, log: log}
}

// Read returns the stored id, or ok=false when none is recorded.
func (c *Cursor) Read() (id int64, ok bool) {
	b, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, false
	}
	if err != nil {
		c.log.Warn("cursor read failed", logx.String("path", c.path), logx.Err(err))
		return 0, false
	}

	s := strings.TrimSpace(string(b))
	id, perr := strconv.ParseInt(s, 10, 64)
	if perr != nil {
		c.log.Warn("cursor file holds non-numeric content", logx.String("path", c.path), logx.String("content", s))
		return 0, false
	}
	return id, true
}

// Write overwrites the cursor. Failures are the caller's to log; a stale
// cursor only risks a duplicate notification on the next run.
func (c *Cursor) Write(id int64) error {
	return writeFileAtomic(c.path, []byte(strconv.FormatInt(id, 10)))
}

// writeFileAtomic writes via a temp file and rename so readers never see a
// partial file.
func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
