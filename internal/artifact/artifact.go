// Package artifact writes generated files all-or-nothing.
//
// Every file is first staged next to its destination as a temporary file. Only
// when all files of all batches are staged are they renamed into place. An
// existing destination is moved aside to a backup before it is replaced. If a
// rename fails, the files committed so far are rolled back from their backups
// and the staged files are removed, so the previous outputs are restored.
// Backups are deleted once every file is in place.
package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// File is one generated output. Path is slash separated and relative to the
// root of its batch.
type File struct {
	Path string
	Data []byte
}

// Batch is a set of files written below the same root directory.
type Batch struct {
	Root  string
	Files []File
}

// Paths returns the destination of every file in b, in order.
func (b Batch) Paths() []string {
	out := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		out = append(out, filepath.Join(b.Root, filepath.FromSlash(f.Path)))
	}
	return out
}

// Writer commits batches of files.
type Writer struct {
	logger *slog.Logger
	perm   os.FileMode
	rename func(oldpath, newpath string) error
}

// NewWriter creates a writer producing files with mode 0644.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger, perm: 0o644, rename: os.Rename}
}

type staged struct {
	tmp    string
	dest   string
	backup string // empty when dest did not exist
}

// Write stages and then commits every file of every batch.
func (w *Writer) Write(batches ...Batch) error {
	dests, err := destinations(batches)
	if err != nil {
		return err
	}

	var pending []staged
	cleanup := func() {
		for _, s := range pending {
			_ = os.Remove(s.tmp)
		}
	}

	for _, d := range dests {
		tmp, err := w.stage(d.dest, d.data)
		if err != nil {
			cleanup()
			return err
		}
		pending = append(pending, staged{tmp: tmp, dest: d.dest})
	}

	committed, err := w.commit(pending)
	if err != nil {
		w.rollback(committed)
		for _, s := range pending[len(committed):] {
			_ = os.Remove(s.tmp)
		}
		return err
	}
	for _, s := range committed {
		if s.backup != "" {
			_ = os.Remove(s.backup)
		}
		w.logger.Debug("Wrote artifact", "path", s.dest)
	}
	return nil
}

// commit moves every staged file into place and returns the entries that
// were fully or partially applied. The last entry may hold only a backup.
func (w *Writer) commit(pending []staged) ([]staged, error) {
	var done []staged
	for _, s := range pending {
		if _, err := os.Lstat(s.dest); err == nil {
			s.backup = s.tmp + ".bak"
			if err := w.rename(s.dest, s.backup); err != nil {
				return done, fmt.Errorf("back up %s: %w", s.dest, err)
			}
		}
		if err := w.rename(s.tmp, s.dest); err != nil {
			if s.backup != "" {
				// Only the backup happened; rollback restores it.
				done = append(done, s)
			}
			return done, fmt.Errorf("commit %s: %w", s.dest, err)
		}
		s.tmp = ""
		done = append(done, s)
	}
	return done, nil
}

// rollback undoes committed entries in reverse order.
func (w *Writer) rollback(committed []staged) {
	for i := len(committed) - 1; i >= 0; i-- {
		s := committed[i]
		if s.tmp != "" {
			_ = os.Remove(s.tmp)
		} else if s.backup == "" {
			_ = os.Remove(s.dest)
		}
		if s.backup != "" {
			if err := w.rename(s.backup, s.dest); err != nil {
				w.logger.Error("Failed to restore artifact", "path", s.dest, "backup", s.backup, "error", err)
			}
		}
	}
}

func (w *Writer) stage(dest string, data []byte) (string, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	if fi, err := os.Lstat(dest); err == nil && fi.IsDir() {
		return "", fmt.Errorf("stage %s: destination is a directory", dest)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", dest, err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", dest, err)
	}
	if err := os.Chmod(f.Name(), w.perm); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", dest, err)
	}
	return f.Name(), nil
}

type destination struct {
	dest string
	data []byte
}

// destinations resolves and checks every path before anything touches disk.
func destinations(batches []Batch) ([]destination, error) {
	seen := make(map[string]struct{})
	var out []destination
	for _, b := range batches {
		if b.Root == "" {
			return nil, errors.New("artifact: empty root")
		}
		for _, f := range b.Files {
			rel := filepath.FromSlash(f.Path)
			if !filepath.IsLocal(rel) {
				return nil, fmt.Errorf("artifact: path %q escapes root %s", f.Path, b.Root)
			}
			dest := filepath.Join(b.Root, rel)
			if _, dup := seen[dest]; dup {
				return nil, fmt.Errorf("artifact: %s generated twice", dest)
			}
			seen[dest] = struct{}{}
			out = append(out, destination{dest: dest, data: f.Data})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].dest < out[j].dest })
	return out, nil
}
