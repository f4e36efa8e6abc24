package scanner

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/osconfig/cegen/internal/codegen/model"
)

// DefaultGlob selects every header below the source root.
const DefaultGlob = "**/*.h"

// Discover lists the files in fsys matching glob, ordered by base name
// (ties broken by full path) so that scanning is reproducible.
func Discover(fsys fs.FS, glob string) ([]string, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	matches, err := doublestar.Glob(fsys, glob)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", glob, err)
	}

	files := matches[:0]
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		bi, bj := path.Base(files[i]), path.Base(files[j])
		if bi != bj {
			return bi < bj
		}
		return files[i] < files[j]
	})
	return files, nil
}

// ScanAll scans files from fsys in the given order into m. Each file is
// identified by its base name. The first error aborts the scan.
func ScanAll(m *model.Model, fsys fs.FS, files []string) error {
	for _, name := range files {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := ScanHeader(m, path.Base(name), src); err != nil {
			return fmt.Errorf("scan %s: %w", name, err)
		}
	}
	return nil
}
