package migration

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// File is one versioned migration pair
type File struct {
	Version uint
	Name    string
	HasDown bool
}

var fileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// List returns the migrations in fsys ordered by version. Files that do not
// follow the NNNNNN_name.(up|down).sql layout are ignored; a version used by
// two different names is an error.
func List(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	byVersion := map[uint]*File{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", e.Name(), err)
		}
		f, ok := byVersion[uint(v)]
		if !ok {
			f = &File{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = f
		} else if f.Name != m[2] {
			return nil, fmt.Errorf("migration version %d used by %s and %s", v, f.Name, m[2])
		}
		if m[3] == "down" {
			f.HasDown = true
		}
	}

	files := make([]File, 0, len(byVersion))
	for _, f := range byVersion {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

var nameCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Create writes an empty up/down pair numbered after the highest existing
// version in dir and returns the up file path.
func Create(dir, name string) (string, error) {
	slug := strings.Trim(nameCleaner.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	next := uint(1)
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")
	if err := os.WriteFile(upPath, []byte("-- "+name+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", upPath, err)
	}
	if err := os.WriteFile(downPath, []byte("-- rollback: "+name+"\n"), 0o644); err != nil {
		_ = os.Remove(upPath)
		return "", fmt.Errorf("failed to write %s: %w", downPath, err)
	}
	return upPath, nil
}
