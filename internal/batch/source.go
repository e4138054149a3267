package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/omr-scanner/internal/imaging"
)

// Source is one image to score. ID becomes ScanResult.File and the file
// column of both CSVs.
type Source struct {
	ID   string
	Load func() (image.Image, error)
}

// FileSource decodes path when the driver reaches it. The source is
// identified by the file name alone.
func FileSource(path string) Source {
	return Source{
		ID:   filepath.Base(path),
		Load: func() (image.Image, error) { return imaging.Decode(path) },
	}
}

// FileSources wraps each path in a FileSource.
func FileSources(paths []string) []Source {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = FileSource(p)
	}
	return sources
}

// FindScans returns the files in dir whose names match pattern, sorted by
// name. Files with an extension no decoder handles are skipped, so a broad
// pattern such as "*" does not turn notes or spreadsheets into failed rows.
// The folder is created when it does not exist yet.
func FindScans(dir, pattern string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scans folder: %w", err)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans folder: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok && imaging.IsSupported(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
