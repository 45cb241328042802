// Package storage persists rendered images to the output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// OutputDir writes rendered results as result_YYYYMMDD_HHMMSS_<id>.jpg.
// The random suffix keeps names unique when two requests finish in the same
// second.
type OutputDir struct {
	dir string
	now func() time.Time
}

// NewOutputDir creates dir if needed.
func NewOutputDir(dir string) (*OutputDir, error) {
	if dir == "" {
		return nil, fmt.Errorf("output dir: empty path")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &OutputDir{dir: dir, now: time.Now}, nil
}

// Dir returns the directory results are written to.
func (o *OutputDir) Dir() string {
	return o.dir
}

// SaveJPEG writes data under a fresh name and returns its path.
func (o *OutputDir) SaveJPEG(data []byte) (string, error) {
	name := fmt.Sprintf("result_%s_%s.jpg", o.now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(o.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
