package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes the manifest to a file. The file is replaced atomically
// through a temporary file in the same directory.
type FileSink struct {
	Path   string
	Format Format
}

// NewFileSink returns a sink writing to path. An empty format is inferred
// from the file extension.
func NewFileSink(path string, format Format) *FileSink {
	if format == "" {
		format = FormatForPath(path)
	}
	return &FileSink{Path: path, Format: format}
}

// Publish implements [Publisher].
func (s *FileSink) Publish(_ context.Context, m *Manifest) error {
	data, err := Encode(m, s.Format)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.Path, data, 0o644)
}

// Load reads back the manifest currently stored at the sink's path.
func (s *FileSink) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Decode(data, s.Format)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

var _ Publisher = (*FileSink)(nil)
