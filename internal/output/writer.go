package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// ErrExists is returned when the target file exists and overwriting is off
var ErrExists = errors.New("output file already exists")

// Writer saves downloaded artifacts into the output directory
type Writer struct {
	baseDir   string
	overwrite bool
	dryRun    bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir   string
	Overwrite bool
	DryRun    bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}

	return &Writer{
		baseDir:   utils.ExpandPath(opts.BaseDir),
		overwrite: opts.Overwrite,
		dryRun:    opts.DryRun,
	}
}

// Save streams r into <baseDir>/<name> and returns the written path.
// The content goes to a temporary file first and is renamed into place,
// so a failed save never leaves a partial artifact.
func (w *Writer) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path := w.GetPath(name)

	if !w.overwrite && w.Exists(name) {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}
	if w.dryRun {
		_, err := io.Copy(io.Discard, r)
		return path, err
	}

	if err := w.EnsureBaseDir(); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.baseDir, ".gitzip-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		tmp = nil
		return "", fmt.Errorf("move %s into place: %w", name, err)
	}
	tmp = nil
	return path, nil
}

// GetPath returns the output path for a file name
func (w *Writer) GetPath(name string) string {
	return filepath.Join(w.baseDir, utils.SanitizeFilename(name))
}

// Exists checks if an artifact already exists
func (w *Writer) Exists(name string) bool {
	_, err := os.Stat(w.GetPath(name))
	return err == nil
}

// BaseDir returns the output directory
func (w *Writer) BaseDir() string {
	return w.baseDir
}

// EnsureBaseDir creates the base directory if it doesn't exist
func (w *Writer) EnsureBaseDir() error {
	return os.MkdirAll(w.baseDir, 0755)
}

// ctxReader stops a copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
