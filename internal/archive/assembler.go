package archive

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// Assembler writes fetched files into a zip archive
type Assembler struct {
	memoryLimit int64
	level       int
	tempDir     string
	logger      *utils.Logger
}

// Options contains options for creating an Assembler
type Options struct {
	// MemoryLimit is the decoded size above which the archive is spooled to
	// a temporary file instead of memory (0 keeps everything in memory)
	MemoryLimit int64
	// CompressionLevel is a flate level from -2 (Huffman only) to 9
	CompressionLevel int
	TempDir          string
	Logger           *utils.Logger
}

// NewAssembler creates an Assembler
func NewAssembler(opts Options) *Assembler {
	if opts.CompressionLevel < flate.HuffmanOnly || opts.CompressionLevel > flate.BestCompression {
		opts.CompressionLevel = flate.DefaultCompression
	}
	return &Assembler{
		memoryLimit: opts.MemoryLimit,
		level:       opts.CompressionLevel,
		tempDir:     opts.TempDir,
		logger:      opts.Logger,
	}
}

// Assemble writes every file under its relative path. All paths are checked
// before anything is written. onEntry, when set, is called after each entry.
func (a *Assembler) Assemble(ctx context.Context, name string, files []domain.FetchedFile, onEntry func(path string)) (*Archive, error) {
	names, decodedSize, err := validate(files)
	if err != nil {
		return nil, err
	}

	sink, err := a.newSink(decodedSize)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	zw := zip.NewWriter(sink)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, a.level)
	})

	modified := time.Now()
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			sink.discard()
			return nil, err
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     names[i],
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			sink.discard()
			return nil, fmt.Errorf("create entry %s: %w", names[i], err)
		}

		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(file.Content))
		if _, err := io.Copy(w, dec); err != nil {
			sink.discard()
			return nil, fmt.Errorf("write entry %s: %w", names[i], err)
		}

		if onEntry != nil {
			onEntry(names[i])
		}
	}

	if err := zw.Close(); err != nil {
		sink.discard()
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	arc, err := sink.archive(utils.ArchiveFilename(name), len(files))
	if err != nil {
		return nil, err
	}

	if a.logger != nil {
		a.logger.Debug().
			Str("archive", arc.Name).
			Int("entries", arc.Entries).
			Int64("size", arc.Size).
			Bool("spooled", arc.Spooled()).
			Dur("duration", time.Since(start)).
			Msg("Archive assembled")
	}
	return arc, nil
}

// validate cleans every path and rejects escapes and duplicates. It also
// returns the total decoded size.
func validate(files []domain.FetchedFile) ([]string, int64, error) {
	names := make([]string, len(files))
	seen := make(map[string]struct{}, len(files))
	var size int64

	for i, file := range files {
		p, err := cleanPath(file.RelativePath)
		if err != nil {
			return nil, 0, err
		}
		if _, dup := seen[p]; dup {
			return nil, 0, fmt.Errorf("%w: %s", domain.ErrDuplicatePath, p)
		}
		seen[p] = struct{}{}
		names[i] = p
		size += int64(base64.StdEncoding.DecodedLen(len(file.Content)))
	}
	return names, size, nil
}

func cleanPath(p string) (string, error) {
	raw := strings.ReplaceAll(p, "\\", "/")
	if raw == "" || strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePath, p)
	}
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", domain.ErrUnsafePath, p)
		}
	}
	clean := path.Clean(raw)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsafePath, p)
	}
	return clean, nil
}

// sink is the archive destination: memory or a temporary file
type sink struct {
	io.Writer
	buf  *bytes.Buffer
	file *os.File
}

func (a *Assembler) newSink(decodedSize int64) (*sink, error) {
	if a.memoryLimit <= 0 || decodedSize <= a.memoryLimit {
		buf := &bytes.Buffer{}
		return &sink{Writer: buf, buf: buf}, nil
	}

	f, err := os.CreateTemp(a.tempDir, "gitzip-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	return &sink{Writer: f, file: f}, nil
}

func (s *sink) discard() {
	if s.file != nil {
		_ = s.file.Close()
		_ = os.Remove(s.file.Name())
	}
}

func (s *sink) archive(name string, entries int) (*Archive, error) {
	if s.file == nil {
		return &Archive{Name: name, Entries: entries, Size: int64(s.buf.Len()), data: s.buf.Bytes()}, nil
	}

	size, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		s.discard()
		return nil, fmt.Errorf("spool file: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		s.discard()
		return nil, fmt.Errorf("spool file: %w", err)
	}
	return &Archive{Name: name, Entries: entries, Size: size, file: s.file}, nil
}
