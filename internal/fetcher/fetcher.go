package fetcher

//go:generate mockgen -destination=../mocks/blob_api.go -package=mocks github.com/quantmind-br/gitzip-go/internal/fetcher BlobAPI

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/cache"
	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/github"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// BlobAPI retrieves blob content by locator
type BlobAPI interface {
	GetBlob(ctx context.Context, blobURL string) (*github.Blob, error)
}

// Progress receives one event per fetched file
type Progress interface {
	Advance(message string)
}

// Fetcher retrieves file contents for tree entries. Contents stay base64
// encoded, matching the wire format, until the archive is assembled.
type Fetcher struct {
	api      BlobAPI
	cache    domain.Cache
	cacheTTL time.Duration
	workers  int
	progress Progress
	logger   *utils.Logger
}

// Options contains options for creating a Fetcher
type Options struct {
	API BlobAPI
	// Cache is optional; blobs are stored under cache.BlobKey(sha)
	Cache    domain.Cache
	CacheTTL time.Duration
	Workers  int
	Progress Progress
	Logger   *utils.Logger
}

// New creates a Fetcher
func New(opts Options) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Fetcher{
		api:      opts.API,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		workers:  opts.Workers,
		progress: opts.Progress,
		logger:   opts.Logger,
	}
}

// Fetch retrieves the content of one entry. Failures are not retried here;
// the API client applies its own retry policy.
func (f *Fetcher) Fetch(ctx context.Context, entry domain.TreeEntry) (domain.FetchedFile, error) {
	file := domain.FetchedFile{RelativePath: entry.Path()}

	if content, ok := f.fromCache(ctx, entry.SHA); ok {
		file.Content = content
		file.FromCache = true
		return file, nil
	}

	blob, err := f.api.GetBlob(ctx, entry.Locator)
	if err != nil {
		return file, fmt.Errorf("fetch %s: %w", entry.Path(), err)
	}

	content, err := encodeBlob(blob)
	if err != nil {
		return file, fmt.Errorf("fetch %s: %w", entry.Path(), err)
	}
	file.Content = content

	f.toCache(ctx, entry.SHA, content)
	return file, nil
}

// FetchAll fetches every entry with at most Workers requests in flight.
// The first failure cancels the remaining fetches and no results are
// returned. Results keep the order of entries.
func (f *Fetcher) FetchAll(ctx context.Context, entries []domain.TreeEntry) ([]domain.FetchedFile, error) {
	start := time.Now()

	files, err := utils.ParallelMap(ctx, entries, f.workers,
		func(ctx context.Context, entry domain.TreeEntry) (domain.FetchedFile, error) {
			file, err := f.Fetch(ctx, entry)
			if err != nil {
				return file, err
			}
			if f.progress != nil {
				f.progress.Advance(fmt.Sprintf("Fetched %s content.", file.RelativePath))
			}
			return file, nil
		})
	if err != nil {
		return nil, err
	}

	if f.logger != nil {
		cached := 0
		for _, file := range files {
			if file.FromCache {
				cached++
			}
		}
		f.logger.Debug().
			Int("files", len(files)).
			Int("cached", cached).
			Int("workers", f.workers).
			Dur("duration", time.Since(start)).
			Msg("Fetched contents")
	}
	return files, nil
}

func (f *Fetcher) fromCache(ctx context.Context, sha string) ([]byte, bool) {
	if f.cache == nil || sha == "" {
		return nil, false
	}
	data, err := f.cache.Get(ctx, cache.BlobKey(sha))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) && f.logger != nil {
			f.logger.Warn().Err(err).Str("sha", sha).Msg("Blob cache read failed")
		}
		return nil, false
	}
	return data, true
}

func (f *Fetcher) toCache(ctx context.Context, sha string, content []byte) {
	if f.cache == nil || sha == "" {
		return
	}
	if err := f.cache.Set(ctx, cache.BlobKey(sha), content, f.cacheTTL); err != nil && f.logger != nil {
		f.logger.Warn().Err(err).Str("sha", sha).Msg("Blob cache write failed")
	}
}

// encodeBlob returns the blob content as unwrapped standard base64
func encodeBlob(blob *github.Blob) ([]byte, error) {
	switch strings.ToLower(blob.Encoding) {
	case "base64", "":
		cleaned := strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(blob.Content)
		if _, err := base64.StdEncoding.DecodeString(cleaned); err != nil {
			return nil, fmt.Errorf("invalid base64 content: %w", err)
		}
		return []byte(cleaned), nil
	case "utf-8", "utf8":
		return []byte(base64.StdEncoding.EncodeToString([]byte(blob.Content))), nil
	default:
		return nil, fmt.Errorf("unsupported blob encoding %q", blob.Encoding)
	}
}

// Decode returns the raw bytes of fetched content
func Decode(content []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(content)))
	n, err := base64.StdEncoding.Decode(out, content)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return out[:n], nil
}
