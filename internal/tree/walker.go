package tree

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/github"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// Listing strategies
const (
	StrategyDescent = "descent"
	StrategyFlat    = "flat"
)

// API is the subset of the hosting client used to discover files
type API interface {
	ListContents(ctx context.Context, owner, project, path, ref string) (*github.Contents, error)
	GetTree(ctx context.Context, treeURL string) (*github.Tree, error)
	TreeURL(owner, project, branch string) string
}

// Walker flattens a repository directory into TreeEntry values whose paths
// are rooted at the requested directory.
type Walker struct {
	api      API
	strategy string
	workers  int
	logger   *utils.Logger
}

// Options contains options for creating a Walker
type Options struct {
	API      API
	Strategy string
	// Workers bounds concurrent subdirectory listings
	Workers int
	Logger  *utils.Logger
}

// NewWalker creates a Walker
func NewWalker(opts Options) *Walker {
	if opts.Strategy == "" {
		opts.Strategy = StrategyDescent
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Walker{
		api:      opts.API,
		strategy: opts.Strategy,
		workers:  opts.Workers,
		logger:   opts.Logger,
	}
}

// Strategy returns the configured listing strategy
func (w *Walker) Strategy() string {
	return w.strategy
}

// ListRecursive returns every file under loc. A location addressing a single
// file yields one entry named after it. Any truncated listing fails the whole
// walk with domain.ErrTreeTooLarge and no entries.
func (w *Walker) ListRecursive(ctx context.Context, loc *domain.ResolvedLocation) ([]domain.TreeEntry, error) {
	start := time.Now()

	var (
		entries []domain.TreeEntry
		err     error
	)
	switch w.strategy {
	case StrategyFlat:
		entries, err = w.listFlatAt(ctx, loc)
	default:
		entries, err = w.listDescent(ctx, loc)
	}
	if err != nil {
		return nil, err
	}

	if w.logger != nil {
		w.logger.Debug().
			Str("strategy", w.strategy).
			Str("branch", loc.Branch).
			Str("path", loc.Path).
			Int("files", len(entries)).
			Dur("duration", time.Since(start)).
			Msg("Tree listed")
	}
	return entries, nil
}

// ListFlat runs one recursive tree listing at treeURL and prefixes every
// entry with prefix.
func (w *Walker) ListFlat(ctx context.Context, treeURL string, prefix ...string) ([]domain.TreeEntry, error) {
	tree, err := w.api.GetTree(ctx, treeURL)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	if tree.Truncated {
		return nil, fmt.Errorf("%w (%d entries returned for %s)", domain.ErrTreeTooLarge, len(tree.Tree), treeURL)
	}

	entries := make([]domain.TreeEntry, 0, len(tree.Tree))
	for _, item := range tree.Tree {
		// trees are implied by their blobs; submodule commits have no content
		if item.Type != github.TypeBlob {
			continue
		}
		rel := make([]string, 0, len(prefix)+strings.Count(item.Path, "/")+1)
		rel = append(rel, prefix...)
		rel = append(rel, strings.Split(item.Path, "/")...)
		entries = append(entries, domain.TreeEntry{
			Locator:      item.URL,
			RelativePath: rel,
			SHA:          item.SHA,
			Size:         item.Size,
		})
	}
	return entries, nil
}

// listDescent lists the immediate children of loc, emitting files directly
// and running one flat listing per subdirectory, prefixed by its name.
func (w *Walker) listDescent(ctx context.Context, loc *domain.ResolvedLocation) ([]domain.TreeEntry, error) {
	contents, err := w.api.ListContents(ctx, loc.Owner, loc.Project, loc.Path, loc.Branch)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", displayPath(loc), err)
	}
	if contents.IsFile() {
		return []domain.TreeEntry{fileEntry(*contents.File)}, nil
	}

	groups, err := utils.ParallelMap(ctx, contents.Entries, w.workers,
		func(ctx context.Context, child github.ContentEntry) ([]domain.TreeEntry, error) {
			switch child.Type {
			case github.TypeFile:
				return []domain.TreeEntry{fileEntry(child)}, nil
			case github.TypeDir:
				return w.ListFlat(ctx, child.GitURL, child.Name)
			default:
				// symlinks and submodules
				if w.logger != nil {
					w.logger.Debug().Str("path", child.Path).Str("type", child.Type).Msg("Skipping entry")
				}
				return nil, nil
			}
		})
	if err != nil {
		return nil, err
	}

	var entries []domain.TreeEntry
	for _, g := range groups {
		entries = append(entries, g...)
	}
	return entries, nil
}

// listFlatAt runs a single recursive listing rooted at loc. The tree of a
// subdirectory is found through its parent's contents listing.
func (w *Walker) listFlatAt(ctx context.Context, loc *domain.ResolvedLocation) ([]domain.TreeEntry, error) {
	if loc.IsRoot() {
		return w.ListFlat(ctx, w.api.TreeURL(loc.Owner, loc.Project, loc.Branch))
	}

	parent := path.Dir(loc.Path)
	if parent == "." {
		parent = ""
	}
	contents, err := w.api.ListContents(ctx, loc.Owner, loc.Project, parent, loc.Branch)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", displayPath(loc), err)
	}

	name := path.Base(loc.Path)
	for _, child := range contents.Entries {
		if child.Name != name {
			continue
		}
		if child.Type == github.TypeDir {
			return w.ListFlat(ctx, child.GitURL)
		}
		return []domain.TreeEntry{fileEntry(child)}, nil
	}
	return nil, fmt.Errorf("list %s: %w", displayPath(loc), domain.ErrNotFound)
}

func fileEntry(e github.ContentEntry) domain.TreeEntry {
	return domain.TreeEntry{
		Locator:      e.GitURL,
		RelativePath: []string{e.Name},
		SHA:          e.SHA,
		Size:         e.Size,
	}
}

func displayPath(loc *domain.ResolvedLocation) string {
	return loc.Owner + "/" + loc.Project + "@" + loc.Branch + ":/" + loc.Path
}
