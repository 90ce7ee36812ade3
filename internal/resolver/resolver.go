package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/github"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// ContentsAPI is the directory-listing endpoint used to confirm branch candidates
type ContentsAPI interface {
	ListContents(ctx context.Context, owner, project, path, ref string) (*github.Contents, error)
}

// BranchDetector finds a repository's default branch
type BranchDetector interface {
	DefaultBranch(ctx context.Context, repoURL string) (string, error)
}

// Resolver turns repository URLs into resolved locations
type Resolver struct {
	api           ContentsAPI
	pattern       *Pattern
	cache         *BranchCache
	detector      BranchDetector
	defaultBranch string
	strict        bool
	logger        *utils.Logger
}

// Options contains options for creating a Resolver
type Options struct {
	API    ContentsAPI
	WebURL string
	// Cache is shared across requests; a fresh one is created when nil
	Cache *BranchCache
	// Detector is optional; DefaultBranch is used when it is nil or fails
	Detector      BranchDetector
	DefaultBranch string
	// StrictProbing aborts on any probe failure other than not-found
	StrictProbing bool
	Logger        *utils.Logger
}

// New creates a Resolver
func New(opts Options) *Resolver {
	if opts.WebURL == "" {
		opts.WebURL = github.DefaultWebURL
	}
	if opts.Cache == nil {
		opts.Cache = NewBranchCache(opts.WebURL)
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = "master"
	}
	return &Resolver{
		api:           opts.API,
		pattern:       NewPattern(opts.WebURL),
		cache:         opts.Cache,
		detector:      opts.Detector,
		defaultBranch: opts.DefaultBranch,
		strict:        opts.StrictProbing,
		logger:        opts.Logger,
	}
}

// Cache returns the branch cache
func (r *Resolver) Cache() *BranchCache {
	return r.cache
}

// Pattern returns the URL grammar
func (r *Resolver) Pattern() *Pattern {
	return r.pattern
}

// Resolve disambiguates rawURL into (owner, project, branch, path).
//
// URLs without a tree/blob segment address the repository root on the
// default branch. URLs whose ref is followed by nothing need no probing.
// Otherwise the branch cache is consulted, then the contents endpoint is
// probed with ever longer branch candidates until one is not "not found".
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedLocation, error) {
	rawURL = strings.TrimSpace(rawURL)
	h, ok := r.pattern.Parse(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnresolvableURL, rawURL)
	}

	loc := &domain.ResolvedLocation{
		Owner:    h.Owner,
		Project:  h.Project,
		Kind:     h.Kind,
		InputURL: rawURL,
		RootURL:  r.pattern.Base() + "/" + h.Owner + "/" + h.Project,
	}

	if !h.HasRef() {
		loc.Kind = domain.KindUnspecified
		loc.Branch = r.detectDefaultBranch(ctx, loc.RootURL)
		return loc, nil
	}

	if len(h.Rest) == 0 {
		loc.Branch = h.Ref
		return loc, nil
	}

	if cached, ok := r.cache.Lookup(rawURL); ok {
		if r.logger != nil {
			r.logger.Debug().
				Str("url", rawURL).
				Str("branch", cached.Branch).
				Msg("Branch cache hit")
		}
		return cached, nil
	}

	branch, p, err := r.probe(ctx, h)
	if err != nil {
		return nil, err
	}

	r.cache.Add(h.Owner, h.Project, branch)
	loc.Branch = branch
	loc.Path = p
	return loc, nil
}

// probe shifts one segment at a time from the path candidate onto the branch
// candidate. It runs at most len(segments) requests.
func (r *Resolver) probe(ctx context.Context, h Hypothesis) (string, string, error) {
	segs := h.Segments()
	start := time.Now()

	var lastErr, lastNotFound error

	for i := 1; i <= len(segs); i++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		branch := strings.Join(segs[:i], "/")
		p := strings.Join(segs[i:], "/")

		_, err := r.api.ListContents(ctx, h.Owner, h.Project, p, branch)
		if r.logger != nil {
			r.logger.Debug().
				Str("branch", branch).
				Str("path", p).
				Int("attempt", i).
				Bool("ok", err == nil).
				Msg("Probing branch candidate")
		}

		if err == nil {
			if r.logger != nil {
				r.logger.Debug().
					Str("branch", branch).
					Int("probes", i).
					Dur("duration", time.Since(start)).
					Msg("Branch confirmed")
			}
			return branch, p, nil
		}

		if domain.IsNotFound(err) {
			lastNotFound = err
			continue
		}
		lastErr = err
		if r.strict {
			return "", "", fmt.Errorf("probe %s/%s at %q: %w", h.Owner, h.Project, branch, err)
		}
	}

	if lastNotFound == nil {
		return "", "", fmt.Errorf("probe %s/%s: every candidate failed: %w", h.Owner, h.Project, lastErr)
	}
	return "", "", fmt.Errorf("probe %s/%s: no branch matches %q: %w", h.Owner, h.Project, strings.Join(segs, "/"), lastNotFound)
}

func (r *Resolver) detectDefaultBranch(ctx context.Context, rootURL string) string {
	if r.detector == nil {
		return r.defaultBranch
	}

	branch, err := r.detector.DefaultBranch(ctx, rootURL+".git")
	if err != nil || branch == "" {
		if r.logger != nil {
			r.logger.Warn().Err(err).
				Str("fallback", r.defaultBranch).
				Msg("Failed to detect default branch")
		}
		return r.defaultBranch
	}
	return branch
}
