package resolver

import (
	"regexp"
	"strings"
	"sync"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

type cacheEntry struct {
	owner   string
	project string
	branch  string
	rootURL string
	pattern *regexp.Regexp
}

// BranchCache remembers confirmed (owner, project, branch) triples for the
// lifetime of the process. Entries are never evicted; git forbids a branch
// from being a path prefix of another, so a confirmed entry cannot shadow a
// longer branch of the same repository.
type BranchCache struct {
	base string

	mu      sync.RWMutex
	entries []cacheEntry
}

// NewBranchCache creates an empty cache for URLs under webURL
func NewBranchCache(webURL string) *BranchCache {
	return &BranchCache{base: strings.TrimRight(webURL, "/")}
}

// Add records a confirmed branch. Adding a known triple is a no-op.
func (c *BranchCache) Add(owner, project, branch string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.owner == owner && e.project == project && e.branch == branch {
			return
		}
	}

	root := c.base + "/" + owner + "/" + project
	c.entries = append(c.entries, cacheEntry{
		owner:   owner,
		project: project,
		branch:  branch,
		rootURL: root,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(root) +
			`/(tree|blob)/` + regexp.QuoteMeta(branch) + `(?:/([^?#]*))?(?:[?#].*)?$`),
	})
}

// Lookup returns the location for rawURL when it references a cached branch
func (c *BranchCache) Lookup(rawURL string) (*domain.ResolvedLocation, bool) {
	rawURL = strings.TrimSpace(rawURL)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		m := e.pattern.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		return &domain.ResolvedLocation{
			Owner:    e.owner,
			Project:  e.project,
			Branch:   e.branch,
			Path:     strings.Join(splitPath(m[2]), "/"),
			Kind:     domain.Kind(m[1]),
			InputURL: rawURL,
			RootURL:  e.rootURL,
		}, true
	}
	return nil, false
}

// Len returns the number of cached branches
func (c *BranchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
