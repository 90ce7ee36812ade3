package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// Hypothesis is the raw split of a repository URL. Ref is only the first
// segment after tree/blob; because branch names may contain '/', some
// leading segments of Rest may still belong to the branch.
type Hypothesis struct {
	Owner   string
	Project string
	Kind    domain.Kind
	Ref     string
	Rest    []string
}

// HasRef reports whether the URL carried a tree/blob segment with a ref
func (h Hypothesis) HasRef() bool {
	return h.Ref != ""
}

// Segments returns the ref followed by the remaining path segments
func (h Hypothesis) Segments() []string {
	return append([]string{h.Ref}, h.Rest...)
}

// Pattern parses repository URLs on one web host
type Pattern struct {
	base string
	re   *regexp.Regexp
}

// NewPattern builds the grammar <base>/<owner>/<project>[/(tree|blob)/<ref>[/<path>]]
// for a web base URL such as https://github.com
func NewPattern(webURL string) *Pattern {
	base := strings.TrimRight(webURL, "/")
	return &Pattern{
		base: base,
		re: regexp.MustCompile(`^` + regexp.QuoteMeta(base) +
			`/([^/?#]+)/([^/?#]+)(?:/(tree|blob)/([^/?#]+)(?:/([^?#]*))?)?`),
	}
}

// Base returns the web base URL the pattern was built for
func (p *Pattern) Base() string {
	return p.base
}

// Parse splits rawURL into a hypothesis. It performs no I/O and never fails
// on well-formed input; anything outside the grammar yields false.
func (p *Pattern) Parse(rawURL string) (Hypothesis, bool) {
	m := p.re.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return Hypothesis{}, false
	}

	h := Hypothesis{
		Owner:   unescape(m[1]),
		Project: strings.TrimSuffix(unescape(m[2]), ".git"),
		Kind:    domain.KindUnspecified,
	}
	if h.Project == "" {
		return Hypothesis{}, false
	}
	if m[3] == "" {
		return h, true
	}

	h.Kind = domain.Kind(m[3])
	h.Ref = unescape(m[4])
	h.Rest = splitPath(m[5])
	return h, true
}

// Parse is a convenience for NewPattern(webURL).Parse(rawURL)
func Parse(webURL, rawURL string) (Hypothesis, bool) {
	return NewPattern(webURL).Parse(rawURL)
}

// splitPath splits a URL path into decoded segments, dropping empty ones so
// trailing and doubled separators disappear.
func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		segs = append(segs, unescape(s))
	}
	return segs
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
