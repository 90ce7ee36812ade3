package app

import (
	"net/url"
	"path"
	"strings"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// RequestType is the download flavour chosen for a URL
type RequestType string

const (
	// RequestRepository streams the whole-repository archive
	RequestRepository RequestType = "repository"
	// RequestSubtree aggregates a directory into a zip
	RequestSubtree RequestType = "subtree"
	// RequestFile downloads one file through the raw host
	RequestFile RequestType = "file"
	// RequestRaw downloads a URL that is already on the raw host
	RequestRaw RequestType = "raw"
)

// DetectRequest determines the request type of a resolved location
func DetectRequest(loc *domain.ResolvedLocation) RequestType {
	switch {
	case loc.Kind == domain.KindBlob && !loc.IsRoot():
		return RequestFile
	case loc.IsRoot():
		return RequestRepository
	default:
		return RequestSubtree
	}
}

// IsRawURL reports whether rawURL points at a file on the raw content host
func IsRawURL(rawURL, rawBase string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if !utils.IsHTTPURL(rawURL) || !utils.IsSameDomain(rawURL, rawBase) {
		return false
	}
	base, err := url.Parse(rawBase)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	prefix := strings.TrimRight(base.Path, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return false
	}
	// owner/project/branch/file at minimum
	return len(strings.Split(strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"), "/")) >= 4
}

// rawLocation describes a raw host URL. The branch cannot be separated from
// the path without probing, so only owner, project and the file name are set.
func rawLocation(rawURL, rawBase string) (*domain.ResolvedLocation, string) {
	base, _ := url.Parse(rawBase)
	u, _ := url.Parse(strings.TrimSpace(rawURL))

	prefix := strings.TrimRight(base.Path, "/") + "/"
	segs := strings.Split(strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"), "/")
	loc := &domain.ResolvedLocation{
		Owner:    segs[0],
		Project:  segs[1],
		Kind:     domain.KindBlob,
		InputURL: strings.TrimSpace(rawURL),
	}
	return loc, path.Base(u.Path)
}
