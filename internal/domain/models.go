package domain

import (
	"path"
	"strings"
)

// Kind is the link kind captured from a repository URL
type Kind string

const (
	KindTree        Kind = "tree"
	KindBlob        Kind = "blob"
	KindUnspecified Kind = ""
)

// ResolvedLocation is a fully disambiguated (owner, project, branch, path) tuple.
// Branch is never empty and Path never has a trailing separator.
type ResolvedLocation struct {
	Owner    string `json:"owner" yaml:"owner"`
	Project  string `json:"project" yaml:"project"`
	Branch   string `json:"branch" yaml:"branch"`
	Path     string `json:"path" yaml:"path"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	InputURL string `json:"input_url" yaml:"input_url"`
	RootURL  string `json:"root_url" yaml:"root_url"`
}

// IsRoot returns true when the location addresses the repository root
func (l *ResolvedLocation) IsRoot() bool {
	return l.Path == ""
}

// Name returns the last path segment, or the project name at the root
func (l *ResolvedLocation) Name() string {
	if l.Path == "" {
		return l.Project
	}
	return path.Base(l.Path)
}

// TreeEntry is one file discovered under a resolved location.
// RelativePath is rooted at (and excludes) the requested directory.
type TreeEntry struct {
	Locator      string   `json:"locator"`
	RelativePath []string `json:"relative_path"`
	SHA          string   `json:"sha,omitempty"`
	Size         int64    `json:"size,omitempty"`
}

// Path joins the relative path segments with '/'
func (e TreeEntry) Path() string {
	return strings.Join(e.RelativePath, "/")
}

// FetchedFile is the content of one TreeEntry, base64 encoded at rest
type FetchedFile struct {
	RelativePath string
	Content      []byte
	FromCache    bool
}

// Status is the externally visible progress status
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPreparing  Status = "prepare"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// IsTerminal returns true for Done and Error
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusError
}

// ProgressState is the accounting snapshot held by the progress tracker
type ProgressState struct {
	CompletedCount int    `json:"completed_count"`
	TotalCount     int    `json:"total_count"`
	Status         Status `json:"status"`
	Message        string `json:"message"`
	Percent        int    `json:"percent"`
}
