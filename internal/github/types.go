package github

// Entry types returned by the contents and trees endpoints
const (
	TypeFile = "file"
	TypeDir  = "dir"
	TypeBlob = "blob"
	TypeTree = "tree"
)

// ContentEntry is one item of a contents listing, or the single descriptor
// returned when the contents path is a file.
type ContentEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	GitURL      string `json:"git_url"`
	DownloadURL string `json:"download_url"`
}

// Contents is the decoded response of the contents endpoint
type Contents struct {
	// File is set when the path addressed a single file
	File *ContentEntry
	// Entries holds the immediate children when the path addressed a directory
	Entries []ContentEntry
}

// IsFile reports whether the listing addressed a single file
func (c *Contents) IsFile() bool {
	return c.File != nil
}

// TreeItem is one entry of a recursive tree listing
type TreeItem struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Tree is the decoded response of the git trees endpoint
type Tree struct {
	SHA       string     `json:"sha"`
	URL       string     `json:"url"`
	Tree      []TreeItem `json:"tree"`
	Truncated bool       `json:"truncated"`
}

// Blob is the decoded response of the git blobs endpoint
type Blob struct {
	SHA      string `json:"sha"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type apiError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
