package testutil

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
)

// FakeRepo describes one repository served by FakeGitHub.
// Branches maps a branch name (which may contain '/') to its files, keyed by
// repository-relative path.
type FakeRepo struct {
	Owner         string
	Project       string
	DefaultBranch string
	Branches      map[string]map[string]string
}

// ContentsRequest records one call to the contents endpoint
type ContentsRequest struct {
	Ref  string
	Path string
}

// FakeGitHub serves the API, raw and archive endpoints for a FakeRepo.
//
// Layout: API at URL+"/api", raw files at URL+"/raw", web (archives) at URL.
type FakeGitHub struct {
	*httptest.Server
	Repo FakeRepo

	// TreeLimit truncates recursive tree listings longer than it (0 = unlimited)
	TreeLimit int

	mu           sync.Mutex
	contents     []ContentsRequest
	treeCalls    int
	blobCalls    int
	rawCalls     int
	archiveCalls int
	authHeaders  []string
	trees        map[string]treeRef
	blobs        map[string]string
	failBlobs    map[string]int
	failContents map[ContentsRequest]int
	blobHook     func(sha string)
}

type treeRef struct {
	branch string
	dir    string
}

// NewFakeGitHub starts a fake hosting service for repo
func NewFakeGitHub(t *testing.T, repo FakeRepo) *FakeGitHub {
	t.Helper()

	f := &FakeGitHub{
		Repo:         repo,
		trees:        make(map[string]treeRef),
		blobs:        make(map[string]string),
		failBlobs:    make(map[string]int),
		failContents: make(map[ContentsRequest]int),
	}
	for branch, files := range repo.Branches {
		f.trees[branch] = treeRef{branch: branch}
		for p, content := range files {
			f.blobs[BlobSHA(content)] = content
			for dir := path.Dir(p); ; dir = path.Dir(dir) {
				if dir == "." {
					dir = ""
				}
				f.trees[treeSHA(branch, dir)] = treeRef{branch: branch, dir: dir}
				if dir == "" {
					break
				}
			}
		}
	}

	f.Server = httptest.NewServer(http.HandlerFunc(f.route))
	t.Cleanup(f.Server.Close)
	return f
}

// APIURL returns the API base URL
func (f *FakeGitHub) APIURL() string { return f.URL + "/api" }

// RawURL returns the raw content base URL
func (f *FakeGitHub) RawURL() string { return f.URL + "/raw" }

// WebURL returns the web base URL
func (f *FakeGitHub) WebURL() string { return f.URL }

// RepoWebURL returns the web URL of the repository, optionally followed by extra path
func (f *FakeGitHub) RepoWebURL(extra string) string {
	u := f.URL + "/" + f.Repo.Owner + "/" + f.Repo.Project
	if extra != "" {
		u += "/" + strings.TrimPrefix(extra, "/")
	}
	return u
}

// TreeURL returns the trees API URL of dir on branch. The branch root is
// also reachable by branch name.
func (f *FakeGitHub) TreeURL(branch, dir string) string {
	return fmt.Sprintf("%s/repos/%s/%s/git/trees/%s", f.APIURL(), f.Repo.Owner, f.Repo.Project, treeSHA(branch, dir))
}

// FailBlob makes blob requests for the file at p answer with status
func (f *FakeGitHub) FailBlob(p string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failBlobs[BlobSHA(f.contentOf(p))] = status
}

// FailContents makes the contents request (ref, p) answer with status
func (f *FakeGitHub) FailContents(ref, p string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failContents[ContentsRequest{Ref: ref, Path: p}] = status
}

// OnBlob registers a hook invoked with the blob sha before each blob is served
func (f *FakeGitHub) OnBlob(hook func(sha string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobHook = hook
}

// ContentsRequests returns the recorded contents requests in arrival order
func (f *FakeGitHub) ContentsRequests() []ContentsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ContentsRequest(nil), f.contents...)
}

// TreeCalls returns the number of tree requests
func (f *FakeGitHub) TreeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.treeCalls
}

// BlobCalls returns the number of blob requests
func (f *FakeGitHub) BlobCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobCalls
}

// RawCalls returns the number of raw file requests
func (f *FakeGitHub) RawCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rawCalls
}

// ArchiveCalls returns the number of archive requests
func (f *FakeGitHub) ArchiveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.archiveCalls
}

// AuthHeaders returns every Authorization header received
func (f *FakeGitHub) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

// ArchiveBody is the payload served for a whole-repository archive of branch
func ArchiveBody(branch string) string {
	return "PK archive of " + branch
}

// BlobSHA returns the git object id of a blob with content
func BlobSHA(content string) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00%s", len(content), content)
	return hex.EncodeToString(h.Sum(nil))
}

func treeSHA(branch, dir string) string {
	sum := sha1.Sum([]byte("tree " + branch + "\x00" + dir))
	return hex.EncodeToString(sum[:])
}

func (f *FakeGitHub) contentOf(p string) string {
	for _, files := range f.Repo.Branches {
		if c, ok := files[p]; ok {
			return c
		}
	}
	return ""
}

func (f *FakeGitHub) route(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
	f.mu.Unlock()

	repoPrefix := "/" + f.Repo.Owner + "/" + f.Repo.Project + "/"
	apiPrefix := "/api/repos" + repoPrefix
	rawPrefix := "/raw" + repoPrefix

	p := r.URL.Path
	switch {
	case strings.HasPrefix(p, apiPrefix+"contents"):
		rest := strings.TrimPrefix(strings.TrimPrefix(p, apiPrefix+"contents"), "/")
		f.handleContents(w, r, r.URL.Query().Get("ref"), strings.TrimSuffix(rest, "/"))
	case strings.HasPrefix(p, apiPrefix+"git/trees/"):
		f.handleTree(w, r, strings.TrimPrefix(p, apiPrefix+"git/trees/"))
	case strings.HasPrefix(p, apiPrefix+"git/blobs/"):
		f.handleBlob(w, strings.TrimPrefix(p, apiPrefix+"git/blobs/"))
	case strings.HasPrefix(p, rawPrefix):
		f.handleRaw(w, strings.TrimPrefix(p, rawPrefix))
	case strings.HasPrefix(p, repoPrefix+"archive/") && strings.HasSuffix(p, ".zip"):
		f.handleArchive(w, strings.TrimSuffix(strings.TrimPrefix(p, repoPrefix+"archive/"), ".zip"))
	default:
		writeError(w, http.StatusNotFound, "Not Found")
	}
}

func (f *FakeGitHub) handleContents(w http.ResponseWriter, r *http.Request, ref, p string) {
	f.mu.Lock()
	f.contents = append(f.contents, ContentsRequest{Ref: ref, Path: p})
	status := f.failContents[ContentsRequest{Ref: ref, Path: p}]
	f.mu.Unlock()

	if status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}

	files, ok := f.Repo.Branches[ref]
	if !ok {
		writeError(w, http.StatusNotFound, "No commit found for the ref "+ref)
		return
	}

	if content, ok := files[p]; ok {
		writeJSON(w, f.fileEntry(ref, p, content))
		return
	}

	children := map[string]map[string]any{}
	prefix := ""
	if p != "" {
		prefix = p + "/"
	}
	for fp, content := range files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rest := strings.TrimPrefix(fp, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if _, seen := children[name]; seen {
			continue
		}
		if isDir {
			children[name] = f.dirEntry(ref, prefix+name)
		} else {
			children[name] = f.fileEntry(ref, fp, content)
		}
	}
	if len(children) == 0 {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, children[name])
	}
	writeJSON(w, out)
}

func (f *FakeGitHub) fileEntry(ref, p, content string) map[string]any {
	sha := BlobSHA(content)
	return map[string]any{
		"type":         "file",
		"name":         path.Base(p),
		"path":         p,
		"sha":          sha,
		"size":         len(content),
		"git_url":      fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s", f.APIURL(), f.Repo.Owner, f.Repo.Project, sha),
		"download_url": fmt.Sprintf("%s/%s/%s/%s/%s", f.RawURL(), f.Repo.Owner, f.Repo.Project, ref, p),
	}
}

func (f *FakeGitHub) dirEntry(ref, p string) map[string]any {
	return map[string]any{
		"type":    "dir",
		"name":    path.Base(p),
		"path":    p,
		"sha":     treeSHA(ref, p),
		"git_url": f.TreeURL(ref, p),
	}
}

func (f *FakeGitHub) handleTree(w http.ResponseWriter, r *http.Request, sha string) {
	f.mu.Lock()
	f.treeCalls++
	ref, ok := f.trees[sha]
	limit := f.TreeLimit
	f.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	recursive := r.URL.Query().Get("recursive") != ""

	prefix := ""
	if ref.dir != "" {
		prefix = ref.dir + "/"
	}
	seen := map[string]bool{}
	var items []map[string]any
	for fp, content := range f.Repo.Branches[ref.branch] {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rel := strings.TrimPrefix(fp, prefix)
		segs := strings.Split(rel, "/")
		if !recursive && len(segs) > 1 {
			if !seen[segs[0]] {
				seen[segs[0]] = true
				items = append(items, map[string]any{"path": segs[0], "type": "tree", "mode": "040000", "sha": treeSHA(ref.branch, prefix+segs[0]), "url": f.TreeURL(ref.branch, prefix+segs[0])})
			}
			continue
		}
		for i := 1; i < len(segs); i++ {
			dir := strings.Join(segs[:i], "/")
			if !seen[dir] {
				seen[dir] = true
				items = append(items, map[string]any{"path": dir, "type": "tree", "mode": "040000", "sha": treeSHA(ref.branch, prefix+dir), "url": f.TreeURL(ref.branch, prefix+dir)})
			}
		}
		sha := BlobSHA(content)
		items = append(items, map[string]any{
			"path": rel,
			"type": "blob",
			"mode": "100644",
			"sha":  sha,
			"size": len(content),
			"url":  fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s", f.APIURL(), f.Repo.Owner, f.Repo.Project, sha),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i]["path"].(string) < items[j]["path"].(string) })

	truncated := false
	if limit > 0 && len(items) > limit {
		items = items[:limit]
		truncated = true
	}
	writeJSON(w, map[string]any{"sha": sha, "url": f.TreeURL(ref.branch, ref.dir), "tree": items, "truncated": truncated})
}

func (f *FakeGitHub) handleBlob(w http.ResponseWriter, sha string) {
	f.mu.Lock()
	f.blobCalls++
	content, ok := f.blobs[sha]
	status := f.failBlobs[sha]
	hook := f.blobHook
	f.mu.Unlock()

	if hook != nil {
		hook(sha)
	}
	if status != 0 {
		writeError(w, status, http.StatusText(status))
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	var wrapped strings.Builder
	for len(encoded) > 60 {
		wrapped.WriteString(encoded[:60])
		wrapped.WriteByte('\n')
		encoded = encoded[60:]
	}
	wrapped.WriteString(encoded)

	writeJSON(w, map[string]any{"sha": sha, "size": len(content), "content": wrapped.String(), "encoding": "base64"})
}

func (f *FakeGitHub) handleRaw(w http.ResponseWriter, rest string) {
	f.mu.Lock()
	f.rawCalls++
	f.mu.Unlock()

	for branch, files := range f.Repo.Branches {
		if !strings.HasPrefix(rest, branch+"/") {
			continue
		}
		if content, ok := files[strings.TrimPrefix(rest, branch+"/")]; ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(content))
			return
		}
	}
	http.Error(w, "404: Not Found", http.StatusNotFound)
}

func (f *FakeGitHub) handleArchive(w http.ResponseWriter, branch string) {
	f.mu.Lock()
	f.archiveCalls++
	f.mu.Unlock()

	if _, ok := f.Repo.Branches[branch]; !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write([]byte(ArchiveBody(branch)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
