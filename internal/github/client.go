package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/utils"
	"github.com/quantmind-br/gitzip-go/pkg/version"
)

// Public endpoints of the hosting service
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultWebURL = "https://github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
)

const acceptJSON = "application/vnd.github+json"

// Client talks to the hosting service's REST API, raw host and web host.
type Client struct {
	httpClient *http.Client
	apiURL     string
	webURL     string
	rawURL     string
	userAgent  string
	retrier    *Retrier
	logger     *utils.Logger

	mu    sync.RWMutex
	token string
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	HTTPClient *http.Client
	APIURL     string
	WebURL     string
	RawURL     string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Logger     *utils.Logger
}

// NewClient creates a new Client
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = createDefaultHTTPClient(opts.Timeout)
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.WebURL == "" {
		opts.WebURL = DefaultWebURL
	}
	if opts.RawURL == "" {
		opts.RawURL = DefaultRawURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}

	retryOpts := DefaultRetrierOptions()
	retryOpts.MaxRetries = opts.MaxRetries
	retryOpts.Logger = opts.Logger

	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		webURL:     strings.TrimRight(opts.WebURL, "/"),
		rawURL:     strings.TrimRight(opts.RawURL, "/"),
		userAgent:  opts.UserAgent,
		retrier:    NewRetrier(retryOpts),
		logger:     opts.Logger,
		token:      opts.Token,
	}
}

func createDefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// SetToken sets the bearer credential applied to every later request.
// An empty token disables authentication.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current credential
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// APIURL returns the API base URL
func (c *Client) APIURL() string { return c.apiURL }

// WebURL returns the web base URL
func (c *Client) WebURL() string { return c.webURL }

// RawURL returns the raw content base URL
func (c *Client) RawURL() string { return c.rawURL }

// ContentsURL builds the contents endpoint for path at ref
func (c *Client) ContentsURL(owner, project, path, ref string) string {
	u := utils.JoinURL(c.apiURL, "repos", owner, project, "contents", path)
	return utils.WithQuery(u, map[string]string{"ref": ref})
}

// TreeURL builds the trees endpoint addressed by branch name
func (c *Client) TreeURL(owner, project, branch string) string {
	return utils.JoinURL(c.apiURL, "repos", owner, project, "git", "trees") + "/" + url.PathEscape(branch)
}

// RawFileURL builds the raw content URL of a file
func (c *Client) RawFileURL(owner, project, branch, path string) string {
	return utils.JoinURL(c.rawURL, owner, project, branch, path)
}

// ArchiveURL builds the whole-repository archive URL for branch
func (c *Client) ArchiveURL(owner, project, branch string) string {
	return utils.JoinURL(c.webURL, owner, project, "archive", branch) + ".zip"
}

// RepoURL builds the web URL of the repository
func (c *Client) RepoURL(owner, project string) string {
	return utils.JoinURL(c.webURL, owner, project)
}

// ListContents lists path at ref. A file path yields Contents.File,
// a directory yields Contents.Entries.
func (c *Client) ListContents(ctx context.Context, owner, project, path, ref string) (*Contents, error) {
	body, err := c.getBody(ctx, c.ContentsURL(owner, project, path, ref))
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []ContentEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode contents listing: %w", err)
		}
		return &Contents{Entries: entries}, nil
	}

	var file ContentEntry
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("decode contents descriptor: %w", err)
	}
	return &Contents{File: &file}, nil
}

// GetTree fetches a recursive tree listing from a trees API URL
func (c *Client) GetTree(ctx context.Context, treeURL string) (*Tree, error) {
	var tree Tree
	if err := c.getJSON(ctx, utils.WithQuery(treeURL, map[string]string{"recursive": "1"}), &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// GetBlob fetches a blob from a blobs API URL
func (c *Client) GetBlob(ctx context.Context, blobURL string) (*Blob, error) {
	var blob Blob
	if err := c.getJSON(ctx, blobURL, &blob); err != nil {
		return nil, err
	}
	return &blob, nil
}

// Download opens a streaming GET of rawURL. The caller closes the body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.getBody(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) getBody(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, rawURL, acceptJSON)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}

// do performs a GET with the retry policy and returns a 2xx response
func (c *Client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	start := time.Now()
	resp, err := RetryWithValue(ctx, c.retrier, func() (*http.Response, error) {
		return c.doOnce(ctx, rawURL, accept)
	})

	if c.logger != nil {
		evt := c.logger.Debug().
			Str("url", rawURL).
			Dur("duration", time.Since(start))
		if err != nil {
			evt = evt.Err(err)
		}
		evt.Msg("GET")
	}
	return resp, err
}

func (c *Client) doOnce(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if token := c.Token(); token != "" && c.ownsHost(rawURL) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, checkResponse(rawURL, resp)
}

// ownsHost limits the credential to the configured service hosts
func (c *Client) ownsHost(rawURL string) bool {
	return utils.IsSameDomain(rawURL, c.apiURL) ||
		utils.IsSameDomain(rawURL, c.rawURL) ||
		utils.IsSameDomain(rawURL, c.webURL)
}

func checkResponse(rawURL string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := ""
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil {
		message = apiErr.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	upstream := domain.NewUpstreamError(rawURL, resp.StatusCode, message)
	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		upstream.RateLimit = true
	}

	if ShouldRetryStatus(resp.StatusCode) {
		return &domain.RetryableError{
			Err:        upstream,
			RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
		}
	}
	return upstream
}
