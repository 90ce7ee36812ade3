package git

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// BranchDetector finds the default branch of a remote repository
type BranchDetector struct {
	client Client
	logger *utils.Logger

	mu    sync.RWMutex
	token string
}

// BranchDetectorOptions contains options for creating a BranchDetector
type BranchDetectorOptions struct {
	Client Client
	Token  string
	Logger *utils.Logger
}

// NewBranchDetector creates a BranchDetector. A nil Client uses go-git.
func NewBranchDetector(opts BranchDetectorOptions) *BranchDetector {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}
	return &BranchDetector{
		client: client,
		token:  opts.Token,
		logger: opts.Logger,
	}
}

// SetToken changes the credential used for later lookups
func (d *BranchDetector) SetToken(token string) {
	d.mu.Lock()
	d.token = token
	d.mu.Unlock()
}

func (d *BranchDetector) auth() transport.AuthMethod {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: d.token}
}

// DefaultBranch returns the branch HEAD points to on the remote at repoURL
func (d *BranchDetector) DefaultBranch(ctx context.Context, repoURL string) (string, error) {
	refs, err := d.client.ListRemote(ctx, repoURL, d.auth())
	if err != nil {
		return "", fmt.Errorf("ls-remote %s: %w", repoURL, err)
	}

	branch, err := headBranch(refs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", repoURL, err)
	}

	if d.logger != nil {
		d.logger.Debug().
			Str("repo", repoURL).
			Str("branch", branch).
			Msg("Detected default branch")
	}
	return branch, nil
}

// headBranch reads HEAD from an advertised reference list. Servers that do not
// advertise the symref get HEAD matched against the branch heads by hash.
func headBranch(refs []*plumbing.Reference) (string, error) {
	var head *plumbing.Reference
	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD {
			head = ref
			break
		}
	}
	if head == nil {
		return "", fmt.Errorf("could not determine default branch")
	}

	if head.Type() == plumbing.SymbolicReference {
		if head.Target().IsBranch() {
			return head.Target().Short(), nil
		}
		return "", fmt.Errorf("HEAD points at non-branch %s", head.Target())
	}

	for _, ref := range refs {
		if ref.Name().IsBranch() && ref.Hash() == head.Hash() {
			return ref.Name().Short(), nil
		}
	}
	return "", fmt.Errorf("could not determine default branch")
}
