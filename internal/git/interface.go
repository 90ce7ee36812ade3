package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Client defines the interface for remote Git operations
type Client interface {
	ListRemote(ctx context.Context, url string, auth transport.AuthMethod) ([]*plumbing.Reference, error)
}
