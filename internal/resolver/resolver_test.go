package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/github"
	"github.com/quantmind-br/gitzip-go/internal/testutil"
)

type stubDetector struct {
	branch string
	err    error
	calls  []string
}

func (d *stubDetector) DefaultBranch(_ context.Context, repoURL string) (string, error) {
	d.calls = append(d.calls, repoURL)
	return d.branch, d.err
}

func newFake(t *testing.T) *testutil.FakeGitHub {
	return testutil.NewFakeGitHub(t, testutil.FakeRepo{
		Owner:   "acme",
		Project: "widgets",
		Branches: map[string]map[string]string{
			"main": {
				"README.md":    "hello",
				"src/lib/a.ts": "export const a = 1",
			},
			"release/2.1": {
				"docs/index.md": "# docs",
			},
		},
	})
}

func newResolver(t *testing.T, f *testutil.FakeGitHub, strict bool, detector BranchDetector) *Resolver {
	client := github.NewClient(github.ClientOptions{
		APIURL: f.APIURL(),
		WebURL: f.WebURL(),
		RawURL: f.RawURL(),
	})
	return New(Options{
		API:           client,
		WebURL:        f.WebURL(),
		Detector:      detector,
		StrictProbing: strict,
		Logger:        testutil.NewTestLogger(t),
	})
}

func TestResolve_SlashBranch(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)
	ctx := context.Background()

	loc, err := r.Resolve(ctx, f.RepoWebURL("tree/release/2.1/docs"))
	require.NoError(t, err)
	assert.Equal(t, "acme", loc.Owner)
	assert.Equal(t, "widgets", loc.Project)
	assert.Equal(t, "release/2.1", loc.Branch)
	assert.Equal(t, "docs", loc.Path)
	assert.Equal(t, domain.KindTree, loc.Kind)
	assert.Equal(t, f.RepoWebURL(""), loc.RootURL)

	assert.Equal(t, []testutil.ContentsRequest{
		{Ref: "release", Path: "2.1/docs"},
		{Ref: "release/2.1", Path: "docs"},
	}, f.ContentsRequests())
	assert.Equal(t, 1, r.Cache().Len())
}

func TestResolve_CacheHitSkipsProbing(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)
	ctx := context.Background()

	first, err := r.Resolve(ctx, f.RepoWebURL("tree/release/2.1/docs"))
	require.NoError(t, err)
	probes := len(f.ContentsRequests())

	second, err := r.Resolve(ctx, f.RepoWebURL("tree/release/2.1/docs"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	blob, err := r.Resolve(ctx, f.RepoWebURL("blob/release/2.1/docs/index.md"))
	require.NoError(t, err)
	assert.Equal(t, domain.KindBlob, blob.Kind)
	assert.Equal(t, "docs/index.md", blob.Path)

	assert.Len(t, f.ContentsRequests(), probes)
}

func TestResolve_SingleSegmentBranch(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)

	loc, err := r.Resolve(context.Background(), f.RepoWebURL("tree/main/src/lib"))
	require.NoError(t, err)
	assert.Equal(t, "main", loc.Branch)
	assert.Equal(t, "src/lib", loc.Path)
	assert.Len(t, f.ContentsRequests(), 1)
}

func TestResolve_RefWithoutPath(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)

	loc, err := r.Resolve(context.Background(), f.RepoWebURL("tree/main"))
	require.NoError(t, err)
	assert.Equal(t, "main", loc.Branch)
	assert.Empty(t, loc.Path)
	assert.True(t, loc.IsRoot())
	assert.Empty(t, f.ContentsRequests())
	assert.Equal(t, 0, r.Cache().Len())
}

func TestResolve_Unspecified(t *testing.T) {
	t.Run("detected default branch", func(t *testing.T) {
		f := newFake(t)
		d := &stubDetector{branch: "main"}
		r := newResolver(t, f, true, d)

		loc, err := r.Resolve(context.Background(), f.RepoWebURL("")+"//")
		require.NoError(t, err)
		assert.Equal(t, domain.KindUnspecified, loc.Kind)
		assert.Equal(t, "main", loc.Branch)
		assert.Empty(t, loc.Path)
		assert.Equal(t, []string{f.RepoWebURL("") + ".git"}, d.calls)
		assert.Empty(t, f.ContentsRequests())
	})

	t.Run("detector failure falls back", func(t *testing.T) {
		f := newFake(t)
		r := newResolver(t, f, true, &stubDetector{err: errors.New("unreachable")})

		loc, err := r.Resolve(context.Background(), f.RepoWebURL(""))
		require.NoError(t, err)
		assert.Equal(t, "master", loc.Branch)
	})

	t.Run("no detector", func(t *testing.T) {
		f := newFake(t)
		r := newResolver(t, f, true, nil)

		loc, err := r.Resolve(context.Background(), f.RepoWebURL("pulls"))
		require.NoError(t, err)
		assert.Equal(t, "master", loc.Branch)
		assert.Equal(t, domain.KindUnspecified, loc.Kind)
	})
}

func TestResolve_Unresolvable(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)

	for _, u := range []string{"https://example.com/acme/widgets", f.URL + "/acme", "garbage"} {
		_, err := r.Resolve(context.Background(), u)
		assert.ErrorIs(t, err, domain.ErrUnresolvableURL, u)
	}
	assert.Empty(t, f.ContentsRequests())
}

func TestResolve_NoBranchMatches(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)

	_, err := r.Resolve(context.Background(), f.RepoWebURL("tree/nope/a/b"))
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, f.ContentsRequests(), 3)
	assert.Equal(t, 0, r.Cache().Len())
}

func TestResolve_ProbeFailure(t *testing.T) {
	t.Run("strict aborts", func(t *testing.T) {
		f := newFake(t)
		f.FailContents("release", "2.1/docs", http.StatusInternalServerError)
		r := newResolver(t, f, true, nil)

		_, err := r.Resolve(context.Background(), f.RepoWebURL("tree/release/2.1/docs"))
		require.Error(t, err)
		assert.False(t, domain.IsNotFound(err))

		var upstream *domain.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
		assert.Len(t, f.ContentsRequests(), 1)
	})

	t.Run("lenient continues", func(t *testing.T) {
		f := newFake(t)
		f.FailContents("release", "2.1/docs", http.StatusInternalServerError)
		r := newResolver(t, f, false, nil)

		loc, err := r.Resolve(context.Background(), f.RepoWebURL("tree/release/2.1/docs"))
		require.NoError(t, err)
		assert.Equal(t, "release/2.1", loc.Branch)
		assert.Len(t, f.ContentsRequests(), 2)
	})
}

func TestResolve_Cancelled(t *testing.T) {
	f := newFake(t)
	r := newResolver(t, f, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, f.RepoWebURL("tree/release/2.1/docs"))
	assert.ErrorIs(t, err, context.Canceled)
}
