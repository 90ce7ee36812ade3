package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantmind-br/gitzip-go/internal/archive"
	"github.com/quantmind-br/gitzip-go/internal/cache"
	"github.com/quantmind-br/gitzip-go/internal/config"
	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/fetcher"
	"github.com/quantmind-br/gitzip-go/internal/git"
	"github.com/quantmind-br/gitzip-go/internal/github"
	"github.com/quantmind-br/gitzip-go/internal/output"
	"github.com/quantmind-br/gitzip-go/internal/resolver"
	"github.com/quantmind-br/gitzip-go/internal/tree"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// Orchestrator runs top-level download requests one at a time
type Orchestrator struct {
	config    *config.Config
	client    *github.Client
	detector  resolver.BranchDetector
	resolver  *resolver.Resolver
	walker    *tree.Walker
	fetcher   *fetcher.Fetcher
	assembler *archive.Assembler
	writer    *output.Writer
	collector *output.Collector
	cache     domain.Cache
	session   *Session
	logger    *utils.Logger
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	domain.CommonOptions
	Config *config.Config
	// Observer receives every progress event
	Observer domain.Observer
	// HTTPClient overrides the hosting API transport
	HTTPClient *http.Client
	// Cache overrides the blob cache built from the configuration
	Cache domain.Cache
	// Detector overrides the go-git default branch detector
	Detector resolver.BranchDetector
	Logger   *utils.Logger
	DryRun   bool
}

// Result describes a finished request
type Result struct {
	RequestID string
	Type      RequestType
	Location  *domain.ResolvedLocation
	// Path is where the artifact was saved
	Path     string
	Entries  int
	Size     int64
	Duration time.Duration
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	token := cfg.GitHub.Token
	if opts.Token != "" {
		token = opts.Token
	}

	client := github.NewClient(github.ClientOptions{
		HTTPClient: opts.HTTPClient,
		APIURL:     cfg.GitHub.APIURL,
		WebURL:     cfg.GitHub.WebURL,
		RawURL:     cfg.GitHub.RawURL,
		Token:      token,
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.HTTP.Timeout,
		MaxRetries: cfg.HTTP.MaxRetries,
		Logger:     logger.WithComponent("github"),
	})

	detector := opts.Detector
	if detector == nil && cfg.GitHub.DetectDefaultBranch {
		detector = git.NewBranchDetector(git.BranchDetectorOptions{
			Token:  token,
			Logger: logger.WithComponent("git"),
		})
	}

	blobCache := opts.Cache
	if blobCache == nil && cfg.Cache.Enabled {
		c, err := cache.NewBadgerCache(cache.Options{
			Directory:  utils.ExpandPath(cfg.Cache.Directory),
			GCInterval: cache.DefaultOptions().GCInterval,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Blob cache unavailable, continuing without it")
		} else {
			blobCache = c
		}
	}

	session := NewSession(client.WebURL(), opts.Observer)

	outDir := utils.ExpandPath(cfg.Output.Directory)
	o := &Orchestrator{
		config:   cfg,
		client:   client,
		detector: detector,
		resolver: resolver.New(resolver.Options{
			API:           client,
			WebURL:        client.WebURL(),
			Cache:         session.BranchCache(),
			Detector:      detector,
			DefaultBranch: cfg.GitHub.DefaultBranch,
			StrictProbing: cfg.Resolver.StrictProbing,
			Logger:        logger.WithComponent("resolver"),
		}),
		walker: tree.NewWalker(tree.Options{
			API:      client,
			Strategy: cfg.Tree.Strategy,
			Workers:  cfg.Concurrency.Workers,
			Logger:   logger.WithComponent("tree"),
		}),
		fetcher: fetcher.New(fetcher.Options{
			API:      client,
			Cache:    blobCache,
			CacheTTL: cfg.Cache.TTL,
			Workers:  cfg.Concurrency.Workers,
			Progress: session.Tracker(),
			Logger:   logger.WithComponent("fetcher"),
		}),
		assembler: archive.NewAssembler(archive.Options{
			MemoryLimit:      cfg.MemoryLimitBytes(),
			CompressionLevel: cfg.Archive.CompressionLevel,
			Logger:           logger.WithComponent("archive"),
		}),
		writer: output.NewWriter(output.WriterOptions{
			BaseDir:   outDir,
			Overwrite: opts.Force || cfg.Output.Overwrite,
			DryRun:    opts.DryRun,
		}),
		collector: output.NewCollector(output.CollectorOptions{
			BaseDir: outDir,
			Enabled: cfg.Output.Manifest,
		}),
		cache:   blobCache,
		session: session,
		logger:  logger,
	}
	return o, nil
}

// Download resolves rawURL and saves the matching artifact: the repository
// archive for a root URL, a zip of the directory for a tree URL, the file
// itself for a blob or raw URL.
func (o *Orchestrator) Download(ctx context.Context, rawURL string) (*Result, error) {
	return o.run(ctx, rawURL, func(ctx context.Context, log *utils.Logger) (*Result, error) {
		if IsRawURL(rawURL, o.client.RawURL()) {
			return o.downloadRaw(ctx, log, rawURL)
		}

		loc, err := o.resolver.Resolve(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		o.session.SetState(StateListing)
		log = log.WithRepo(loc.Owner, loc.Project, loc.Branch)

		switch DetectRequest(loc) {
		case RequestFile:
			return o.downloadFile(ctx, log, loc)
		case RequestRepository:
			return o.downloadRepository(ctx, log, loc)
		default:
			return o.downloadSubtree(ctx, log, loc, loc.Name())
		}
	})
}

// DownloadRepository streams the archive of loc's branch
func (o *Orchestrator) DownloadRepository(ctx context.Context, loc *domain.ResolvedLocation) (*Result, error) {
	return o.run(ctx, loc.InputURL, func(ctx context.Context, log *utils.Logger) (*Result, error) {
		return o.downloadRepository(ctx, log, loc)
	})
}

// DownloadSubtree zips every file under loc into <name>.zip
func (o *Orchestrator) DownloadSubtree(ctx context.Context, loc *domain.ResolvedLocation) (*Result, error) {
	return o.run(ctx, loc.InputURL, func(ctx context.Context, log *utils.Logger) (*Result, error) {
		return o.downloadSubtree(ctx, log, loc, loc.Name())
	})
}

// DownloadFile saves the single file at loc
func (o *Orchestrator) DownloadFile(ctx context.Context, loc *domain.ResolvedLocation) (*Result, error) {
	return o.run(ctx, loc.InputURL, func(ctx context.Context, log *utils.Logger) (*Result, error) {
		return o.downloadFile(ctx, log, loc)
	})
}

// ZipFromTreeURL zips the files of an API tree URL into <name>.zip,
// skipping URL resolution.
func (o *Orchestrator) ZipFromTreeURL(ctx context.Context, name, treeURL string) (*Result, error) {
	return o.run(ctx, treeURL, func(ctx context.Context, log *utils.Logger) (*Result, error) {
		o.session.SetState(StateListing)
		o.session.Tracker().SetStatus(domain.StatusPreparing, "Listing files.")

		entries, err := o.walker.ListFlat(ctx, treeURL)
		if err != nil {
			return nil, err
		}
		loc := &domain.ResolvedLocation{Kind: domain.KindTree, InputURL: treeURL}
		return o.zipEntries(ctx, log, loc, name, entries)
	})
}

// Resolve disambiguates rawURL without downloading anything
func (o *Orchestrator) Resolve(ctx context.Context, rawURL string) (*domain.ResolvedLocation, error) {
	return o.resolver.Resolve(ctx, rawURL)
}

// ListTree resolves rawURL and lists the files a download would contain
func (o *Orchestrator) ListTree(ctx context.Context, rawURL string) (*domain.ResolvedLocation, []domain.TreeEntry, error) {
	loc, err := o.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	entries, err := o.walker.ListRecursive(ctx, loc)
	if err != nil {
		return loc, nil, err
	}
	return loc, entries, nil
}

// State returns the session state and progress
func (o *Orchestrator) State() Snapshot {
	return o.session.Snapshot()
}

// SetToken changes the credential for every later request
func (o *Orchestrator) SetToken(token string) {
	o.client.SetToken(token)
	if ts, ok := o.detector.(interface{ SetToken(string) }); ok {
		ts.SetToken(token)
	}
}

// Close flushes the download manifest and releases the blob cache
func (o *Orchestrator) Close() error {
	if err := o.collector.Flush(); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to write download manifest")
	}
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}

type requestFunc func(ctx context.Context, log *utils.Logger) (*Result, error)

// run claims the session, drives the progress lifecycle and reports exactly
// one terminal event. A rejected request leaves the running one untouched.
func (o *Orchestrator) run(ctx context.Context, rawURL string, fn requestFunc) (*Result, error) {
	requestID := uuid.NewString()
	if err := o.session.Begin(requestID); err != nil {
		return nil, err
	}

	start := time.Now()
	log := o.logger.WithRequest(requestID)
	tracker := o.session.Tracker()

	log.Info().Str("url", rawURL).Msg("Starting download")
	tracker.Reset()
	tracker.SetStatus(domain.StatusPreparing, "Resolving "+rawURL)

	result, err := fn(ctx, log)
	if err != nil {
		o.session.End(StateError)
		tracker.SetStatus(domain.StatusError, domain.UserMessage(err))
		if ctx.Err() != nil {
			log.Warn().Msg("Download cancelled")
			return nil, ctx.Err()
		}
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Download failed")
		return nil, err
	}

	result.RequestID = requestID
	result.Duration = time.Since(start)
	o.collector.Add(result.Location, result.Path, string(result.Type), result.Entries, result.Size)

	o.session.End(StateDone)
	tracker.SetStatus(domain.StatusDone, doneMessage(result.Type))

	log.Info().
		Str("type", string(result.Type)).
		Str("path", result.Path).
		Int("entries", result.Entries).
		Int64("size", result.Size).
		Dur("duration", result.Duration).
		Msg("Download completed")
	return result, nil
}

func doneMessage(t RequestType) string {
	switch t {
	case RequestFile, RequestRaw:
		return "Saving File."
	case RequestRepository:
		return "Repository archive saved."
	default:
		return "Saving Files."
	}
}

func (o *Orchestrator) downloadSubtree(ctx context.Context, log *utils.Logger, loc *domain.ResolvedLocation, name string) (*Result, error) {
	o.session.SetState(StateListing)
	o.session.Tracker().SetStatus(domain.StatusPreparing, "Listing files of "+loc.Name()+".")

	entries, err := o.walker.ListRecursive(ctx, loc)
	if err != nil {
		return nil, err
	}
	return o.zipEntries(ctx, log, loc, name, entries)
}

// zipEntries fetches, compresses and saves entries as <name>.zip
func (o *Orchestrator) zipEntries(ctx context.Context, log *utils.Logger, loc *domain.ResolvedLocation, name string, entries []domain.TreeEntry) (*Result, error) {
	tracker := o.session.Tracker()
	log.Debug().Int("files", len(entries)).Msg("Fetching contents")

	o.session.SetState(StateFetching)
	tracker.Begin(len(entries))
	files, err := o.fetcher.FetchAll(ctx, entries)
	if err != nil {
		return nil, err
	}

	o.session.SetState(StateCompressing)
	tracker.BeginCompression()
	arc, err := o.assembler.Assemble(ctx, name, files, func(p string) {
		tracker.Advance("Compressed " + p + ".")
	})
	if err != nil {
		return nil, err
	}
	defer arc.Close()

	saved, err := o.writer.Save(ctx, arc.Name, arc.Reader())
	if err != nil {
		return nil, err
	}
	return &Result{
		Type:     RequestSubtree,
		Location: loc,
		Path:     saved,
		Entries:  arc.Entries,
		Size:     arc.Size,
	}, nil
}

func (o *Orchestrator) downloadRepository(ctx context.Context, log *utils.Logger, loc *domain.ResolvedLocation) (*Result, error) {
	archiveURL := o.client.ArchiveURL(loc.Owner, loc.Project, loc.Branch)
	o.session.SetState(StateFetching)
	o.session.Tracker().SetStatus(domain.StatusProcessing, "Downloading archive of "+loc.Branch+".")
	log.Debug().Str("archive", archiveURL).Msg("Repository passthrough")

	name := utils.ArchiveFilename(loc.Project + "-" + strings.ReplaceAll(loc.Branch, "/", "-"))
	return o.save(ctx, RequestRepository, loc, archiveURL, name)
}

func (o *Orchestrator) downloadFile(ctx context.Context, log *utils.Logger, loc *domain.ResolvedLocation) (*Result, error) {
	rawURL := o.client.RawFileURL(loc.Owner, loc.Project, loc.Branch, loc.Path)
	o.session.SetState(StateFetching)
	o.session.Tracker().SetStatus(domain.StatusProcessing, "Fetching target url: "+rawURL)
	log.Debug().Str("raw", rawURL).Msg("Single file download")

	return o.save(ctx, RequestFile, loc, rawURL, path.Base(loc.Path))
}

func (o *Orchestrator) downloadRaw(ctx context.Context, log *utils.Logger, rawURL string) (*Result, error) {
	loc, name := rawLocation(rawURL, o.client.RawURL())
	o.session.SetState(StateFetching)
	o.session.Tracker().SetStatus(domain.StatusProcessing, "Fetching target url: "+rawURL)
	log.Debug().Str("raw", rawURL).Msg("Raw URL passthrough")

	return o.save(ctx, RequestRaw, loc, rawURL, name)
}

// save streams sourceURL into the output directory under name
func (o *Orchestrator) save(ctx context.Context, t RequestType, loc *domain.ResolvedLocation, sourceURL, name string) (*Result, error) {
	body, err := o.client.Download(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	counter := &countingReader{r: body}
	saved, err := o.writer.Save(ctx, name, counter)
	if err != nil {
		return nil, err
	}
	return &Result{
		Type:     t,
		Location: loc,
		Path:     saved,
		Entries:  1,
		Size:     counter.n,
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
