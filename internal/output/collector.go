package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// Record describes one saved artifact
type Record struct {
	File      string    `json:"file"`
	SourceURL string    `json:"source_url"`
	Owner     string    `json:"owner"`
	Project   string    `json:"project"`
	Branch    string    `json:"branch"`
	Path      string    `json:"path,omitempty"`
	Kind      string    `json:"kind"`
	Entries   int       `json:"entries,omitempty"`
	Size      int64     `json:"size"`
	SavedAt   time.Time `json:"saved_at"`
}

// Manifest is the JSON index written by Collector.Flush
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Downloads   []Record  `json:"downloads"`
}

// Collector accumulates saved artifacts and writes them as a JSON manifest
// next to the downloads.
type Collector struct {
	mu       sync.RWMutex
	records  []Record
	baseDir  string
	filename string
	enabled  bool
}

type CollectorOptions struct {
	BaseDir  string
	Filename string
	Enabled  bool
}

func NewCollector(opts CollectorOptions) *Collector {
	filename := opts.Filename
	if filename == "" {
		filename = "gitzip-manifest.json"
	}
	return &Collector{
		baseDir:  opts.BaseDir,
		filename: filename,
		enabled:  opts.Enabled,
	}
}

// Add records an artifact saved at filePath for loc
func (c *Collector) Add(loc *domain.ResolvedLocation, filePath string, kind string, entries int, size int64) {
	if !c.enabled || loc == nil {
		return
	}

	relPath, err := filepath.Rel(c.baseDir, filePath)
	if err != nil {
		relPath = filePath
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, Record{
		File:      filepath.ToSlash(relPath),
		SourceURL: loc.InputURL,
		Owner:     loc.Owner,
		Project:   loc.Project,
		Branch:    loc.Branch,
		Path:      loc.Path,
		Kind:      kind,
		Entries:   entries,
		Size:      size,
		SavedAt:   time.Now(),
	})
}

// Flush writes the manifest. Nothing is written when disabled or empty.
func (c *Collector) Flush() error {
	if !c.enabled {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.records) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(c.buildManifest(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.baseDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.baseDir, c.filename), data, 0644)
}

func (c *Collector) buildManifest() *Manifest {
	return &Manifest{
		GeneratedAt: time.Now(),
		Total:       len(c.records),
		Downloads:   append([]Record(nil), c.records...),
	}
}

func (c *Collector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Collector) Manifest() *Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buildManifest()
}

func (c *Collector) IsEnabled() bool {
	return c.enabled
}
