package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decodeFunc func([]byte, any) error

var decoders = map[string]decodeFunc{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".json": json.Unmarshal,
}

// Loader reads batch files. The decoder is chosen by file extension.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the batch file at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("read batch file %s: %w", path, err)
	}
	return l.LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes decodes data as the format implied by ext, normalizes the
// sources and validates the result.
func (l *Loader) LoadFromBytes(data []byte, ext string) (*Config, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedExt, ext)
	}

	cfg := &Config{}
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		src.URL = strings.TrimSpace(src.URL)
		src.Name = strings.TrimSpace(src.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
