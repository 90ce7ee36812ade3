package manifest

import (
	"fmt"
	"strings"
)

// Config is a parsed batch file
type Config struct {
	Sources []Source `yaml:"sources" json:"sources"`
	Options Options  `yaml:"options" json:"options"`
}

// Source is one download of the batch
type Source struct {
	URL string `yaml:"url" json:"url"`
	// Name marks URL as an API tree URL zipped into <Name>.zip
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// IsTreeURL reports whether the source skips URL resolution
func (s Source) IsTreeURL() bool {
	return s.Name != ""
}

// Options apply to the whole batch
type Options struct {
	ContinueOnError bool   `yaml:"continue_on_error" json:"continue_on_error"`
	Output          string `yaml:"output,omitempty" json:"output,omitempty"`
}

// Validate validates the manifest configuration
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for i, src := range c.Sources {
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("source %d: %w", i, ErrEmptyURL)
		}
	}
	return nil
}
