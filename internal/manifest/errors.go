package manifest

import "errors"

var (
	ErrNoSources      = errors.New("batch file lists no sources")
	ErrEmptyURL       = errors.New("source has no url")
	ErrInvalidFormat  = errors.New("batch file is not valid YAML or JSON")
	ErrFileNotFound   = errors.New("batch file not found")
	ErrUnsupportedExt = errors.New("batch file must end in .yaml, .yml or .json")
)
