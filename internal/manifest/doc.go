// Package manifest loads batch files: lists of repository URLs downloaded
// one after another by a single gitzip run.
//
// # Format
//
// Batch files can be written in YAML or JSON:
//
//	sources:
//	  - url: https://github.com/org/repo/tree/main/docs
//	  - url: https://github.com/org/repo/blob/main/README.md
//	  - url: https://api.github.com/repos/org/repo/git/trees/abc123
//	    name: assets
//	options:
//	  continue_on_error: true
//	  output: ./downloads
//
// A source with a name is treated as an API tree URL and zipped as <name>.zip.
package manifest
