// Package archive assembles fetched repository files into a zip archive.
package archive

import (
	"bytes"
	"io"
	"os"
)

// Archive is an assembled zip held in memory or in a temporary file.
// Close releases the temporary file.
type Archive struct {
	Name    string
	Entries int
	Size    int64

	data []byte
	file *os.File
}

// Spooled reports whether the archive lives in a temporary file
func (a *Archive) Spooled() bool {
	return a.file != nil
}

// Reader returns a reader over the whole archive. Spooled archives can be
// read once.
func (a *Archive) Reader() io.Reader {
	if a.file != nil {
		return a.file
	}
	return bytes.NewReader(a.data)
}

// Bytes returns the archive contents, reading the spool file if needed
func (a *Archive) Bytes() ([]byte, error) {
	if a.file == nil {
		return a.data, nil
	}
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(a.file)
}

// Close removes the spool file, if any
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	name := a.file.Name()
	err := a.file.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	a.file = nil
	return err
}
