// Package archive opens document sources with automatic decompression.
// It supports plain, gzip, and xz compressed files.
package archive

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/instrumatics/animl-go/core/errors"
)

// Source wraps a decompressed read stream over an opened file.
type Source struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens the file at path for reading. Files ending in .gz or .xz
// are decompressed transparently; anything else is read as-is.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	var reader io.Reader = f
	var decompressor io.Closer

	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("xz reader", path, err)
		}
		reader = xzr
		decompressor = nil // xz reader doesn't need closing
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("gzip reader", path, err)
		}
		reader = gzr
		decompressor = gzr
	}

	return &Source{
		Reader:       reader,
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the source and any underlying decompressor.
func (s *Source) Close() error {
	var errs []error
	if s.decompressor != nil {
		if err := s.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ReadSource opens path and reads its full decompressed content.
func ReadSource(path string) ([]byte, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}
