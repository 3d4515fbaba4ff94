// Package validation validates user-supplied paths and sniffs source
// file types before they reach the document pipeline.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Limits on user-supplied inputs.
const (
	// MaxSourceSize is the maximum allowed document size (256 MB).
	MaxSourceSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrSourceTooLarge   = errors.New("source file too large")
)

// ValidatePath checks a user-supplied path for length limits and
// characters that have no business in a filename.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateSourceSize rejects sources larger than MaxSourceSize.
func ValidateSourceSize(size int64) error {
	if size > MaxSourceSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrSourceTooLarge, size, MaxSourceSize)
	}
	return nil
}

// FileType identifies the container format of a source file.
type FileType string

const (
	FileTypeXML     FileType = "xml"
	FileTypeGzip    FileType = "gzip"
	FileTypeXZ      FileType = "xz"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for source type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
}

// DetectFileType sniffs the leading bytes of r and reports the container
// format. XML is recognized by its declaration or a leading element after
// optional whitespace and byte order mark.
func DetectFileType(r io.Reader) (FileType, error) {
	head := make([]byte, 64)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, err
	}
	head = head[:n]

	for _, m := range magicBytes {
		if bytes.HasPrefix(head, m.magic) {
			return m.fileType, nil
		}
	}

	trimmed := bytes.TrimPrefix(head, []byte{0xef, 0xbb, 0xbf})
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FileTypeXML, nil
	}
	return FileTypeUnknown, nil
}
