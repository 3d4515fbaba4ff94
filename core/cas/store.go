// Package cas provides content-addressed storage for ingested AnIML
// sources. Blobs are stored by their SHA-256
// hash, ensuring deduplication and enabling verification of content
// integrity; a BLAKE3 pointer file is kept alongside each blob so callers
// holding either hash can retrieve it.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"
)

// ErrBlobNotFound is returned when a blob with the given hash does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a hash string is not a valid hex digest.
var ErrInvalidHash = errors.New("invalid hash format")

// hashPattern matches a valid lowercase 256-bit hex digest (64 characters).
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Ref identifies a stored blob by both of its content hashes.
type Ref struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// blake3Pointer is the structure stored in BLAKE3 pointer files.
type blake3Pointer struct {
	SHA256 string `json:"sha256"`
}

// Store is a content-addressed blob store rooted at a directory.
// Blobs live at <root>/blobs/sha256/<first2>/<hash>; BLAKE3 pointers at
// <root>/blobs/blake3/<first2>/<hash>.json.
type Store struct {
	root string
}

// NewStore creates a store at the given root directory, creating the
// directory structure if needed.
func NewStore(root string) (*Store, error) {
	blobDir := filepath.Join(root, "blobs", "sha256")
	if err := os.MkdirAll(blobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Put stores data and returns its content reference. Storing the same
// bytes twice is a no-op.
func (s *Store) Put(data []byte) (Ref, error) {
	sum := sha256.Sum256(data)
	shaHash := hex.EncodeToString(sum[:])
	b3 := blake3.Sum256(data)
	b3Hash := hex.EncodeToString(b3[:])
	ref := Ref{SHA256: shaHash, BLAKE3: b3Hash}

	blobPath := s.blobPath(shaHash)
	if _, err := os.Stat(blobPath); err == nil {
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(blobPath), 0755); err != nil {
		return Ref{}, fmt.Errorf("failed to create prefix directory: %w", err)
	}

	// Write atomically through a temp file so a crashed ingest never
	// leaves a half-written blob under its final name.
	tempFile, err := os.CreateTemp(filepath.Dir(blobPath), ".blob-*")
	if err != nil {
		return Ref{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return Ref{}, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return Ref{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, blobPath); err != nil {
		os.Remove(tempPath)
		return Ref{}, fmt.Errorf("failed to rename blob: %w", err)
	}

	if err := s.writePointer(b3Hash, shaHash); err != nil {
		return Ref{}, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}
	return ref, nil
}

// Get retrieves the blob with the given SHA-256 hash.
// Returns ErrBlobNotFound if the blob does not exist.
func (s *Store) Get(shaHash string) ([]byte, error) {
	if !hashPattern.MatchString(shaHash) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.blobPath(shaHash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// GetByBlake3 retrieves a blob through its BLAKE3 pointer.
func (s *Store) GetByBlake3(b3Hash string) ([]byte, error) {
	if !hashPattern.MatchString(b3Hash) {
		return nil, ErrInvalidHash
	}
	raw, err := os.ReadFile(s.pointerPath(b3Hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read pointer: %w", err)
	}
	var ptr blake3Pointer
	if err := json.Unmarshal(raw, &ptr); err != nil {
		return nil, fmt.Errorf("corrupt BLAKE3 pointer: %w", err)
	}
	return s.Get(ptr.SHA256)
}

// Exists reports whether a blob with the given SHA-256 hash is stored.
func (s *Store) Exists(shaHash string) bool {
	if !hashPattern.MatchString(shaHash) {
		return false
	}
	_, err := os.Stat(s.blobPath(shaHash))
	return err == nil
}

func (s *Store) blobPath(hash string) string {
	return filepath.Join(s.root, "blobs", "sha256", hash[:2], hash)
}

func (s *Store) pointerPath(hash string) string {
	return filepath.Join(s.root, "blobs", "blake3", hash[:2], hash+".json")
}

func (s *Store) writePointer(b3Hash, shaHash string) error {
	path := s.pointerPath(b3Hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	raw, err := json.Marshal(blake3Pointer{SHA256: shaHash})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Hash computes the SHA-256 hash of data without storing it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
