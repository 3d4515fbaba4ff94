package cas

import (
	"bytes"
	"errors"
	"testing"
)

func TestPutAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	data := []byte("<AnIML version=\"0.90\"/>")
	ref, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(ref.SHA256) != 64 || len(ref.BLAKE3) != 64 {
		t.Errorf("unexpected ref: %+v", ref)
	}
	got, err := store.Get(ref.SHA256)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("retrieved blob differs from stored data")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	data := []byte("payload")
	ref1, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	ref2, err := store.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if ref1 != ref2 {
		t.Errorf("refs differ: %+v vs %+v", ref1, ref2)
	}
}

func TestGetByBlake3(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	data := []byte("binary value payload")
	ref, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.GetByBlake3(ref.BLAKE3)
	if err != nil {
		t.Fatalf("GetByBlake3: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("blob retrieved by BLAKE3 differs")
	}
}

func TestGetMissingBlob(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	missing := Hash([]byte("never stored"))
	if _, err := store.Get(missing); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestGetInvalidHash(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, bad := range []string{"", "zz", "ABCDEF", "../../etc/passwd"} {
		if _, err := store.Get(bad); !errors.Is(err, ErrInvalidHash) {
			t.Errorf("Get(%q): expected ErrInvalidHash, got %v", bad, err)
		}
	}
}

func TestExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ref, err := store.Put([]byte("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !store.Exists(ref.SHA256) {
		t.Error("stored blob should exist")
	}
	if store.Exists(Hash([]byte("other"))) {
		t.Error("unstored blob should not exist")
	}
}
