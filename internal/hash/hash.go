// Package hash computes content digests for validation snapshots.
//
// Size and modification time are the primary drift signal. A snapshot chipped
// with --hash also stores a SHA-256 digest per file, so a rewrite that keeps
// the size and restores the mtime is still reported as modified.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
)

// Hasher computes a content digest for a file.
type Hasher interface {
	HashFile(path string) (string, error)
}

// copyBufSize suits multi-gigabyte plates and caches better than io.Copy's 32 KiB default.
const copyBufSize = 1 << 20

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, copyBufSize)
		return &b
	},
}

// SHA256Hasher digests files with SHA-256. It is safe for concurrent use.
type SHA256Hasher struct{}

// NewSHA256Hasher returns a SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile returns the hex SHA-256 of the file at path.
func (*SHA256Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf := bufPool.Get().(*[]byte)
	defer bufPool.Put(buf)

	sum := sha256.New()
	if _, err := io.CopyBuffer(sum, f, *buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// FakeHasher serves digests set with SetHash. Unknown paths hash to "fakehash".
type FakeHasher struct {
	mu      sync.Mutex
	digests map[string]string
}

// NewFakeHasher returns an empty FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{digests: make(map[string]string)}
}

// SetHash fixes the digest reported for path.
func (h *FakeHasher) SetHash(path, digest string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.digests[path] = digest
}

func (h *FakeHasher) HashFile(path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d, ok := h.digests[path]; ok {
		return d, nil
	}
	return "fakehash", nil
}
