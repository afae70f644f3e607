package blobstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/crypto/blake2b"
)

const casAlgorithmPrefix = "blake2b"

// LocalCAS stores blobs under root keyed by their BLAKE2b-256 digest.
type LocalCAS struct {
	root string
}

// NewLocalCAS creates a local CAS rooted at root.
func NewLocalCAS(root string) (*LocalCAS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalCAS{root: abs}, nil
}

// Root returns the absolute storage directory.
func (c *LocalCAS) Root() string { return c.root }

// Digest returns the hex BLAKE2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put spools r to a temp file while hashing it, then moves it into place.
// Existing content with the same digest is reused.
func (c *LocalCAS) Put(ctx context.Context, r io.Reader) (PutResult, error) {
	var zero PutResult
	if c == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(c.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		cleanup()
		return zero, err
	}
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	key := casKeyFromDigest(digest)
	res := PutResult{Digest: digest, SizeBytes: n, Key: key}
	dst := filepath.Join(c.root, filepath.FromSlash(key))

	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return res, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return zero, err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}
	if err := atomic.ReplaceFile(tmpPath, dst); err != nil {
		cleanup()
		return zero, fmt.Errorf("store blob %s: %w", key, err)
	}
	return res, nil
}

// Open returns a reader for the blob stored under key.
func (c *LocalCAS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if c == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := c.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes a blob. Missing blobs are ignored.
func (c *LocalCAS) Delete(ctx context.Context, key string) error {
	if c == nil {
		return fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := c.pathFromKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func casKeyFromDigest(digest string) string {
	return fmt.Sprintf("%s/%s/%s/%s", casAlgorithmPrefix, digest[0:2], digest[2:4], digest)
}

func (c *LocalCAS) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("blob key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(c.root, clean), nil
}
