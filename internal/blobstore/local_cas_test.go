package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalCASPutOpenDelete(t *testing.T) {
	cas, err := NewLocalCAS(t.TempDir())
	if err != nil {
		t.Fatalf("new local cas: %v", err)
	}

	first, err := cas.Put(context.Background(), bytes.NewBufferString("Key,Status\nA-1,Done\n"))
	if err != nil {
		t.Fatalf("put first: %v", err)
	}
	if first.Digest != Digest([]byte("Key,Status\nA-1,Done\n")) {
		t.Fatalf("expected digest to match Digest(), got %s", first.Digest)
	}
	if !strings.HasPrefix(first.Key, "blake2b/"+first.Digest[:2]+"/") {
		t.Fatalf("unexpected key layout %q", first.Key)
	}
	if first.SizeBytes != int64(len("Key,Status\nA-1,Done\n")) {
		t.Fatalf("unexpected size %d", first.SizeBytes)
	}

	second, err := cas.Put(context.Background(), bytes.NewBufferString("Key,Status\nA-1,Done\n"))
	if err != nil {
		t.Fatalf("put second: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical content to dedupe: first=%#v second=%#v", first, second)
	}

	rc, err := cas.Open(context.Background(), first.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "Key,Status\nA-1,Done\n" {
		t.Fatalf("unexpected content %q", string(data))
	}

	if err := cas.Delete(context.Background(), first.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := cas.Delete(context.Background(), first.Key); err != nil {
		t.Fatalf("delete missing should be noop: %v", err)
	}
	if _, err := cas.Open(context.Background(), first.Key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist after delete, got %v", err)
	}
}

func TestLocalCASLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	cas, err := NewLocalCAS(root)
	if err != nil {
		t.Fatalf("new local cas: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := cas.Put(context.Background(), strings.NewReader("same")); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Join(root, "tmp"))
	if err != nil {
		t.Fatalf("read tmp: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty tmp dir, got %d entries", len(entries))
	}
}

func TestLocalCASRejectsEscapingKeys(t *testing.T) {
	cas, err := NewLocalCAS(t.TempDir())
	if err != nil {
		t.Fatalf("new local cas: %v", err)
	}
	for _, key := range []string{"", "/etc/passwd", "../outside", "blake2b/../../x"} {
		if _, err := cas.Open(context.Background(), key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
