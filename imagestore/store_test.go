package imagestore

import (
	"os"
	"testing"
)

func TestPutDeduplicates(t *testing.T) {
	s := New(t.TempDir())
	a, err := s.Put([]byte("pixels"), "png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	b, err := s.Put([]byte("pixels"), "png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if a != b {
		t.Errorf("identical bytes produced different refs: %q vs %q", a, b)
	}
	if s.Len() != 1 {
		t.Errorf("store holds %d refs, want 1", s.Len())
	}
	c, err := s.Put([]byte("other pixels"), "png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if c == a {
		t.Error("distinct bytes produced the same ref")
	}

	path, ok := s.Path(a)
	if !ok {
		t.Fatalf("path for %q not found", a)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "pixels" {
		t.Errorf("read back %q", data)
	}
}

func TestMemoryOnlyStore(t *testing.T) {
	s := New("")
	ref, err := s.Put([]byte("pixels"), "png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref == "" {
		t.Fatal("empty ref")
	}
	if _, ok := s.Path(ref); ok {
		t.Error("memory-only store should not resolve paths")
	}
}
