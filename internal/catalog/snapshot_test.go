package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
)

type fakeStore struct {
	data []byte
	err  error
}

func (f *fakeStore) DownloadDecompressed(ctx context.Context, key string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, "etag-1", nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestLoaderPrefersObjectStore(t *testing.T) {
	store := &fakeStore{data: []byte(`[{"Programme Name": "Store Course"}]`)}
	loader := NewLoader(store, "catalog/courses.json.zst", "", testLogger(), nil)

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cat.Len() != 1 || cat.Records()[0].Name != "Store Course" {
		t.Errorf("unexpected catalog: %+v", cat.Records())
	}
}

func TestLoaderFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(`[{"Programme Name": "File Course"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{err: errors.New("bucket unreachable")}
	loader := NewLoader(store, "catalog/courses.json.zst", path, testLogger(), nil)

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cat.Len() != 1 || cat.Records()[0].Name != "File Course" {
		t.Errorf("unexpected catalog: %+v", cat.Records())
	}
}

func TestLoaderFallsBackToEmbedded(t *testing.T) {
	loader := NewLoader(nil, "", "", testLogger(), nil)

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cat.Len() != TotalCourses() {
		t.Errorf("embedded catalog has %d records, want %d", cat.Len(), TotalCourses())
	}
	if _, ok := cat.ByName("GeM Procurement"); !ok {
		t.Error("embedded catalog missing GeM Procurement")
	}
}

func TestLoaderSkipsCorruptStoreData(t *testing.T) {
	store := &fakeStore{data: []byte("corrupt")}
	loader := NewLoader(store, "catalog/courses.json.zst", "", testLogger(), nil)

	cat, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() should fall through to embedded, got: %v", err)
	}
	if cat.Len() != TotalCourses() {
		t.Errorf("expected embedded fallback, got %d records", cat.Len())
	}
}
