package objstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// newFakeS3 serves a path-style bucket out of a map, just enough of the
// S3 surface for the client's four verbs.
func newFakeS3(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	var objects sync.Map

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/test-bucket/")
		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			objects.Store(key, body)
			w.Header().Set("ETag", `"etag-`+key+`"`)
		case http.MethodHead:
			data, ok := objects.Load(key)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("ETag", `"etag-`+key+`"`)
			w.Header().Set("Content-Length", strconv.Itoa(len(data.([]byte))))
		case http.MethodGet:
			data, ok := objects.Load(key)
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("ETag", `"etag-`+key+`"`)
			w.Write(data.([]byte))
		case http.MethodDelete:
			objects.Delete(key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &objects
}

func newFakeClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(context.Background(), Config{
		AccessKeyID: "test-key",
		SecretKey:   "test-secret",
		BucketName:  "test-bucket",
		Endpoint:    endpoint,
	})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return c
}

func TestNewRequiresAllFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty config", Config{}},
		{"missing account", Config{AccessKeyID: "k", SecretKey: "s", BucketName: "b"}},
		{"missing access key", Config{AccountID: "a", SecretKey: "s", BucketName: "b"}},
		{"missing secret", Config{AccountID: "a", AccessKeyID: "k", BucketName: "b"}},
		{"missing bucket", Config{AccountID: "a", AccessKeyID: "k", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg); err == nil {
				t.Error("New() should fail with incomplete config")
			}
		})
	}
}

func TestNewAcceptsEndpointOverride(t *testing.T) {
	t.Parallel()

	cfg := Config{AccessKeyID: "k", SecretKey: "s", BucketName: "b", Endpoint: "http://localhost:9000"}
	if _, err := New(context.Background(), cfg); err != nil {
		t.Errorf("New() with explicit endpoint = %v", err)
	}
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	srv, _ := newFakeS3(t)
	c := newFakeClient(t, srv.URL)
	payload := []byte(`[{"name":"Safety Management System(SMS)"}]`)

	etag, err := c.Upload(context.Background(), "catalog/test.json", bytes.NewReader(payload), "application/json")
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if etag != "etag-catalog/test.json" {
		t.Errorf("etag = %q", etag)
	}

	body, gotTag, err := c.Download(context.Background(), "catalog/test.json")
	if err != nil {
		t.Fatalf("Download() = %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("downloaded %q, want %q", data, payload)
	}
	if gotTag != etag {
		t.Errorf("download etag = %q, want %q", gotTag, etag)
	}
}

func TestUploadCompressedRoundTrip(t *testing.T) {
	srv, objects := newFakeS3(t)
	c := newFakeClient(t, srv.URL)
	payload := []byte(strings.Repeat(`[{"name":"Dangerous Goods Regulations"}]`, 50))

	if _, err := c.UploadCompressed(context.Background(), "catalog/courses.json.zst", payload, "application/json"); err != nil {
		t.Fatalf("UploadCompressed() = %v", err)
	}

	stored, ok := objects.Load("catalog/courses.json.zst")
	if !ok {
		t.Fatal("object was not stored")
	}
	if bytes.Equal(stored.([]byte), payload) {
		t.Error("stored object should be compressed, not the raw payload")
	}

	data, _, err := c.DownloadDecompressed(context.Background(), "catalog/courses.json.zst")
	if err != nil {
		t.Fatalf("DownloadDecompressed() = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("decompressed download does not match the published payload")
	}
}

func TestHeadObject(t *testing.T) {
	srv, _ := newFakeS3(t)
	c := newFakeClient(t, srv.URL)

	if _, err := c.HeadObject(context.Background(), "missing-key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("HeadObject(missing) = %v, want ErrNotFound", err)
	}

	if _, err := c.Upload(context.Background(), "present", bytes.NewReader([]byte("x")), ""); err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	etag, err := c.HeadObject(context.Background(), "present")
	if err != nil {
		t.Fatalf("HeadObject() = %v", err)
	}
	if etag != "etag-present" {
		t.Errorf("etag = %q", etag)
	}
}

func TestDeleteObject(t *testing.T) {
	srv, _ := newFakeS3(t)
	c := newFakeClient(t, srv.URL)

	if _, err := c.Upload(context.Background(), "doomed", bytes.NewReader([]byte("x")), ""); err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if err := c.DeleteObject(context.Background(), "doomed"); err != nil {
		t.Fatalf("DeleteObject() = %v", err)
	}
	if _, err := c.HeadObject(context.Background(), "doomed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("HeadObject(deleted) = %v, want ErrNotFound", err)
	}
}

func TestDownloadMissingKey(t *testing.T) {
	srv, _ := newFakeS3(t)
	c := newFakeClient(t, srv.URL)

	if _, _, err := c.Download(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Download(missing) = %v, want ErrNotFound", err)
	}
}

func TestTrimETag(t *testing.T) {
	t.Parallel()

	quoted := `"abc123"`
	if got := trimETag(&quoted); got != "abc123" {
		t.Errorf("trimETag(%q) = %q, want %q", quoted, got, "abc123")
	}
	if got := trimETag(nil); got != "" {
		t.Errorf("trimETag(nil) = %q, want empty", got)
	}
}

func TestZstdRoundTrip(t *testing.T) {
	t.Parallel()

	original := strings.Repeat("Catalog Snapshot Compression Test! ", 1000)

	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}
	if _, err := encoder.Write([]byte(original)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}

	if buf.Len() >= len(original) {
		t.Logf("Warning: compressed size (%d) >= original size (%d)", buf.Len(), len(original))
	}

	decoder, err := zstd.NewReader(&buf)
	if err != nil {
		t.Fatalf("create decoder: %v", err)
	}
	defer decoder.Close()

	decompressed, err := io.ReadAll(decoder)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(decompressed) != original {
		t.Error("decompressed content does not match original")
	}
}
