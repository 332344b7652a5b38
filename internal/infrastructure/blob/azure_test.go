package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"IncidentIngest/internal/domain"
)

const testKey = "dGVzdC1hY2NvdW50LWtleQ==" // base64("test-account-key")

// fakeBlobService mimics the container/blob subset of the REST API the client
// touches: container HEAD/PUT, blob PUT, blob HEAD.
type fakeBlobService struct {
	mu           sync.Mutex
	hasContainer bool
	blobs        map[string][]byte
	headers      map[string]http.Header
	failPuts     bool
	// truncateStored drops the last byte of every stored blob so that
	// verification sees a size mismatch.
	truncateStored bool
}

func newFakeBlobService() *fakeBlobService {
	return &fakeBlobService{
		blobs:   map[string][]byte{},
		headers: map[string]http.Header{},
	}
}

func (f *fakeBlobService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("x-ms-version") == "" {
		http.Error(w, "missing api version", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "SharedKey testaccount:") {
		http.Error(w, "missing authorization", http.StatusForbidden)
		return
	}

	if r.URL.Query().Get("restype") == "container" {
		switch {
		case r.Method == http.MethodHead && f.hasContainer:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			f.hasContainer = true
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/data/")
	switch r.Method {
	case http.MethodPut:
		if f.failPuts {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if f.truncateStored && len(body) > 0 {
			body = body[:len(body)-1]
		}
		f.blobs[name] = body
		f.headers[name] = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
	case http.MethodHead:
		body, ok := f.blobs[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, service *fakeBlobService) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	client, err := New("testaccount", testKey, "data", nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	client.Endpoint = server.URL
	return client, server
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := New("", "", "data", nil); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if _, err := New("acct", "not base64!!!", "data", nil); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestUploadBatch(t *testing.T) {
	t.Parallel()

	service := newFakeBlobService()
	client, _ := newTestClient(t, service)

	files := map[string][]byte{
		"tr_events.json": []byte(`[]`),
		"tr_api.json":    []byte(`{"events":[]}`),
	}
	if err := client.UploadBatch(context.Background(), files); err != nil {
		t.Fatalf("UploadBatch error: %v", err)
	}

	if !service.hasContainer {
		t.Fatal("container was not created")
	}
	if string(service.blobs["tr_api.json"]) != `{"events":[]}` {
		t.Fatalf("unexpected blob body: %s", service.blobs["tr_api.json"])
	}

	headers := service.headers["tr_events.json"]
	if headers.Get("x-ms-blob-type") != "BlockBlob" {
		t.Fatalf("unexpected blob type: %s", headers.Get("x-ms-blob-type"))
	}
	if headers.Get("x-ms-blob-content-type") != "application/json" {
		t.Fatalf("unexpected content type: %s", headers.Get("x-ms-blob-content-type"))
	}
	if headers.Get("x-ms-blob-cache-control") != "public, max-age=300" {
		t.Fatalf("unexpected cache control: %s", headers.Get("x-ms-blob-cache-control"))
	}
	if headers.Get("x-ms-meta-uploadedat") == "" || headers.Get("x-ms-meta-source") == "" {
		t.Fatal("upload metadata headers missing")
	}
}

func TestUploadBatchReusesExistingContainer(t *testing.T) {
	t.Parallel()

	service := newFakeBlobService()
	service.hasContainer = true
	client, _ := newTestClient(t, service)

	err := client.UploadBatch(context.Background(), map[string][]byte{"tr_events.json": []byte(`[]`)})
	if err != nil {
		t.Fatalf("UploadBatch error: %v", err)
	}
}

func TestUploadBatchFailsOnPutError(t *testing.T) {
	t.Parallel()

	service := newFakeBlobService()
	service.failPuts = true
	client, _ := newTestClient(t, service)

	err := client.UploadBatch(context.Background(), map[string][]byte{"tr_events.json": []byte(`[]`)})
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUploadBatchFailsOnSizeMismatch(t *testing.T) {
	t.Parallel()

	service := newFakeBlobService()
	service.truncateStored = true
	client, _ := newTestClient(t, service)

	files := map[string][]byte{"tr_events.json": []byte(`[]`)}
	err := client.UploadBatch(context.Background(), files)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestAuthorizationKeyRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := base64.StdEncoding.DecodeString(testKey)
	if err != nil {
		t.Fatalf("decode test key: %v", err)
	}
	if string(raw) != "test-account-key" {
		t.Fatalf("fixture key mismatch: %s", raw)
	}
}
