package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	githubinfra "github.com/hermitcli/hermit/pkg/infra/github"
)

// newTestClient points a Client at an httptest server. WithEnterpriseURLs
// appends /api/v3/ and /api/uploads/ prefixes, so handlers register under
// those paths.
func newTestClient(t *testing.T, mux *http.ServeMux) *githubinfra.Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := githubinfra.NewClient("test-token", githubinfra.WithBaseURLs(server.URL, server.URL))
	gt.NoError(t, err)
	return client
}

func TestEnsureRelease_Existing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 42, "tag_name": "v1.0.0"})
	})

	client := newTestClient(t, mux)
	id, err := client.EnsureRelease(context.Background(), "hermitcli", "hermit", "v1.0.0")
	gt.NoError(t, err)
	gt.Value(t, id).Equal(int64(42))
}

func TestEnsureRelease_CreatesWhenMissing(t *testing.T) {
	var created bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/releases/tags/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
	})
	mux.HandleFunc("POST /api/v3/repos/hermitcli/hermit/releases", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.Value(t, body["tag_name"]).Equal("v1.0.0")
		created = true
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "tag_name": "v1.0.0"})
	})

	client := newTestClient(t, mux)
	id, err := client.EnsureRelease(context.Background(), "hermitcli", "hermit", "v1.0.0")
	gt.NoError(t, err)
	gt.Value(t, id).Equal(int64(7))
	gt.True(t, created)
}

func writeAsset(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte("archive bytes"), 0o644))
	return path
}

func TestUploadAsset_New(t *testing.T) {
	var uploadedName string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	mux.HandleFunc("POST /api/uploads/repos/hermitcli/hermit/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		uploadedName = r.URL.Query().Get("name")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "name": uploadedName})
	})

	client := newTestClient(t, mux)
	path := writeAsset(t, "hermit-x86_64-unknown-linux-gnu.tar.gz")
	gt.NoError(t, client.UploadAsset(context.Background(), "hermitcli", "hermit", 7, path, false))
	gt.Value(t, uploadedName).Equal("hermit-x86_64-unknown-linux-gnu.tar.gz")
}

func TestUploadAsset_DuplicateWithoutClobber(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 99, "name": "hermit-x86_64-unknown-linux-gnu.tar.gz"}]`)
	})

	client := newTestClient(t, mux)
	path := writeAsset(t, "hermit-x86_64-unknown-linux-gnu.tar.gz")
	err := client.UploadAsset(context.Background(), "hermitcli", "hermit", 7, path, false)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("asset already exists")
}

func TestUploadAsset_ClobberReplacesExisting(t *testing.T) {
	var deleted, uploaded bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 99, "name": "hermit-x86_64-unknown-linux-gnu.tar.gz"}]`)
	})
	mux.HandleFunc("DELETE /api/v3/repos/hermitcli/hermit/releases/assets/99", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/uploads/repos/hermitcli/hermit/releases/7/assets", func(w http.ResponseWriter, r *http.Request) {
		uploaded = true
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 100})
	})

	client := newTestClient(t, mux)
	path := writeAsset(t, "hermit-x86_64-unknown-linux-gnu.tar.gz")
	gt.NoError(t, client.UploadAsset(context.Background(), "hermitcli", "hermit", 7, path, true))
	gt.True(t, deleted)
	gt.True(t, uploaded)
}

func TestDownloadZipball(t *testing.T) {
	// GetArchiveLink expects a 302 pointing at the actual download URL.
	zipContent := []byte("fake zip content")
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("GET /api/v3/repos/hermitcli/hermit/zipball/v1.0.0", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", server.URL+"/download/zip")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("GET /download/zip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(zipContent)
	})

	client, err := githubinfra.NewClient("test-token", githubinfra.WithBaseURLs(server.URL, server.URL))
	gt.NoError(t, err)

	data, err := client.DownloadZipball(context.Background(), "hermitcli", "hermit", "v1.0.0")
	gt.NoError(t, err)
	gt.Value(t, data).Equal(zipContent)
}
