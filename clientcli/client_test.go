package clientcli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/livestow"
	"github.com/sagarc03/livestow/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://127.0.0.1:8080"})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := clientcli.New(&clientcli.Config{Endpoint: "ftp://example.com"})
		assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("file upload", func(t *testing.T) {
		expectedID := uuid.New()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/media/clip.ts", r.URL.Path)
			assert.Equal(t, int64(12), r.ContentLength)

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.Equal(t, "test content", string(body))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":         expectedID.String(),
				"name":       "media/clip.ts",
				"chunks":     1,
				"size_bytes": 12,
				"complete":   true,
				"created_at": time.Now().Format(time.RFC3339),
				"updated_at": time.Now().Format(time.RFC3339),
			})
		}))
		defer server.Close()

		localPath := filepath.Join(t.TempDir(), "clip.ts")
		require.NoError(t, os.WriteFile(localPath, []byte("test content"), 0o644))

		result, err := newTestClient(t, server).Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: localPath,
			Name:      "media/clip.ts",
		})
		require.NoError(t, err)

		assert.Equal(t, expectedID, result.ID)
		assert.Equal(t, "media/clip.ts", result.Name)
		assert.Equal(t, int64(12), result.Size)
		assert.True(t, result.Complete)
	})

	t.Run("stdin upload is chunked", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, int64(-1), r.ContentLength)
			assert.Equal(t, []string{"chunked"}, r.TransferEncoding)

			body, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":         uuid.New().String(),
				"name":       "pipe",
				"size_bytes": len(body),
				"complete":   true,
			})
		}))
		defer server.Close()

		result, err := newTestClient(t, server).Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: "-",
			Name:      "pipe",
			Stdin:     strings.NewReader("from a pipe"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(len("from a pipe")), result.Size)
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("name derived from local path", func(t *testing.T) {
		localPath := filepath.Join(t.TempDir(), "a.bin")
		require.NoError(t, os.WriteFile(localPath, []byte("x"), 0o644))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/"+clientcli.NormalizeLocalToRemotePath(localPath), r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"name":"x"}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server).Upload(context.Background(), clientcli.UploadOptions{LocalPath: localPath})
		require.NoError(t, err)
	})

	t.Run("stdin requires a name", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Upload(context.Background(), clientcli.UploadOptions{LocalPath: "-"})
		assert.ErrorIs(t, err, clientcli.ErrEmptyName)
	})

	t.Run("missing file", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: filepath.Join(t.TempDir(), "missing"),
			Name:      "x",
		})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("server rejects name", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_name","message":"Invalid object name"}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server).Upload(context.Background(), clientcli.UploadOptions{
			LocalPath: "-",
			Name:      "bad",
			Stdin:     strings.NewReader(""),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, clientcli.ErrBadRequest)

		var apiErr *clientcli.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid_name", apiErr.Code)
		assert.Contains(t, err.Error(), "Invalid object name")
	})
}

func TestClient_Download(t *testing.T) {
	streamingServer := func(chunks ...string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)

			w.Header().Set("X-Object-Id", "0b6f3b0e-8f63-4a36-9f6e-3b1f1d1f8c11")
			w.Header().Set("Trailer", "X-Stream-Outcome")
			w.WriteHeader(http.StatusOK)
			for _, c := range chunks {
				_, _ = w.Write([]byte(c))
				w.(http.Flusher).Flush()
			}
			w.Header().Set("X-Stream-Outcome", "stale")
		}))
	}

	t.Run("download to file", func(t *testing.T) {
		server := streamingServer("abc", "de", "f")
		defer server.Close()

		localPath := filepath.Join(t.TempDir(), "sub", "out.bin")
		result, err := newTestClient(t, server).Download(context.Background(), clientcli.DownloadOptions{
			Name:      "cam/out.bin",
			LocalPath: localPath,
		})
		require.NoError(t, err)

		assert.Equal(t, localPath, result.LocalPath)
		assert.Equal(t, int64(6), result.Size)
		assert.Equal(t, livestow.OutcomeStale, result.Outcome)
		assert.Equal(t, "0b6f3b0e-8f63-4a36-9f6e-3b1f1d1f8c11", result.ID)

		content, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "abcdef", string(content))
	})

	t.Run("download to stdout writer", func(t *testing.T) {
		server := streamingServer("stdout ", "content")
		defer server.Close()

		var out bytes.Buffer
		result, err := newTestClient(t, server).Download(context.Background(), clientcli.DownloadOptions{
			Name:      "x",
			LocalPath: "-",
			Stdout:    &out,
		})
		require.NoError(t, err)

		assert.Equal(t, "-", result.LocalPath)
		assert.Equal(t, "stdout content", out.String())
		assert.Equal(t, livestow.OutcomeStale, result.Outcome)
	})

	t.Run("malformed outcome trailer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Trailer", "X-Stream-Outcome")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("data"))
			w.Header().Set("X-Stream-Outcome", "exploded")
		}))
		defer server.Close()

		var out bytes.Buffer
		result, err := newTestClient(t, server).Download(context.Background(), clientcli.DownloadOptions{
			Name:      "x",
			LocalPath: "-",
			Stdout:    &out,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid outcome: exploded")
		assert.Equal(t, "data", out.String())
		assert.Empty(t, result.Outcome)
	})

	t.Run("missing outcome trailer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("data"))
		}))
		defer server.Close()

		var out bytes.Buffer
		result, err := newTestClient(t, server).Download(context.Background(), clientcli.DownloadOptions{
			Name:      "x",
			LocalPath: "-",
			Stdout:    &out,
		})
		require.NoError(t, err)
		assert.Empty(t, result.Outcome)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"Object not found"}`))
		}))
		defer server.Close()

		_, err := newTestClient(t, server).Download(context.Background(), clientcli.DownloadOptions{
			Name:      "missing",
			LocalPath: "-",
			Stdout:    io.Discard,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Download(context.Background(), clientcli.DownloadOptions{})
		assert.ErrorIs(t, err, clientcli.ErrEmptyName)
	})
}

func TestClient_Stat(t *testing.T) {
	id := uuid.New()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("X-Object-Id", id.String())
		w.Header().Set("X-Object-Chunks", "3")
		w.Header().Set("X-Object-Size", "6")
		w.Header().Set("X-Object-Complete", "false")
		w.Header().Set("Last-Modified", updated.Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	info, err := client.Stat(context.Background(), "live/a")
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, "live/a", info.Name)
	assert.Equal(t, 3, info.Chunks)
	assert.Equal(t, int64(6), info.Size)
	assert.False(t, info.Complete)
	assert.True(t, updated.Equal(info.UpdatedAt))

	_, err = client.Stat(context.Background(), "missing")
	assert.ErrorIs(t, err, clientcli.ErrNotFound)
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"Object not found"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	t.Run("mixed results", func(t *testing.T) {
		results, err := client.Delete(context.Background(), clientcli.DeleteOptions{
			Names: []string{"a", "missing", "b"},
		})
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.True(t, results[0].Deleted)
		assert.False(t, results[1].Deleted)
		assert.ErrorIs(t, results[1].Err, clientcli.ErrNotFound)
		assert.True(t, results[2].Deleted)
		assert.True(t, clientcli.HasDeleteErrors(results))
	})

	t.Run("no names", func(t *testing.T) {
		_, err := client.Delete(context.Background(), clientcli.DeleteOptions{})
		assert.ErrorIs(t, err, clientcli.ErrNoNames)
	})
}

func TestClient_List(t *testing.T) {
	t.Run("with prefix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/", r.URL.Path)
			assert.Equal(t, "live/", r.URL.Query().Get("prefix"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"items":[
				{"id":"` + uuid.NewString() + `","name":"live/a","chunks":2,"size_bytes":10,"complete":true},
				{"id":"` + uuid.NewString() + `","name":"live/b","chunks":1,"size_bytes":5,"complete":false}
			]}`))
		}))
		defer server.Close()

		result, err := newTestClient(t, server).List(context.Background(), clientcli.ListOptions{Prefix: "live/"})
		require.NoError(t, err)

		require.Len(t, result.Items, 2)
		assert.Equal(t, "live/a", result.Items[0].Name)
		assert.False(t, result.Items[1].Complete)
		assert.Equal(t, int64(15), result.TotalSize())
	})

	t.Run("empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items":null}`))
		}))
		defer server.Close()

		result, err := newTestClient(t, server).List(context.Background(), clientcli.ListOptions{})
		require.NoError(t, err)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
	})
}

func TestHasDeleteErrors(t *testing.T) {
	assert.False(t, clientcli.HasDeleteErrors(nil))
	assert.False(t, clientcli.HasDeleteErrors([]clientcli.DeleteResult{{Name: "a", Deleted: true}}))
	assert.True(t, clientcli.HasDeleteErrors([]clientcli.DeleteResult{{Name: "a", Err: errors.New("boom")}}))
}

func TestAPIError(t *testing.T) {
	err := &clientcli.APIError{StatusCode: http.StatusNotFound}

	assert.ErrorIs(t, err, clientcli.ErrNotFound)
	assert.NotErrorIs(t, err, clientcli.ErrBadRequest)
	assert.True(t, err.IsNotFound())
	assert.Equal(t, "server error: 404 Not Found", err.Error())
}

func TestNormalizeLocalToRemotePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"./foo/bar.ts", "foo/bar.ts"},
		{"/abs/path/file.ts", "abs/path/file.ts"},
		{"../sibling/file.ts", "sibling/file.ts"},
		{"../../deep/file.ts", "deep/file.ts"},
		{"a//b///c.ts", "a/b/c.ts"},
		{"a/./b/../c.ts", "a/c.ts"},
		{".", ""},
		{"..", ""},
		{"file.ts", "file.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.NormalizeLocalToRemotePath(tt.input))
		})
	}
}
