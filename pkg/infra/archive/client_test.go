package archive_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/m-mizutani/idxget/pkg/infra/archive"
)

var trickleChunk = []byte(strings.Repeat("A", 1024))

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/Archaea/", func(w http.ResponseWriter, r *http.Request) {
		gt.String(t, r.Header.Get("User-Agent")).Equal("idxget-test")
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<a href="?C=N;O=D">Name</a><a href="1/">1/</a><a href="a.fasta.gz">a</a>`)
	})
	mux.HandleFunc("/Archaea/a.fasta.gz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "payload")
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/trickle.fasta.gz", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 10; i++ {
			_, _ = w.Write(trickleChunk)
			flusher.Flush()
			select {
			case <-time.After(50 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
	})
	mux.HandleFunc("/slow/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListDirectory(t *testing.T) {
	srv := newTestServer(t)
	client := archive.NewClient(archive.WithUserAgent("idxget-test"))

	entries, err := client.ListDirectory(context.Background(), srv.URL+"/Archaea/")
	gt.NoError(t, err)
	gt.Equal(t, entries, []model.DirectoryEntry{
		{Href: "1/"},
		{Href: "a.fasta.gz"},
	})
}

func TestClient_ListDirectory_Errors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("non-success status", func(t *testing.T) {
		client := archive.NewClient()
		entries, err := client.ListDirectory(context.Background(), srv.URL+"/broken/")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrFetch))
		gt.Number(t, len(entries)).Equal(0)
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := archive.NewClient()
		_, err := client.ListDirectory(context.Background(), "http://127.0.0.1:1/Archaea/")
		gt.True(t, errors.Is(err, types.ErrFetch))
	})

	t.Run("timeout", func(t *testing.T) {
		client := archive.NewClient(archive.WithTimeout(50 * time.Millisecond))
		_, err := client.ListDirectory(context.Background(), srv.URL+"/slow/")
		gt.True(t, errors.Is(err, types.ErrFetch))
	})
}

func TestClient_Open(t *testing.T) {
	srv := newTestServer(t)
	client := archive.NewClient()

	t.Run("streams body", func(t *testing.T) {
		body, err := client.Open(context.Background(), srv.URL+"/Archaea/a.fasta.gz")
		gt.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		gt.NoError(t, err)
		gt.String(t, string(data)).Equal("payload")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.Open(context.Background(), srv.URL+"/missing.fasta.gz")
		gt.True(t, errors.Is(err, types.ErrDownload))
		gt.True(t, strings.Contains(err.Error(), "unexpected status code"))
	})
}

func TestClient_TimeoutDoesNotCutBody(t *testing.T) {
	srv := newTestServer(t)
	client := archive.NewClient(archive.WithTimeout(200 * time.Millisecond))

	body, err := client.Open(context.Background(), srv.URL+"/trickle.fasta.gz")
	gt.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	gt.NoError(t, err)
	gt.Number(t, len(data)).Equal(10 * len(trickleChunk))
}
