package usecase_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
)

// MockArchiveClient is an in-memory archive recording every call
type MockArchiveClient struct {
	mu sync.Mutex

	Pages   map[string][]string // directory URL -> hrefs in listing order
	Files   map[string]string   // file URL -> content
	OpenErr map[string]error    // file URL -> error returned by Open

	ListCalls []string
	OpenCalls []string
}

func (m *MockArchiveClient) ListDirectory(ctx context.Context, dirURL string) ([]model.DirectoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls = append(m.ListCalls, dirURL)

	hrefs, ok := m.Pages[dirURL]
	if !ok {
		return nil, goerr.Wrap(types.ErrFetch, "unexpected status code", goerr.V("url", dirURL), goerr.V("status", 404))
	}

	entries := make([]model.DirectoryEntry, 0, len(hrefs))
	for _, href := range hrefs {
		entries = append(entries, model.DirectoryEntry{Href: href})
	}
	return entries, nil
}

func (m *MockArchiveClient) Open(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalls = append(m.OpenCalls, fileURL)

	if err := m.OpenErr[fileURL]; err != nil {
		return nil, err
	}
	content, ok := m.Files[fileURL]
	if !ok {
		return nil, goerr.Wrap(types.ErrDownload, "unexpected status code", goerr.V("url", fileURL), goerr.V("status", 404))
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (m *MockArchiveClient) Calls() (list, open []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ListCalls...), append([]string(nil), m.OpenCalls...)
}

// failingReader returns its data and then a transport error
type failingReader struct {
	data []byte
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset by peer")
	}
	r.done = true
	return copy(p, r.data), nil
}

func (r *failingReader) Close() error { return nil }
