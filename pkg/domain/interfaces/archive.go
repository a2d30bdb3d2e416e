package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/idxget/pkg/domain/model"
)

// ArchiveClient defines operations against a remote HTTP index archive
type ArchiveClient interface {
	// ListDirectory returns the hyperlink targets of the index page at dirURL
	ListDirectory(ctx context.Context, dirURL string) ([]model.DirectoryEntry, error)

	// Open starts a GET of fileURL and returns the response body stream
	Open(ctx context.Context, fileURL string) (io.ReadCloser, error)
}
