package interfaces

import (
	"context"

	"github.com/m-mizutani/idxget/pkg/domain/model"
)

// Downloader writes a remote file to its local path
type Downloader interface {
	// Download fetches task.URL into task.LocalPath unless it already exists
	Download(ctx context.Context, task model.DownloadTask) (model.DownloadStatus, error)
}

// Walker traverses the archive and downloads matching files
type Walker interface {
	// Walk runs a full traversal starting at the configured base URL
	Walk(ctx context.Context) (*model.CrawlResult, error)
}

// Extractor decompresses archives found under a directory tree
type Extractor interface {
	// Extract decompresses every supported compressed file below root
	Extract(ctx context.Context, root string) (*model.ExtractResult, error)
}
