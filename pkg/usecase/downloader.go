package usecase

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/interfaces"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
)

// chunkSize is the copy buffer size used when streaming a file to disk
const chunkSize = 8 * 1024

type downloader struct {
	client interfaces.ArchiveClient
}

// NewDownloader creates a new Downloader streaming files from client
func NewDownloader(client interfaces.ArchiveClient) interfaces.Downloader {
	return &downloader{
		client: client,
	}
}

// Download streams task.URL to task.LocalPath. An existing regular file is
// kept as-is. Transport and stream failures are tagged with types.ErrDownload
// and leave any partially written file on disk. Local filesystem failures are
// returned untagged.
func (uc *downloader) Download(ctx context.Context, task model.DownloadTask) (model.DownloadStatus, error) {
	logger := logging.From(ctx)

	stat, err := os.Stat(task.LocalPath)
	switch {
	case err == nil && stat.Mode().IsRegular():
		logger.Info("File already exists, skipping", "path", task.LocalPath)
		return model.DownloadSkipped, nil
	case err == nil:
		return model.DownloadFailed, goerr.Wrap(types.ErrDownload, "target exists and is not a regular file",
			goerr.V("path", task.LocalPath))
	case !errors.Is(err, fs.ErrNotExist):
		return model.DownloadFailed, goerr.Wrap(err, "failed to check local file", goerr.V("path", task.LocalPath))
	}

	logger.Info("Downloading file", "url", task.URL, "path", task.LocalPath)

	body, err := uc.client.Open(ctx, task.URL)
	if err != nil {
		return model.DownloadFailed, err
	}
	defer body.Close()

	file, err := os.Create(task.LocalPath)
	if err != nil {
		return model.DownloadFailed, goerr.Wrap(err, "failed to create local file", goerr.V("path", task.LocalPath))
	}

	// hide ReaderFrom/WriterTo so that the fixed-size buffer is actually used
	buf := make([]byte, chunkSize)
	written, copyErr := io.CopyBuffer(struct{ io.Writer }{file}, struct{ io.Reader }{body}, buf)
	closeErr := file.Close()

	if copyErr != nil {
		return model.DownloadFailed, goerr.Wrap(types.ErrDownload, "failed to stream file",
			goerr.V("url", task.URL),
			goerr.V("path", task.LocalPath),
			goerr.V("written_bytes", written),
			goerr.V("cause", copyErr.Error()),
		)
	}
	if closeErr != nil {
		return model.DownloadFailed, goerr.Wrap(closeErr, "failed to close local file", goerr.V("path", task.LocalPath))
	}

	logger.Debug("Downloaded file", "url", task.URL, "path", task.LocalPath, "size_bytes", written)
	return model.DownloadCompleted, nil
}
