package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/interfaces"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/m-mizutani/idxget/pkg/utils/async"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
)

type walker struct {
	client     interfaces.ArchiveClient
	downloader interfaces.Downloader
	cfg        model.CrawlConfig
}

// NewWalker creates a Walker. cfg must have passed Validate.
func NewWalker(client interfaces.ArchiveClient, downloader interfaces.Downloader, cfg model.CrawlConfig) interfaces.Walker {
	return &walker{
		client:     client,
		downloader: downloader,
		cfg:        cfg,
	}
}

// walkState is owned by the traversal goroutine; only result is shared with
// download handlers.
type walkState struct {
	root    string
	visited map[string]struct{}
	claimed map[string]struct{}
	result  *model.CrawlResult
	pool    *async.Pool
}

// Walk traverses the archive depth-first from the base URL. Directory listing
// stays sequential; downloads run inline or on the pool depending on
// Concurrency. Fetch, download and path errors are logged and localized;
// filesystem errors and cancellation end the walk.
func (uc *walker) Walk(ctx context.Context) (*model.CrawlResult, error) {
	logger := logging.From(ctx)

	root, err := canonicalDir(uc.cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting crawl",
		"base_url", root,
		"output_dir", uc.cfg.OutputDir,
		"pattern", uc.cfg.Pattern.String(),
		"preserve_structure", uc.cfg.PreserveStructure,
		"concurrency", uc.cfg.Concurrency,
	)

	st := &walkState{
		root:    root,
		visited: make(map[string]struct{}),
		claimed: make(map[string]struct{}),
		result:  &model.CrawlResult{},
		pool:    async.NewPool(ctx, uc.cfg.Concurrency),
	}

	walkErr := uc.walkDir(st.pool.Context(), st, root, 0)
	poolErr := st.pool.Wait()
	if err := ctx.Err(); err != nil {
		return st.result, goerr.Wrap(err, "crawl interrupted")
	}
	if poolErr != nil {
		return st.result, poolErr
	}
	if walkErr != nil {
		return st.result, walkErr
	}

	logger.Info("Crawl completed", "base_url", root)
	return st.result, nil
}

func (uc *walker) walkDir(ctx context.Context, st *walkState, dirURL string, depth int) error {
	logger := logging.From(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}

	st.visited[dirURL] = struct{}{}
	st.result.AddDirectory(dirURL)

	for _, entry := range uc.list(ctx, dirURL) {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := ResolveURL(dirURL, entry.Href)
		if err != nil {
			logger.Warn("Skipping unresolvable entry", "dir", dirURL, "href", entry.Href, "error", err)
			continue
		}

		if entry.IsDir() {
			child, err := canonicalDir(target)
			if err != nil {
				logger.Warn("Skipping unresolvable directory", "dir", dirURL, "href", entry.Href, "error", err)
				continue
			}

			switch {
			case !strings.HasPrefix(child, st.root):
				logger.Debug("Skipping directory outside archive root", "url", child)
			case isVisited(st, child):
				logger.Debug("Skipping already visited directory", "url", child)
			case uc.cfg.MaxDepth > 0 && depth >= uc.cfg.MaxDepth:
				logger.Debug("Skipping directory beyond max depth", "url", child, "max_depth", uc.cfg.MaxDepth)
			default:
				if err := uc.walkDir(ctx, st, child, depth+1); err != nil {
					return err
				}
			}
			continue
		}

		if !uc.cfg.Pattern.MatchString(entry.Name()) {
			logger.Debug("Ignoring entry", "dir", dirURL, "href", entry.Href)
			continue
		}

		if err := uc.schedule(st, target); err != nil {
			return err
		}
	}

	return nil
}

// list returns the entries of dirURL; a failed listing is logged and treated
// as an empty directory.
func (uc *walker) list(ctx context.Context, dirURL string) []model.DirectoryEntry {
	logger := logging.From(ctx)

	logger.Debug("Listing directory", "url", dirURL)
	entries, err := uc.client.ListDirectory(ctx, dirURL)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("Failed to list directory", "url", dirURL, "error", err)
		}
		return nil
	}
	return entries
}

func (uc *walker) schedule(st *walkState, fileURL string) error {
	localPath, err := LocalPath(fileURL, uc.cfg.OutputDir, uc.cfg.Anchor, uc.cfg.PreserveStructure)
	if err != nil {
		if errors.Is(err, types.ErrPath) {
			logging.From(st.pool.Context()).Error("Failed to resolve local path", "url", fileURL, "error", err)
			st.result.AddDownload(fileURL, model.DownloadFailed)
			return nil
		}
		return err
	}

	// two entries mapping to the same file must not be written concurrently
	if _, ok := st.claimed[localPath]; ok {
		logging.From(st.pool.Context()).Info("File already scheduled, skipping", "url", fileURL, "path", localPath)
		st.result.AddDownload(fileURL, model.DownloadSkipped)
		return nil
	}
	st.claimed[localPath] = struct{}{}

	task := model.DownloadTask{URL: fileURL, LocalPath: localPath}
	st.pool.Go(func(ctx context.Context) error {
		status, err := uc.downloader.Download(ctx, task)
		st.result.AddDownload(task.URL, status)
		if err != nil {
			if errors.Is(err, types.ErrDownload) {
				if ctx.Err() == nil {
					logging.From(ctx).Error("Failed to download file", "url", task.URL, "error", err)
				}
				return nil
			}
			return err
		}
		return nil
	})

	return nil
}

func isVisited(st *walkState, dirURL string) bool {
	_, ok := st.visited[dirURL]
	return ok
}
