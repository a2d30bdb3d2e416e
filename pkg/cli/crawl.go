package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/cli/config"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/infra/archive"
	"github.com/m-mizutani/idxget/pkg/usecase"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type crawlCommand struct {
	Flags  []cli.Flag
	Action cli.ActionFunc
}

func cmdCrawl() crawlCommand {
	var crawlCfg config.Crawl

	return crawlCommand{
		Flags: crawlCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := crawlCfg.LoadFile(c.IsSet); err != nil {
				return err
			}
			cfg, err := crawlCfg.Build()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, cfg)
		},
	}
}

func runCrawl(ctx context.Context, cfg model.CrawlConfig) error {
	logger := logging.From(ctx)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("output_dir", cfg.OutputDir))
	}

	client := archive.NewClient(archive.WithTimeout(cfg.Timeout))
	downloader := usecase.NewDownloader(client)
	walker := usecase.NewWalker(client, downloader, cfg)

	result, err := walker.Walk(ctx)
	if err != nil {
		return goerr.Wrap(err, "crawl failed")
	}

	logger.Info("Crawl summary",
		slog.Int("directories", len(result.Directories)),
		slog.Int("downloaded", len(result.Downloaded)),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("failed", len(result.Failed)),
	)

	if !cfg.Extract {
		return nil
	}

	extracted, err := usecase.NewExtractor().Extract(ctx, cfg.OutputDir)
	if err != nil {
		return goerr.Wrap(err, "extraction failed")
	}

	logger.Info("Extraction summary",
		slog.Int("extracted", len(extracted.Extracted)),
		slog.Int("failed", len(extracted.Failed)),
	)
	return nil
}
