package cli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/idxget/pkg/cli/config"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var logger *slog.Logger

	crawl := cmdCrawl()

	app := &cli.Command{
		Name:    "idxget",
		Usage:   "Download files matching a pattern from a recursive HTTP directory index",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), crawl.Flags...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			logger = logger.With(slog.String("run_id", uuid.NewString()))
			slog.SetDefault(logger)
			ctx = logging.With(ctx, logger)
			return ctx, nil
		},
		Action: crawl.Action,
		Commands: []*cli.Command{
			cmdExtract(),
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
