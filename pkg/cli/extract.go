package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/cli/config"
	"github.com/m-mizutani/idxget/pkg/usecase"
	"github.com/m-mizutani/idxget/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdExtract() *cli.Command {
	var extractCfg config.Extract

	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Decompress every .gz and .zst file below the output directory",
		Flags:   extractCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			result, err := usecase.NewExtractor().Extract(ctx, extractCfg.OutputDir)
			if err != nil {
				return goerr.Wrap(err, "extraction failed")
			}

			logging.From(ctx).Info("Extraction summary",
				slog.Int("extracted", len(result.Extracted)),
				slog.Int("failed", len(result.Failed)),
			)
			return nil
		},
	}
}
