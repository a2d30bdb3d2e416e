package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/idxget/pkg/cli/config"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// parseCrawl runs a throwaway command carrying the crawl flags and returns
// the resulting configuration
func parseCrawl(t *testing.T, args ...string) (model.CrawlConfig, error) {
	t.Helper()

	var (
		cfg    config.Crawl
		result model.CrawlConfig
	)
	cmd := &cli.Command{
		Name:  "idxget",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.LoadFile(c.IsSet); err != nil {
				return err
			}
			built, err := cfg.Build()
			if err != nil {
				return err
			}
			result = built
			return nil
		},
	}

	err := cmd.Run(context.Background(), append([]string{"idxget"}, args...))
	return result, err
}

func TestCrawl_Defaults(t *testing.T) {
	cfg, err := parseCrawl(t)
	gt.NoError(t, err)

	gt.String(t, cfg.OutputDir).Equal(model.DefaultOutputDir)
	gt.String(t, cfg.Pattern.String()).Equal(model.DefaultPattern)
	gt.String(t, cfg.BaseURL).Equal(model.DefaultBaseURL)
	gt.String(t, cfg.Anchor).Equal("Archaea")
	gt.Number(t, cfg.Concurrency).Equal(1)
	gt.Number(t, cfg.MaxDepth).Equal(0)
	gt.False(t, cfg.PreserveStructure)
	gt.False(t, cfg.Extract)
}

func TestCrawl_Flags(t *testing.T) {
	cfg, err := parseCrawl(t,
		"-o", "/tmp/out",
		"-p", `\.txt$`,
		"-s", "-e",
		"-u", "http://mirror.test/pub/data",
		"-j", "4",
		"--max-depth", "3",
		"--timeout", "30s",
	)
	gt.NoError(t, err)

	gt.String(t, cfg.OutputDir).Equal("/tmp/out")
	gt.True(t, cfg.Pattern.MatchString("a.txt"))
	gt.True(t, cfg.PreserveStructure)
	gt.True(t, cfg.Extract)
	gt.String(t, cfg.BaseURL).Equal("http://mirror.test/pub/data/")
	gt.String(t, cfg.Anchor).Equal("data")
	gt.Number(t, cfg.Concurrency).Equal(4)
	gt.Number(t, cfg.MaxDepth).Equal(3)
	gt.Equal(t, cfg.Timeout, 30*time.Second)
}

func TestCrawl_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idxget.toml")
	gt.NoError(t, os.WriteFile(path, []byte(`
output_dir = "/data/archaea"
pattern = '\.fasta$'
preserve_structure = true
base_url = "http://mirror.test/pub/Archaea/"
concurrency = 8
timeout = "1m"
`), 0644))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := parseCrawl(t, "-c", path)
		gt.NoError(t, err)
		gt.String(t, cfg.OutputDir).Equal("/data/archaea")
		gt.String(t, cfg.Pattern.String()).Equal(`\.fasta$`)
		gt.True(t, cfg.PreserveStructure)
		gt.String(t, cfg.BaseURL).Equal("http://mirror.test/pub/Archaea/")
		gt.Number(t, cfg.Concurrency).Equal(8)
		gt.Equal(t, cfg.Timeout, time.Minute)
	})

	t.Run("explicit flags override file", func(t *testing.T) {
		cfg, err := parseCrawl(t, "-c", path, "-o", "/tmp/other", "-j", "2")
		gt.NoError(t, err)
		gt.String(t, cfg.OutputDir).Equal("/tmp/other")
		gt.Number(t, cfg.Concurrency).Equal(2)
		gt.String(t, cfg.Pattern.String()).Equal(`\.fasta$`)
	})
}

func TestCrawl_InvalidInput(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "bad pattern", args: []string{"-p", "("}},
		{name: "zero concurrency", args: []string{"-j", "0"}},
		{name: "unsupported scheme", args: []string{"-u", "ftp://ftp.test/pub/"}},
		{name: "missing config file", args: []string{"-c", "/nonexistent/idxget.toml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseCrawl(t, tc.args...)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, types.ErrInvalidConfig))
		})
	}
}

func TestCrawl_BrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	gt.NoError(t, os.WriteFile(path, []byte("concurrency = [\n"), 0644))

	_, err := parseCrawl(t, "-c", path)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrInvalidConfig))
}
