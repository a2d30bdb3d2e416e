package config

import (
	"os"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Crawl holds configuration of a crawl run
type Crawl struct {
	OutputDir         string
	Pattern           string
	PreserveStructure bool
	Extract           bool
	BaseURL           string
	Anchor            string
	Concurrency       int
	MaxDepth          int
	Timeout           time.Duration
	ConfigFile        string
}

// Flags returns CLI flags for crawl configuration. They are local to the
// command they are attached to.
func (c *Crawl) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory where downloaded files are stored",
			Value:       model.DefaultOutputDir,
			Destination: &c.OutputDir,
			Sources:     cli.EnvVars("IDXGET_OUTPUT_DIR"),
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "pattern",
			Aliases:     []string{"p"},
			Usage:       "Regular expression selecting files to download",
			Value:       model.DefaultPattern,
			Destination: &c.Pattern,
			Sources:     cli.EnvVars("IDXGET_PATTERN"),
			Local:       true,
		},
		&cli.BoolFlag{
			Name:        "preserve-structure",
			Aliases:     []string{"s"},
			Usage:       "Mirror the remote directory layout below the output directory",
			Destination: &c.PreserveStructure,
			Sources:     cli.EnvVars("IDXGET_PRESERVE_STRUCTURE"),
			Local:       true,
		},
		&cli.BoolFlag{
			Name:        "extract",
			Aliases:     []string{"e"},
			Usage:       "Decompress downloaded .gz and .zst files after the crawl",
			Destination: &c.Extract,
			Sources:     cli.EnvVars("IDXGET_EXTRACT"),
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Aliases:     []string{"u"},
			Usage:       "Root URL of the directory index",
			Value:       model.DefaultBaseURL,
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("IDXGET_BASE_URL"),
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "anchor",
			Usage:       "Path segment used as the root of the preserved layout (default: last segment of base URL)",
			Destination: &c.Anchor,
			Sources:     cli.EnvVars("IDXGET_ANCHOR"),
			Local:       true,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Aliases:     []string{"j"},
			Usage:       "Number of parallel downloads",
			Value:       1,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("IDXGET_CONCURRENCY"),
			Local:       true,
		},
		&cli.IntFlag{
			Name:        "max-depth",
			Usage:       "Maximum directory depth below base URL (0: unlimited)",
			Destination: &c.MaxDepth,
			Sources:     cli.EnvVars("IDXGET_MAX_DEPTH"),
			Local:       true,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "HTTP request timeout (0: no timeout)",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("IDXGET_TIMEOUT"),
			Local:       true,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file providing defaults for the flags above",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("IDXGET_CONFIG"),
			Local:       true,
		},
	}
}

type crawlFile struct {
	OutputDir         *string `toml:"output_dir"`
	Pattern           *string `toml:"pattern"`
	PreserveStructure *bool   `toml:"preserve_structure"`
	Extract           *bool   `toml:"extract"`
	BaseURL           *string `toml:"base_url"`
	Anchor            *string `toml:"anchor"`
	Concurrency       *int    `toml:"concurrency"`
	MaxDepth          *int    `toml:"max_depth"`
	Timeout           *string `toml:"timeout"`
}

// LoadFile reads the TOML config file, if any, and applies its values to
// every field whose flag was not set on the command line or environment.
func (c *Crawl) LoadFile(isSet func(name string) bool) error {
	if c.ConfigFile == "" {
		return nil
	}

	raw, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return goerr.Wrap(types.ErrInvalidConfig, "failed to read config file",
			goerr.V("path", c.ConfigFile), goerr.V("cause", err.Error()))
	}

	var file crawlFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return goerr.Wrap(types.ErrInvalidConfig, "failed to parse config file",
			goerr.V("path", c.ConfigFile), goerr.V("cause", err.Error()))
	}

	applyValue(&c.OutputDir, file.OutputDir, !isSet("output-dir"))
	applyValue(&c.Pattern, file.Pattern, !isSet("pattern"))
	applyValue(&c.PreserveStructure, file.PreserveStructure, !isSet("preserve-structure"))
	applyValue(&c.Extract, file.Extract, !isSet("extract"))
	applyValue(&c.BaseURL, file.BaseURL, !isSet("base-url"))
	applyValue(&c.Anchor, file.Anchor, !isSet("anchor"))
	applyValue(&c.Concurrency, file.Concurrency, !isSet("concurrency"))
	applyValue(&c.MaxDepth, file.MaxDepth, !isSet("max-depth"))

	if file.Timeout != nil && !isSet("timeout") {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return goerr.Wrap(types.ErrInvalidConfig, "invalid timeout in config file",
				goerr.V("timeout", *file.Timeout))
		}
		c.Timeout = d
	}

	return nil
}

func applyValue[T any](dst *T, src *T, apply bool) {
	if apply && src != nil {
		*dst = *src
	}
}

// Build compiles the pattern and returns a validated crawl configuration
func (c *Crawl) Build() (model.CrawlConfig, error) {
	pattern, err := regexp.Compile(c.Pattern)
	if err != nil {
		return model.CrawlConfig{}, goerr.Wrap(types.ErrInvalidConfig, "invalid pattern",
			goerr.V("pattern", c.Pattern), goerr.V("cause", err.Error()))
	}

	cfg := model.CrawlConfig{
		OutputDir:         c.OutputDir,
		Pattern:           pattern,
		PreserveStructure: c.PreserveStructure,
		Extract:           c.Extract,
		BaseURL:           c.BaseURL,
		Anchor:            c.Anchor,
		Concurrency:       c.Concurrency,
		MaxDepth:          c.MaxDepth,
		Timeout:           c.Timeout,
	}
	if err := cfg.Validate(); err != nil {
		return model.CrawlConfig{}, err
	}
	return cfg, nil
}

// Extract holds configuration of a standalone extraction pass
type Extract struct {
	OutputDir string
}

// Flags returns CLI flags for extraction
func (c *Extract) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output-dir",
			Aliases:     []string{"o"},
			Usage:       "Directory to scan for compressed files",
			Value:       model.DefaultOutputDir,
			Destination: &c.OutputDir,
			Sources:     cli.EnvVars("IDXGET_OUTPUT_DIR"),
		},
	}
}
