package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/types"
)

const (
	// DefaultBaseURL is the archaeal reference proteome tree of UniProt
	DefaultBaseURL = "https://ftp.uniprot.org/pub/databases/uniprot/knowledgebase/reference_proteomes/Archaea/"
	// DefaultOutputDir is where files land when no output directory is given
	DefaultOutputDir = "./uniprot_archaea"
	// DefaultPattern selects gzipped FASTA files
	DefaultPattern = `\.fasta\.gz$`
)

// CrawlConfig is the immutable configuration of one crawl run
type CrawlConfig struct {
	OutputDir         string
	Pattern           *regexp.Regexp
	PreserveStructure bool
	Extract           bool
	BaseURL           string
	Anchor            string        // Root label segment; empty means last segment of BaseURL
	Concurrency       int           // Parallel downloads, 1 keeps the run sequential
	MaxDepth          int           // 0 means unlimited
	Timeout           time.Duration // 0 means no HTTP timeout
}

// Validate checks the configuration and fills derived defaults
func (c *CrawlConfig) Validate() error {
	if c.OutputDir == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "output directory is empty")
	}
	if c.Pattern == nil {
		return goerr.Wrap(types.ErrInvalidConfig, "selection pattern is not set")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return goerr.Wrap(types.ErrInvalidConfig, "base URL is malformed",
			goerr.V("base_url", c.BaseURL), goerr.V("error", err.Error()))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return goerr.Wrap(types.ErrInvalidConfig, "base URL must be http or https",
			goerr.V("base_url", c.BaseURL))
	}
	if c.Concurrency < 1 {
		return goerr.Wrap(types.ErrInvalidConfig, "concurrency must be at least 1",
			goerr.V("concurrency", c.Concurrency))
	}
	if c.MaxDepth < 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "max depth must not be negative",
			goerr.V("max_depth", c.MaxDepth))
	}
	if c.Timeout < 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "timeout must not be negative",
			goerr.V("timeout", c.Timeout))
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		c.BaseURL = u.String()
	}
	if c.Anchor == "" {
		c.Anchor = path.Base(strings.TrimSuffix(u.Path, "/"))
		if c.Anchor == "/" || c.Anchor == "." {
			c.Anchor = ""
		}
	}
	if c.PreserveStructure && c.Anchor == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "anchor segment is required to preserve structure",
			goerr.V("base_url", c.BaseURL))
	}

	return nil
}

// CrawlResult records what a walk did. Safe for concurrent use.
type CrawlResult struct {
	mu          sync.Mutex
	Directories []string // Visited directory URLs in traversal order
	Downloaded  []string
	Skipped     []string
	Failed      []string
}

// AddDirectory records a visited directory URL
func (r *CrawlResult) AddDirectory(dirURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Directories = append(r.Directories, dirURL)
}

// AddDownload records the outcome of a download task
func (r *CrawlResult) AddDownload(fileURL string, status DownloadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch status {
	case DownloadCompleted:
		r.Downloaded = append(r.Downloaded, fileURL)
	case DownloadSkipped:
		r.Skipped = append(r.Skipped, fileURL)
	default:
		r.Failed = append(r.Failed, fileURL)
	}
}

// ExtractResult records what an extraction pass did
type ExtractResult struct {
	Extracted []string // Paths of written decompressed files
	Failed    []string // Paths of compressed files that could not be decoded
}
