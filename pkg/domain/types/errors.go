package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrFetch indicates a directory listing could not be retrieved
	ErrFetch = goerr.New("failed to fetch directory listing")

	// ErrDownload indicates a file transfer failed (transport, HTTP status or stream)
	ErrDownload = goerr.New("failed to download file")

	// ErrPath indicates a local path could not be derived from a file URL
	ErrPath = goerr.New("invalid local path")

	// ErrInvalidConfig indicates the crawl configuration is unusable
	ErrInvalidConfig = goerr.New("invalid configuration")
)
