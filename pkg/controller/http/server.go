package http

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
	root string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithRoot sets the local directory exposed as an index archive
func WithRoot(root string) Option {
	return func(c *config) {
		c.root = root
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates an HTTP server that exposes a local directory tree as
// auto-generated index pages, the same layout idxget crawls.
func NewServer(ctx context.Context, opts ...Option) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
		root: ".",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	stat, err := os.Stat(cfg.root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat root directory", goerr.V("root", cfg.root))
	}
	if !stat.IsDir() {
		return nil, goerr.New("root is not a directory", goerr.V("root", cfg.root))
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	fsys := os.DirFS(cfg.root)

	// Health check
	router.Method(http.MethodGet, "/health", &healthHandler{fsys: fsys})

	// Archive tree
	index := newIndexHandler(fsys)
	router.Get("/*", index.ServeHTTP)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
