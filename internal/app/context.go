package app

import (
	"context"

	"github.com/hlsget/hlsget/internal/config"
	"github.com/hlsget/hlsget/internal/history"
	"github.com/hlsget/hlsget/internal/job"
	"github.com/hlsget/hlsget/internal/logger"
	"github.com/hlsget/hlsget/internal/registry"
)

// PageResolver mirrors job.PageResolver so controllers can call the
// scraper without importing the scrape package.
type PageResolver interface {
	Resolve(ctx context.Context, pageURL string) (urls []string, title string, err error)
}

// Context holds the shared environment for the running service. It acts as
// the single source of truth the API controllers and CLI commands wire
// against.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	Jobs     *job.Store
	Runner   *job.Runner
	Registry *registry.Registry
	Pages    PageResolver
	History  *history.Store
}
