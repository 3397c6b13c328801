package app

import (
	"context"
	"strings"

	"github.com/bobmcallan/divvy/internal/cache"
	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/config"
	"github.com/bobmcallan/divvy/internal/dashboard"
	"github.com/bobmcallan/divvy/internal/handlers"
	"github.com/bobmcallan/divvy/internal/mcp"
	"github.com/bobmcallan/divvy/internal/source"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger
	Build  config.BuildInfo

	Cache      *cache.DatasetCache
	Fetcher    *source.Fetcher
	Controller *dashboard.Controller

	// HTTP handlers
	PageHandler    *handlers.PageHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	APIHandler     *handlers.APIHandler
	MCPHandler     *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Build:  config.Build(),
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("running in dev mode")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	a.initDashboard()
	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initDashboard wires the default dataset source and the controller.
func (a *App) initDashboard() {
	opts := dashboard.Options{
		PageSize:        a.Config.Dashboard.PageSize,
		SummaryPageSize: a.Config.Dashboard.SummaryPageSize,
	}

	if url := strings.TrimSpace(a.Config.Dashboard.SampleURL); url != "" {
		a.Cache = cache.New(a.Config.Cache.TTL.Duration, a.Config.Cache.MaxEntries)
		a.Fetcher = source.NewFetcher(url, a.Config.Dashboard.FetchTimeout.Duration, a.Config.MaxUploadBytes(), a.Cache)
		opts.Fetcher = a.Fetcher
		a.Logger.Info().
			Str("url", url).
			Str("cache_ttl", a.Config.Cache.TTL.String()).
			Msg("default dataset source configured")
	}

	a.Controller = dashboard.New(opts, a.Logger)
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Controller, a.Build.Version, a.Config.IsDevMode())
	a.HealthHandler = handlers.NewHealthHandler(a.Controller)
	a.VersionHandler = handlers.NewVersionHandler(a.Build)
	a.APIHandler = handlers.NewAPIHandler(a.Logger, a.Controller, a.Config.MaxUploadBytes())

	if a.Config.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(a.Controller, a.Build, a.Config.MaxUploadBytes(), a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// LoadOnStart loads the default dataset into the dashboard unless
// dashboard.load_default_on_start is off.
func (a *App) LoadOnStart(ctx context.Context) error {
	if !a.Config.Dashboard.LoadDefaultOnStart {
		return nil
	}
	_, err := a.Controller.LoadDefault(ctx)
	return err
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
