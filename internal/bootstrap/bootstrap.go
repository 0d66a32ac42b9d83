package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/eventbus/infrastructure"
	"vibibay-client-go/internal/domain/eventbus/repository"
	"vibibay-client-go/internal/domain/query"
	sessionstore "vibibay-client-go/internal/domain/session/store"
	platformconfig "vibibay-client-go/internal/platform/config"
	platformerrors "vibibay-client-go/internal/platform/errors"
	platformlogging "vibibay-client-go/internal/platform/logging"
	platformobservability "vibibay-client-go/internal/platform/observability"
	platformstorage "vibibay-client-go/internal/platform/storage"
	httptransport "vibibay-client-go/internal/transport/http"
	httpwebapi "vibibay-client-go/internal/transport/http/webapi"
	"vibibay-client-go/internal/utils"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	bus                   *eventbus.Bus
	sessions              sessionstore.Store
	client                *api.Client
	queries               *query.Service
	history               repository.NotificationRepository
}

// App is the assembled client: everything a presentation adapter needs.
type App struct {
	Config   *platformconfig.Config
	Logger   *platformlogging.Logger
	Bus      *eventbus.Bus
	Sessions sessionstore.Store
	Client   *api.Client
	Queries  *query.Service
	History  repository.NotificationRepository

	observabilityShutdown platformobservability.ShutdownFunc
}

// Close releases the app's resources in reverse assembly order.
func (a *App) Close(ctx context.Context) {
	if a.Bus != nil {
		a.Bus.Shutdown()
	}
	if a.Sessions != nil {
		if err := a.Sessions.Close(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("session store close: %v", err)
		}
	}
	if a.observabilityShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.observabilityShutdown(shutdownCtx); err != nil && a.Logger != nil {
			a.Logger.Warn("observability shutdown: %v", err)
		}
	}
	if a.Logger != nil {
		a.Logger.Close()
	}
}

// Build runs the init graph and returns the assembled app.
func Build(ctx context.Context) (*App, error) {
	state := &appState{}
	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return nil, err
	}

	return &App{
		Config:                state.config,
		Logger:                state.logger,
		Bus:                   state.bus,
		Sessions:              state.sessions,
		Client:                state.client,
		Queries:               state.queries,
		History:               state.history,
		observabilityShutdown: state.observabilityShutdown,
	}, nil
}

// Run builds the app and serves the local web facade until a shutdown signal
// arrives.
func Run(ctx context.Context) error {
	app, err := Build(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	logger := app.Logger
	if !app.Config.Web.Enabled {
		return platformerrors.New(platformerrors.KindConfig, "bootstrap.Run",
			"web facade disabled in configuration")
	}

	logBootstrapGraph(InitGraph(), logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(app, group, groupCtx); err != nil {
		cancel()
		return err
	}

	return waitForShutdown(signalCtx, cancel, logger, group)
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("bootstrap", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("bootstrap", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:init-database",
			Title:     "Initialise local database",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDatabaseStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "eventbus:init",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init-provider", "storage:init-database"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "session:init-store",
			Title:     "Initialise session store",
			DependsOn: []string{"storage:init-database"},
			Kind:      platformerrors.KindStorage,
			Execute:   initSessionStoreStep,
		},
		{
			ID:        "api:init-client",
			Title:     "Initialise API client",
			DependsOn: []string{"session:init-store", "logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initClientStep,
		},
		{
			ID:        "query:init-service",
			Title:     "Initialise query service",
			DependsOn: []string{"api:init-client", "eventbus:init"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initQueryStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	config, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = config
	state.configPath = ".config.yaml"
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Format:   state.config.Log.Format,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider",
			"failed to initialise logging provider", err)
	}

	state.logger = logger
	logger.InfoTag("bootstrap", "logging ready [%s] %s", state.config.Log.Level, state.configPath)
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"storage:init-database",
			"config not loaded",
		)
	}
	return platformstorage.InitDatabase(state.config.Session.Store.SQLite.DSN)
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks",
			"failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	if state == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"eventbus:init",
			"logger not initialised",
		)
	}

	state.bus = eventbus.New(4)

	if err := eventbus.NewLogHandler(state.logger).Attach(state.bus); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "eventbus:init",
			"failed to attach log handler", err)
	}

	if db := platformstorage.GetDB(); db != nil {
		state.history = infrastructure.NewNotificationRepository(db)
		recorder := infrastructure.NewRecorder(state.history, state.logger)
		if err := recorder.Attach(state.bus); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap, "eventbus:init",
				"failed to attach notification recorder", err)
		}
	}
	return nil
}

func initSessionStoreStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"session:init-store",
			"missing config/logger",
		)
	}

	storeCfg, err := sessionStoreConfig(state.config, state.logger)
	if err != nil {
		return err
	}

	sessions, err := sessionstore.New(storeCfg, sessionstore.Dependencies{
		SQLiteDB: platformstorage.GetDB(),
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "session:init-store",
			"failed to create session store", err)
	}
	state.sessions = sessions
	return nil
}

func sessionStoreConfig(config *platformconfig.Config, logger *platformlogging.Logger) (sessionstore.Config, error) {
	driver := strings.ToLower(strings.TrimSpace(config.Session.Store.Type))
	storeCfg := sessionstore.Config{
		Driver: driver,
		TTL:    config.Session.Store.Expiry,
	}

	if storeCfg.Driver == "" || storeCfg.Driver == "database" {
		storeCfg.Driver = sessionstore.DriverSQLite
	}

	cleanupInterval := config.Session.Store.Cleanup
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}

	switch storeCfg.Driver {
	case sessionstore.DriverMemory:
		if config.Session.Store.Memory.Cleanup > 0 {
			cleanupInterval = config.Session.Store.Memory.Cleanup
		}
		storeCfg.Memory = &sessionstore.MemoryConfig{GCInterval: cleanupInterval}
	case sessionstore.DriverSQLite:
		storeCfg.SQLite = &sessionstore.SQLiteConfig{
			DSN: config.Session.Store.SQLite.DSN,
		}
	case sessionstore.DriverRedis:
		storeCfg.Redis = &sessionstore.RedisConfig{
			Addr:     config.Session.Store.Redis.Addr,
			Username: config.Session.Store.Redis.Username,
			Password: config.Session.Store.Redis.Password,
			DB:       config.Session.Store.Redis.DB,
			Prefix:   config.Session.Store.Redis.Prefix,
		}
		if storeCfg.Redis.Addr == "" {
			return sessionstore.Config{}, platformerrors.New(
				platformerrors.KindConfig,
				"session:init-store",
				"redis store addr is required",
			)
		}
	default:
		logger.WarnTag("session", "unsupported store type %s, falling back to memory", driver)
		storeCfg.Driver = sessionstore.DriverMemory
		storeCfg.Memory = &sessionstore.MemoryConfig{GCInterval: cleanupInterval}
	}

	return storeCfg, nil
}

func initClientStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.sessions == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"api:init-client",
			"missing config/session store",
		)
	}

	client, err := api.NewClient(api.Config{
		BaseURL: state.config.API.BaseURL,
		Profile: state.config.API.Profile,
	}, state.sessions, state.logger)
	if err != nil {
		return err
	}
	state.client = client
	return nil
}

func initQueryStep(_ context.Context, state *appState) error {
	if state == nil || state.client == nil || state.bus == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"query:init-service",
			"missing client/event bus",
		)
	}

	state.queries = query.NewService(state.client, state.bus, state.logger, query.Options{
		OpenURL:  utils.OpenBrowser,
		CopyText: utils.CopyToClipboard,
	})
	return nil
}

func startHTTPServer(app *App, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	logger := app.Logger

	webapiService := httpwebapi.NewService(app.Queries, app.History, logger)

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config:      app.Config,
		Logger:      logger,
		SessionGate: webapiService.SessionGate(),
	})
	if err != nil {
		return nil, err
	}
	webapiService.RegisterRoutes(httpRouter)

	router := httpRouter.Engine
	staticDir := app.Config.Web.StaticDir
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		// Client-side routed pages fall back to the SPA entry point.
		c.File(staticDir + "/index.html")
	})

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(app.Config.Web.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("http", "web facade listening on http://localhost:%d", app.Config.Web.Port)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("http", "shutdown failed: %v", err)
			} else {
				logger.InfoTag("http", "server stopped")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("http", "serve failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("bootstrap", "shutdown signal received (%v), cleaning up", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("bootstrap", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("bootstrap", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("bootstrap", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
