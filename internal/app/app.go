package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/config"
	"github.com/MrSnakeDoc/storefront/internal/dashboard"
	"github.com/MrSnakeDoc/storefront/internal/gateway"
	"github.com/MrSnakeDoc/storefront/internal/httpserver"
	"github.com/MrSnakeDoc/storefront/internal/httpserver/deps"
	"github.com/MrSnakeDoc/storefront/internal/index"
	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/redis"
	"github.com/MrSnakeDoc/storefront/internal/scheduler"
	"github.com/MrSnakeDoc/storefront/internal/session"
	"github.com/MrSnakeDoc/storefront/internal/sources/businessprofile"
	redisstore "github.com/MrSnakeDoc/storefront/internal/store/redis"
	"github.com/MrSnakeDoc/storefront/internal/version"
)

// credentialWriteTimeout bounds the best-effort redis writes done outside a request.
const credentialWriteTimeout = 5 * time.Second

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *redisstore.Store
	session     *session.Session
	auth        *auth.Manager
	reloader    *scheduler.BusinessReloader
	sweeper     *scheduler.ConsentSweeper
	onGranted   auth.GrantedFunc
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional; when configured it must be reachable at startup.
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
	)
	if cfg.RedisEnabled() {
		loggerClient.Info("Connecting to Redis", logger.String("addr", cfg.RedisAddr))
		client, err := redis.New(redis.ConnectOptions{
			URL:            cfg.RedisURL,
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		store = redisstore.NewStore(client)
	} else {
		loggerClient.Info("redis not configured, credentials will not survive a restart")
	}

	endpoints := businessprofile.DefaultEndpoints()
	if cfg.EndpointsFile != "" {
		loaded, err := businessprofile.NewLoader(cfg.EndpointsFile).Load()
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
		endpoints = loaded
		loggerClient.Info("provider endpoints loaded", logger.String("file", cfg.EndpointsFile))
	}

	sess := session.New(cfg.ClientID)
	gw := gateway.New(sess, loggerClient.With(logger.Component("gateway")), gateway.WithTimeout(cfg.ProviderTimeout))
	provider := businessprofile.NewClient(gw, endpoints,
		loggerClient.With(logger.Component("businessprofile")),
		businessprofile.WithWalkConcurrency(cfg.WalkConcurrency),
	)

	memIndex := index.NewMemoryIndex()
	dash := dashboard.NewService(provider, memIndex, loggerClient)

	sdkOpts := []auth.SDKOption{auth.WithDiscoveryURL(cfg.DiscoveryURL)}
	if cfg.ClientSecret != "" {
		sdkOpts = append(sdkOpts, auth.WithClientSecret(cfg.ClientSecret))
	}
	authManager := auth.NewManager(auth.NewGoogleSDK(cfg.PublicOrigin, sdkOpts...), sess, loggerClient, auth.Options{
		ConsentTTL: cfg.ConsentTTL,
		Poll: auth.PollOptions{
			Interval: cfg.SDKPollInterval,
			MaxWait:  cfg.SDKPollMaxWait,
			Timeout:  cfg.SDKPollTimeout,
		},
	})

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewBusinessReloader(
		dash,
		func() bool { return sess.Credential().Authenticated() },
		loggerClient.With(logger.Component("scheduler")),
		cfg.BusinessReloadInterval,
		reloadTrigger,
	)
	sweeper := scheduler.NewConsentSweeper(authManager, loggerClient.With(logger.Component("scheduler")), cfg.SweepInterval)

	// Every grant is persisted (best effort) and followed by a business reload.
	onGranted := func(string) {
		if store != nil {
			ctx, cancel := context.WithTimeout(context.Background(), credentialWriteTimeout)
			defer cancel()
			if err := store.SaveCredential(ctx, sess.Credential()); err != nil {
				loggerClient.Warn("failed to persist credential", logger.Error(err))
			}
		}
		scheduler.Trigger(reloadTrigger)
	}

	onClientChanged := func(prev string) {
		dash.Reset()
		if store == nil || prev == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), credentialWriteTimeout)
		defer cancel()
		if err := store.ClearCredential(ctx, prev); err != nil {
			loggerClient.Warn("failed to clear previous credential",
				logger.String("client_id", prev),
				logger.Error(err))
		}
	}

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		PublicOrigin:       cfg.PublicOrigin,
		Session:            sess,
		Auth:               authManager,
		OnGranted:          onGranted,
		OnClientChanged:    onClientChanged,
		Dashboard:          dash,
		MemoryIndex:        memIndex,
		Store:              store,
		ReloadTrigger:      reloadTrigger,
		MutationRateLimit:  cfg.MutationRateLimit,
		MutationRateWindow: cfg.MutationRateWindow,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		session:     sess,
		auth:        authManager,
		reloader:    reloader,
		sweeper:     sweeper,
		onGranted:   onGranted,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting storefront v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("storefront %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A credential persisted by a previous run skips the consent round.
	if a.store != nil {
		restorer := scheduler.NewCredentialRestorer(a.store, a.session, a.logger.With(logger.Component("scheduler")))
		if _, err := restorer.Restore(ctx); err != nil {
			a.logger.Warn("failed to restore credential, consent required", logger.Error(err))
		}
	}

	// Poll the identity provider until the handle can be initialized.
	a.auth.Start(ctx, a.cfg.ClientID, a.onGranted)
	a.logger.Info("identity provider poller started",
		logger.String("client_id", a.cfg.ClientID),
		logger.Duration("timeout", a.cfg.SDKPollTimeout))

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start business reloader: %w", err)
	}
	a.logger.Info("business reloader started",
		logger.Duration("interval", a.cfg.BusinessReloadInterval))

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consent sweeper: %w", err)
	}
	a.logger.Info("consent sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.reloader.Stop()
	a.sweeper.Stop()
	a.auth.Close()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ storefront stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
