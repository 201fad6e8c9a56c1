package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/clients/callproxy"
	"jersey-stock-api/internal/clients/openai"
	"jersey-stock-api/internal/clients/voiceflow"
	"jersey-stock-api/internal/config"
	"jersey-stock-api/internal/draft"
	"jersey-stock-api/internal/handler"
	"jersey-stock-api/internal/middleware"
	"jersey-stock-api/internal/notify"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/internal/router"
	"jersey-stock-api/internal/service"
	"jersey-stock-api/internal/voice"
	"jersey-stock-api/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.App.Environment, cfg.App.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting", "service", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Environment)

	// Record store based on config
	store, err := openStore(cfg.Store, log)
	if err != nil {
		log.Fatal("failed to initialize record store", "type", cfg.Store.Type, "error", err)
	}
	defer store.Close()
	log.Info("record store initialized", "type", cfg.Store.Type)

	// Activity log: SQL by default, MongoDB when configured
	var activityRepo repository.ActivityRepository = store
	if cfg.ActivityLog.Type == "mongodb" || cfg.ActivityLog.Type == "mongo" {
		mongoRepo, err := repository.NewMongoActivityRepository(
			cfg.ActivityLog.MongoURI,
			cfg.ActivityLog.MongoDatabase,
			cfg.ActivityLog.MongoCollection,
		)
		if err != nil {
			log.Warn("mongodb activity log unavailable, using record store", "error", err)
		} else {
			defer mongoRepo.Close()
			activityRepo = mongoRepo
			log.Info("mongodb activity log initialized")
		}
	}

	// Snapshot and settings cache
	var appCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			log.Warn("redis connection failed, using memory cache", "error", err)
		} else {
			appCache = redisCache
		}
	}
	if appCache == nil {
		appCache = cache.NewMemoryCache()
	}
	defer appCache.Close()
	log.Info("cache initialized", "backend", appCache.Name())

	// Outbound clients
	dispatcher := notify.NewDispatcher(log, notify.Config{
		WebhookURL: cfg.Notify.WebhookURL,
		Timeout:    cfg.Notify.Timeout,
	})

	var completer draft.Completer
	if cfg.AI.APIKey != "" {
		aiClient, err := openai.New(log, openai.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			log.Warn("completion client disabled", "error", err)
		} else {
			completer = aiClient
		}
	}

	var provider handler.CallProvider
	if cfg.CallProvider.Configured() {
		vf, err := voiceflow.New(log, voiceflow.Config{
			URL:     cfg.CallProvider.URL,
			APIKey:  cfg.CallProvider.APIKey,
			Timeout: cfg.CallProvider.Timeout,
		})
		if err != nil {
			log.Warn("call provider disabled", "error", err)
		} else {
			provider = vf
		}
	}

	if cfg.CallbackUnreachable() {
		log.Warn("PUBLIC_BASE_URL not set, call provider callbacks will target the loopback proxy address")
	}

	proxy := callproxy.New(log, callproxy.Config{
		URL:     cfg.ProxyURL(),
		Timeout: cfg.CallProxy.Timeout,
	})

	interpreter := voice.NewInterpreter(log, voice.Config{
		URL:     cfg.VoiceNLP.URL,
		APIKey:  cfg.VoiceNLP.APIKey,
		Timeout: cfg.VoiceNLP.Timeout,
	})

	// Services
	activityService := service.NewActivityService(activityRepo, log)
	settingsService := service.NewSettingsService(store, appCache, cfg.Cache.SettingsTTL, dispatcher, log)
	inventoryService := service.NewInventoryService(service.InventoryDeps{
		Repo:     store,
		Settings: settingsService,
		Activity: activityService,
		Notifier: dispatcher,
		Snapshot: service.NewSnapshot(appCache, cfg.Cache.TTL, log),
		Drafts:   draft.NewRewriter(log, completer, cfg.AI.Model, cfg.AI.Temperature),
	}, log)
	callService := service.NewCallService(store, store, proxy, log)
	voiceService := service.NewVoiceService(interpreter, inventoryService, callService, log)
	preferencesService := service.NewPreferencesService(store)
	dashboardService, err := service.NewDashboardService(store, store, activityService, settingsService,
		cfg.Dashboard.UnitPrice, cfg.Dashboard.RecentCalls, log)
	if err != nil {
		log.Fatal("failed to initialize dashboard", "error", err)
	}

	monitor := service.NewStaleCallMonitor(store, service.StaleCallConfig{
		StaleAfter:    cfg.Calls.StaleAfter,
		CheckInterval: cfg.Calls.CheckInterval,
		Reap:          cfg.Calls.ReapStale,
	}, log)
	monitor.Start()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		Secret:              cfg.Auth.JWTSecret,
		Audience:            cfg.Auth.Audience,
		AllowedEmailDomains: cfg.Auth.AllowedEmailDomains,
	}, log)
	if !cfg.Auth.Enabled() {
		log.Warn("AUTH_JWT_SECRET not set, v1 API is unauthenticated")
	}

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		rateLimit, err = middleware.NewRateLimiter(cfg.RateLimit.Rate)
		if err != nil {
			log.Fatal("invalid rate limit", "rate", cfg.RateLimit.Rate, "error", err)
		}
	}

	checks := map[string]handler.Pinger{"store": store}
	if p, ok := appCache.(handler.Pinger); ok {
		checks["cache"] = p
	}

	r := router.New(router.Config{
		Log:                log,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		Handler:            handler.New(cfg.App.Name, cfg.App.Version, checks),
		InventoryHandler:   handler.NewInventoryHandler(inventoryService, log),
		SettingsHandler:    handler.NewSettingsHandler(settingsService, log),
		ActivityHandler:    handler.NewActivityHandler(activityService, log),
		CallHandler:        handler.NewCallHandler(callService, log),
		VoiceHandler:       handler.NewVoiceHandler(voiceService, log),
		PreferencesHandler: handler.NewPreferencesHandler(preferencesService, log),
		DashboardHandler:   handler.NewDashboardHandler(dashboardService, log),
		AdminHandler:       handler.NewAdminHandler(store, appCache, cfg.Store.Type),
		StartCallHandler:   handler.NewStartCallHandler(provider, log).WithPublicBaseURL(cfg.Server.PublicBaseURL),
		CallbackHandler:    handler.NewCallbackHandler(store, log),
		AuthMiddleware:     authMiddleware,
		RateLimit:          rateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	monitor.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	log.Info("server stopped")
}

func openStore(cfg config.StoreConfig, log *logger.Logger) (*repository.SQLStore, error) {
	switch cfg.Type {
	case "postgres", "postgresql":
		return repository.NewPostgresStore(cfg.PostgresDSN(), log)
	case "mysql":
		return repository.NewMySQLStore(cfg.MySQLDSN(), log)
	default:
		return repository.NewSQLiteStore(cfg.Path, log)
	}
}
