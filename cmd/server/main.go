// Package main provides the course assistant server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/bot"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/buildinfo"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/cache"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/logger"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/metrics"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/diag"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/directory"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/farewell"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/form"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/greeting"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/modules/lookup"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/nlu"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/objstore"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/ratelimit"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/resolve"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/sentry"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/session"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/wacloud"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken: cfg.BetterstackToken,
	})
	log.WithField("version", buildinfo.Version).Info("Starting course assistant server")

	// Initialize error tracking (no-op when unconfigured)
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnv,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	} else if sentry.IsEnabled() {
		log.Info("Error tracking initialized")
	}

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create object store client when the catalog snapshot source is configured
	var store catalog.ObjectStore
	if cfg.HasObjectStore() {
		client, err := objstore.New(context.Background(), objstore.Config{
			AccountID:   cfg.CatalogR2AccountID,
			AccessKeyID: cfg.CatalogR2AccessKeyID,
			SecretKey:   cfg.CatalogR2SecretAccessKey,
			BucketName:  cfg.CatalogR2Bucket,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create object store client, falling back to local sources")
		} else {
			store = client
			log.WithField("bucket", cfg.CatalogR2Bucket).Info("Catalog object store configured")
		}
	}

	// Load the course catalog from the source chain
	loader := catalog.NewLoader(store, cfg.CatalogR2Key, cfg.CatalogPath, log, m)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), config.CatalogDownload)
	cat, err := loader.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.WithError(err).Error("Failed to load course catalog")
		os.Exit(1)
	}

	// Build the course resolver
	resolverOpts := resolve.Options{
		MaxEditDistance:   cfg.ResolverMaxEditDistance,
		MinOverlapWordLen: cfg.ResolverMinWordLen,
		MaxInitialsLen:    resolve.DefaultOptions().MaxInitialsLen,
	}
	synonyms := resolve.DefaultSynonyms()
	resolver := resolve.New(cat, synonyms, resolverOpts, m)
	log.WithField("records", cat.Len()).Info("Course resolver built")

	// Session store and reply caches
	sessions := session.NewStore(cfg.SessionTTL, cfg.SessionMax, m)
	dirCache := cache.New("directory", cfg.CacheTTL, cfg.CacheMax, m)
	courseCache := cache.New("course", cfg.CacheTTL, cfg.CacheMax, m)

	// Per-user inbound rate limiter
	userLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     cfg.Bot.UserRateLimitBurst,
		RefillRate:    cfg.Bot.UserRateLimitRefillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
	})
	userLimiter.OnDrop(func() { m.RecordRateLimiterDrop("user") })

	// NLU fallback classifier (optional)
	var classifier nlu.Classifier
	if cfg.HasNLU() {
		retry := nlu.DefaultRetryConfig()
		retry.MaxAttempts = cfg.NLUMaxRetries
		c, err := nlu.NewOpenAIClassifier(nlu.OpenAIConfig{
			APIKey:              cfg.NLUAPIKey,
			BaseURL:             cfg.NLUBaseURL,
			Model:               cfg.NLUModel,
			FallbackModel:       cfg.NLUFallbackModel,
			ConfidenceThreshold: cfg.NLUConfidenceThreshold,
			Retry:               retry,
			Logger:              log,
			Metrics:             m,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create NLU classifier, NLU fallback disabled")
		} else {
			classifier = c
			log.WithField("model", cfg.NLUModel).Info("NLU fallback classifier enabled")
		}
	} else {
		log.Info("NLU API key not configured, NLU fallback disabled")
	}

	// Register message handlers. Order matters: each message goes to the
	// first handler that claims it, so the specific keyword handlers come
	// before the catch-all course lookup.
	lookupHandler := lookup.NewHandler(resolver, courseCache, log, cfg.Bot.MaxCoursesPerCompare)
	handlers := bot.NewRegistry()
	handlers.Register(farewell.NewHandler(log))
	handlers.Register(diag.NewHandler(log))
	handlers.Register(greeting.NewHandler(log))
	handlers.Register(form.NewHandler(log))
	handlers.Register(directory.NewHandler(sessions, dirCache, log))
	handlers.Register(lookupHandler)

	processor := bot.NewProcessor(bot.ProcessorConfig{
		Registry:    handlers,
		Classifier:  classifier,
		UserLimiter: userLimiter,
		Logger:      log,
		Metrics:     m,
		BotConfig:   &cfg.Bot,
	})

	// Outbound Graph API sender with its own rate limiter
	sender := wacloud.NewSender(wacloud.SenderConfig{
		BaseURL:       cfg.GraphAPIBaseURL,
		APIVersion:    cfg.GraphAPIVersion,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		AccessToken:   cfg.WhatsAppAccessToken,
		Limiter:       ratelimit.New(cfg.Bot.SendRateLimitRPS, cfg.Bot.SendRateLimitRPS),
		MaxRetries:    cfg.Bot.SendMaxRetries,
		RetryInitial:  cfg.Bot.SendRetryInitial,
		Logger:        log,
		Metrics:       m,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		VerifyToken: cfg.WhatsAppVerifyToken,
		AppSecret:   cfg.WhatsAppAppSecret,
		Processor:   processor,
		Sender:      sender,
		Metrics:     m,
		Logger:      log,
		BotConfig:   &cfg.Bot,
	})
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(sentryMiddleware())

	setupRoutes(router, webhookHandler, registry, cfg, routeState{
		catalogLen: cat.Len,
		sessions:   sessions,
		dirCache:   dirCache,
		course:     courseCache,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	startJob(ctx, &wg, log, "session_sweep", func(ctx context.Context) {
		sweepSessions(ctx, sessions, log)
	})
	startJob(ctx, &wg, log, "cache_sweep", func(ctx context.Context) {
		sweepCaches(ctx, log, dirCache, courseCache)
	})
	startJob(ctx, &wg, log, "catalog_refresh", func(ctx context.Context) {
		refreshCatalog(ctx, loader, lookupHandler, synonyms, resolverOpts, m, log, dirCache, courseCache)
	})
	startJob(ctx, &wg, log, "metrics_update", func(ctx context.Context) {
		updateGauges(ctx, sessions, m)
	})

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new requests first, then drain in-flight webhook work
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for in-flight messages")
	}

	// Stop background jobs
	cancel()
	jobsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(jobsDone)
	}()
	select {
	case <-jobsDone:
		log.Info("All background jobs stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	userLimiter.Stop()
	sentry.Flush(2 * time.Second)
	log.Info("Server stopped")
}

// startJob runs fn in a goroutine with panic recovery, tied to ctx.
func startJob(ctx context.Context, wg *sync.WaitGroup, log *logger.Logger, name string, fn func(context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).WithField("job", name).Error("Panic in background job")
			}
		}()
		fn(ctx)
	}()
}
