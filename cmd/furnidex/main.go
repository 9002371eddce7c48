package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/bootstrap"
	"github.com/kailas-cloud/furnidex/internal/config"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
	"github.com/kailas-cloud/furnidex/internal/metrics"
	activityrepo "github.com/kailas-cloud/furnidex/internal/repository/activity"
	chiTransport "github.com/kailas-cloud/furnidex/internal/transport/chi"
	"github.com/kailas-cloud/furnidex/internal/transport/imagefetch"
	activityuc "github.com/kailas-cloud/furnidex/internal/usecase/activity"
	scoring "github.com/kailas-cloud/furnidex/internal/usecase/compromise"
	healthuc "github.com/kailas-cloud/furnidex/internal/usecase/health"
	preferenceuc "github.com/kailas-cloud/furnidex/internal/usecase/preference"
	recommenduc "github.com/kailas-cloud/furnidex/internal/usecase/recommend"
	"github.com/kailas-cloud/furnidex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, "furnidex", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting furnidex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRecommendMetrics()

	emb := bootstrap.NewEmbedders(cfg.Embedding, store, logpkg.Component(logger, "embedding"))
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Bool("cache", cfg.Embedding.Cache.Enabled),
	)

	products, err := bootstrap.NewProductRepo(store, cfg.Index)
	if err != nil {
		logger.Fatal("Invalid index settings", zap.Error(err))
	}

	// Vocabulary anchors are embedded once; a provider outage here aborts startup.
	prefCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	prefs, err := preferenceuc.New(prefCtx, emb.Text, preferenceuc.Config{
		Floor:         cfg.Preferences.Floor,
		VariantMargin: cfg.Preferences.VariantMargin,
	}, logpkg.Component(logger, "preferences"))
	cancel()
	if err != nil {
		logger.Fatal("Failed to embed attribute vocabulary", zap.Error(err))
	}

	recommender := recommenduc.New(recommenduc.Deps{
		Index:       products,
		Embedder:    emb.Text,
		Images:      emb.Images,
		Preferences: prefs,
		Scorer: scoring.New(scoring.Config{
			SimilarityWeight: cfg.Scoring.SimilarityWeight,
			UnderWeight:      cfg.Scoring.UnderWeight,
			OverWeight:       cfg.Scoring.OverWeight,
			AttributePoint:   cfg.Scoring.AttributePoint,
			PremiumBonus:     cfg.Scoring.PremiumBonus,
		}),
		Colors: color.NewExtractor(cfg.Color.Extractor()),
		Decode: imagefetch.Decode,
	}, recommenduc.Config{
		StrictFloor: cfg.Retrieval.StrictFloor,
		LooseFloor:  cfg.Retrieval.LooseFloor,
		GraphFloor:  cfg.Retrieval.GraphFloor,
		ImageFloor:  cfg.Retrieval.ImageFloor,
		PoolFactor:  cfg.Retrieval.PoolFactor,
	}, logpkg.Component(logger, "recommend"))

	// Activity log is optional; a nil ActivityLog disables its routes.
	var activity chiTransport.ActivityLog
	if cfg.Activity.Enabled {
		repo := activityrepo.New(store, time.Duration(cfg.Activity.TTLHours)*time.Hour)
		activity = activityuc.New(repo, products, cfg.Activity.Recent)
	}

	healthSvc := healthuc.New(store, products, emb.Health)

	server := chiTransport.NewServer(recommender, activity, healthSvc, logger).
		WithMaxUploadBytes(int64(cfg.HTTP.MaxUploadMB) << 20)
	handler := server.Handler(chiTransport.RouterConfig{
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		RateLimit:   cfg.RateLimit.Requests,
		RateWindow:  time.Duration(cfg.RateLimit.WindowSec) * time.Second,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
