package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"kakao-store-bot/embedder"
	googleembedder "kakao-store-bot/embedder/google"
	openaiembedder "kakao-store-bot/embedder/openai"
	"kakao-store-bot/generator"
	anthropicgenerator "kakao-store-bot/generator/anthropic"
	openaigenerator "kakao-store-bot/generator/openai"
	"kakao-store-bot/geocoder"
	kakaogeocoder "kakao-store-bot/geocoder/kakao"
	"kakao-store-bot/index"
	memoryindex "kakao-store-bot/index/memory"
	pineconeindex "kakao-store-bot/index/pinecone"
	postgresindex "kakao-store-bot/index/postgres"
	"kakao-store-bot/internal/handler"
	"kakao-store-bot/internal/logging"
	"kakao-store-bot/internal/service/dialog"
	"kakao-store-bot/internal/service/responder"
	"kakao-store-bot/internal/service/search"
	"kakao-store-bot/internal/service/session"
	"kakao-store-bot/internal/service/survey"
)

var (
	cfg struct {
		// Server config
		Port int    `help:"HTTP listen port" env:"PORT" default:"8080"`
		Env  string `help:"Runtime environment (development|production)" env:"APP_ENV" default:"development"`

		// Embedder config
		Embedder      string `help:"Embedder provider (openai|google)" env:"EMBEDDER_PROVIDER" default:"openai"`
		EmbedderKey   string `help:"API key for the embedder" env:"EMBEDDER_API_KEY" default:""`
		EmbedderModel string `help:"Model identifier for the embedder" env:"EMBEDDER_MODEL" default:"text-embedding-3-small"`

		// Generator config
		Generator      string `help:"Generator provider (openai|anthropic)" env:"GENERATOR_PROVIDER" default:"openai"`
		GeneratorKey   string `help:"API key for the generator" env:"GENERATOR_API_KEY" default:""`
		GeneratorModel string `help:"Model identifier for the generator" env:"GENERATOR_MODEL" default:"gpt-4o-mini"`

		// Index config
		Index          string `help:"Vector index provider (pinecone|postgres|memory)" env:"INDEX_PROVIDER" default:"memory"`
		IndexLocation  string `help:"Index host or postgres DSN" env:"INDEX_LOCATION" default:""`
		IndexKey       string `help:"API key for the index" env:"INDEX_API_KEY" default:""`
		IndexNamespace string `help:"Index namespace" env:"INDEX_NAMESPACE" default:""`
		IndexTable     string `help:"Postgres table for vectors" env:"INDEX_TABLE" default:"store_vectors"`
		VectorSize     int    `help:"Embedding dimension" env:"VECTOR_SIZE" default:"1536"`

		// Search config
		ScanWindow int     `help:"Candidate window for location scans" env:"SCAN_WINDOW" default:"100"`
		RadiusKm   float64 `help:"Location search radius in km" env:"RADIUS_KM" default:"5"`
		TopK       int     `help:"Max results per search" env:"TOP_K" default:"5"`

		// Kakao config
		KakaoRestKey  string `help:"Kakao REST API key for local search" env:"KAKAO_REST_API_KEY" default:""`
		DetailBlockID string `help:"Open-builder block id for the detail flow" env:"DETAIL_BLOCK_ID" default:""`

		// Session config
		SessionTTL   time.Duration `help:"Idle session lifetime" env:"SESSION_TTL" default:"30m"`
		SessionPurge time.Duration `help:"Expired session sweep interval" env:"SESSION_PURGE" default:"10m"`
	}
)

func main() {
	// Parse inputs
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Create providers
	emb := newEmbedder()
	gen := newGenerator()
	idx := newIndex()

	geo := kakaogeocoder.NewGeocoder(
		geocoder.WithApiKey(cfg.KakaoRestKey),
	)

	// Create services
	searchService := search.New(emb, idx, logger, cfg.VectorSize, cfg.ScanWindow)
	sessionService := session.New(cfg.SessionTTL, cfg.SessionPurge)
	responderService := responder.New(gen, logger)
	surveyService := survey.New(emb, idx, logger)

	dialogService := dialog.New(
		searchService,
		sessionService,
		responderService,
		geo,
		logger,
		cfg.RadiusKm,
		cfg.TopK,
		cfg.DetailBlockID,
	)

	// Create server
	router := handler.NewRouter(
		handler.NewKakaoHandler(dialogService, logger),
		handler.NewSurveyHandler(surveyService, logger),
		logger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("server listening",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("index", cfg.Index))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func newEmbedder() embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(cfg.EmbedderKey),
		embedder.WithModel(cfg.EmbedderModel),
	}

	switch cfg.Embedder {
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return openaiembedder.NewEmbedder(opts...)
	}
}

func newGenerator() generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(cfg.GeneratorKey),
		generator.WithModel(cfg.GeneratorModel),
	}

	switch cfg.Generator {
	case "anthropic":
		return anthropicgenerator.NewGenerator(opts...)
	default:
		return openaigenerator.NewGenerator(opts...)
	}
}

func newIndex() index.Index {
	opts := []index.Option{
		index.WithLocation(cfg.IndexLocation),
		index.WithApiKey(cfg.IndexKey),
		index.WithNamespace(cfg.IndexNamespace),
		index.WithTable(cfg.IndexTable),
		index.WithVectorSize(cfg.VectorSize),
	}

	switch cfg.Index {
	case "pinecone":
		return pineconeindex.NewIndex(opts...)
	case "postgres":
		return postgresindex.NewIndex(opts...)
	default:
		return memoryindex.NewIndex(opts...)
	}
}
