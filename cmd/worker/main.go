package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/docproc-labs/docproc/internal/config"
	"github.com/docproc-labs/docproc/internal/inference"
	"github.com/docproc-labs/docproc/internal/pipeline"
	"github.com/docproc-labs/docproc/internal/store"
	minioclient "github.com/docproc-labs/docproc/internal/store/minio"
	"github.com/docproc-labs/docproc/internal/store/postgres"
	vk "github.com/docproc-labs/docproc/internal/store/valkey"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// MinIO
	minioClient, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio")

	// OCR service
	ocr, err := inference.NewTextractClient(cfg.Textract)
	if err != nil {
		logger.Error("failed to init textract client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Generative service (auto-selects: OpenRouter > Bedrock)
	gen, err := inference.NewGenerator(cfg)
	if err != nil {
		logger.Error("failed to init generator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("generator enabled", slog.String("model", gen.ModelID()))

	executors := []pipeline.Executor{
		pipeline.NewExtractionExecutor(s, minioClient, ocr, cfg.Pipeline.ExtractionTimeout, logger),
		pipeline.NewClassificationExecutor(s, gen, cfg.Pipeline.GenerationTimeout, logger),
		pipeline.NewSummarizationExecutor(s, gen, cfg.Pipeline.GenerationTimeout, logger),
	}

	coordinator := pipeline.NewCoordinator(s, executors, logger)

	consumer := pipeline.NewConsumer(vkClient, "worker-1", logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to ensure consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handle := func(ctx context.Context, msg pipeline.ProcessMessage) error {
		err := coordinator.Process(ctx, msg.DocumentID)
		// Duplicate deliveries and vanished records should be acked, not
		// redelivered forever; the record itself already tells the story.
		if errors.Is(err, pipeline.ErrStaleStage) || errors.Is(err, pipeline.ErrRecordNotFound) {
			logger.Warn("dropping trigger", slog.String("document_id", msg.DocumentID),
				slog.String("reason", err.Error()))
			return nil
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting pipeline worker, consuming from stream", slog.String("stream", pipeline.StreamName))
		return consumer.Consume(gctx, handle)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("consumer error", slog.String("error", err.Error()))
	}
	logger.Info("worker stopped")
}
