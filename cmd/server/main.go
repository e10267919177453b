package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festify-gateway/internal/adapter/api"
	"festify-gateway/internal/adapter/client"
	"festify-gateway/internal/adapter/store"
	"festify-gateway/internal/config"
	"festify-gateway/internal/domain/repository"
	"festify-gateway/internal/logging"
	"festify-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "festify",
		Short:         "Festify greeting gateway",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	var prompt string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one greeting and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generateOnce(cmd.Context(), prompt)
		},
	}
	generateCmd.Flags().StringVarP(&prompt, "prompt", "p", "", "greeting description")
	_ = generateCmd.MarkFlagRequired("prompt")

	root.AddCommand(serveCmd, generateCmd)
	return root
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func generateOnce(ctx context.Context, prompt string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	var genaiClient *genai.Client
	if cfg.GenaiConfigured() {
		if genaiClient, err = client.NewGenaiClient(ctx, cfg.GeminiAPIKey, cfg.GoogleProject, cfg.GoogleLocation); err != nil {
			return fmt.Errorf("failed to init genai client: %w", err)
		}
	}
	agent, err := buildAgent(cfg, genaiClient)
	if err != nil {
		return err
	}

	generator := usecase.NewGreetingGenerator(usecase.NewBoundedAgent(agent, cfg.AgentTimeout), log)
	result, err := generator.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func serve(parent context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var genaiClient *genai.Client
	if cfg.GenaiConfigured() {
		genaiClient, err = client.NewGenaiClient(ctx, cfg.GeminiAPIKey, cfg.GoogleProject, cfg.GoogleLocation)
		if err != nil {
			return fmt.Errorf("failed to init genai client: %w", err)
		}
	}

	agent, err := buildAgent(cfg, genaiClient)
	if err != nil {
		return err
	}
	generator := usecase.NewGreetingGenerator(usecase.NewBoundedAgent(agent, cfg.AgentTimeout), log)

	// Usage store: Redis when configured, process memory otherwise.
	var usageStore repository.UsageStore = store.NewMemoryUsageStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		usageStore = store.NewRedisUsageStore(rdb, usecase.RetentionFor(cfg.UsageIdleTTL, cfg.Cooldown()))
		log.Info("usage store: redis", zap.String("addr", cfg.RedisAddr))
	}
	limiter := usecase.NewRateLimiter(usageStore, usecase.LimiterConfig{
		DailyLimit: cfg.DailyLimit,
		Cooldown:   cfg.Cooldown(),
		IdleTTL:    cfg.UsageIdleTTL,
		Location:   loc,
	}, log)

	greetings, err := buildGreetingRepository(ctx, cfg, genaiClient, log)
	if err != nil {
		return err
	}

	var pinner repository.Pinner
	if cfg.PinataConfigured() {
		pc, err := client.NewPinataClient(client.PinataConfig{
			APIKey:            cfg.PinataAPIKey,
			APISecret:         cfg.PinataAPISecret,
			GatewayURL:        cfg.PinataGatewayURL,
			RequestsPerSecond: cfg.PinataRPS,
		})
		if err != nil {
			return err
		}
		pinner = pc
	} else {
		log.Warn("pinata credentials missing; NFT pinning disabled")
	}

	// No registry client exists until the DAT contracts reach mainnet.
	datMinter := usecase.NewDATMinter(pinner, nil, cfg.DATMintEnabled, log)

	app := fiber.New(fiber.Config{
		AppName: "Festify Gateway",
	})
	api.SetupRouter(app, api.Handlers{
		Greeting: api.NewGreetingHandler(generator, limiter, log),
		History:  api.NewHistoryHandler(usecase.NewGreetingHistory(greetings), log),
		Mint:     api.NewMintHandler(usecase.NewMetadataService(pinner, cfg.ExternalURL, log), datMinter, log),
	}, api.BuildInfo{Version: cfg.AppVersion, Env: cfg.Env})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.StartSweeper(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		log.Info("Festify gateway running", zap.String("port", cfg.Port), zap.String("agent", cfg.AgentProvider))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Festify gateway stopped")
	return nil
}

func buildAgent(cfg *config.Config, genaiClient *genai.Client) (repository.Agent, error) {
	switch cfg.AgentProvider {
	case "gemini":
		if genaiClient == nil {
			return nil, fmt.Errorf("AGENT_PROVIDER=gemini needs GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT")
		}
		return client.NewGeminiAgent(genaiClient, cfg.GeminiModel), nil
	default:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("AGENT_PROVIDER=openai needs OPENAI_API_KEY")
		}
		return client.NewOpenAIAgent(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	}
}

// buildGreetingRepository uses Qdrant when both Qdrant and an embedding model
// are available; otherwise history lives in memory.
func buildGreetingRepository(ctx context.Context, cfg *config.Config, genaiClient *genai.Client, log *zap.Logger) (repository.GreetingRepository, error) {
	if cfg.QdrantHost == "" || genaiClient == nil {
		log.Info("greeting history: memory")
		return store.NewMemoryGreetingStore(), nil
	}

	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.QdrantHost,
		Port: cfg.QdrantPort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	embedder := client.NewEmbedderFromClient(genaiClient, cfg.EmbeddingModel)
	qs := store.NewQdrantGreetingStore(qClient, embedder, cfg.QdrantCollection, log)
	if err := qs.InitCollection(ctx, cfg.QdrantVectorSize); err != nil {
		return nil, fmt.Errorf("failed to init qdrant collection: %w", err)
	}
	log.Info("greeting history: qdrant", zap.String("collection", cfg.QdrantCollection))
	return qs, nil
}
