package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nakamo-io/supportflow/ai/agents"
	"github.com/nakamo-io/supportflow/ai/core/embedding"
	"github.com/nakamo-io/supportflow/ai/core/llm"
	"github.com/nakamo-io/supportflow/ai/metrics"
	"github.com/nakamo-io/supportflow/ai/orchestrator"
	"github.com/nakamo-io/supportflow/ai/planner"
	"github.com/nakamo-io/supportflow/ai/routing"
	"github.com/nakamo-io/supportflow/internal/profile"
	"github.com/nakamo-io/supportflow/internal/version"
	"github.com/nakamo-io/supportflow/server"
	"github.com/nakamo-io/supportflow/store"
	"github.com/nakamo-io/supportflow/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "supportflow",
	Short: "A request router for customer support: dispatches questions to specialized responders and formats email replies.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Best effort; the file is optional.
		_ = godotenv.Load()
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		p := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		p.FromEnv()
		if err := p.Validate(); err != nil {
			return err
		}

		setupLogger(p)
		return run(p)
	},
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func run(p *profile.Profile) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	logger.Info("starting supportflow",
		"version", p.Version, "mode", p.Mode,
		"llm_provider", p.LLMProvider, "llm_model", p.LLMModel,
		"routing_strategy", p.RoutingStrategy, "driver", p.Driver)

	model, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "create llm service")
	}

	embedder, err := embedding.NewProvider(&embedding.Config{
		Provider: p.EmbeddingProvider,
		Model:    p.EmbeddingModel,
		APIKey:   p.EmbeddingAPIKey,
		BaseURL:  p.EmbeddingBaseURL,
	})
	if err != nil {
		return errors.Wrap(err, "create embedding provider")
	}

	knowledge, err := db.New(p.Driver, p.DSN, embedder, logger)
	if err != nil {
		return errors.Wrap(err, "open knowledge store")
	}
	defer knowledge.Close()
	if err := store.SeedSampleData(ctx, knowledge, logger); err != nil {
		return errors.Wrap(err, "seed knowledge store")
	}

	m := metrics.New()
	registered := []agents.Adapter{
		agents.NewKnowledgeQA(model, knowledge, logger),
		agents.NewDomainExpert(model),
		agents.NewDirectHandler(model),
	}
	if p.IsWeatherEnabled() {
		registered = append(registered,
			agents.NewWeather(agents.NewWeatherClient(p.WeatherBaseURL, p.WeatherAPIKey)))
	} else {
		logger.Warn("weather responder disabled: SUPPORTFLOW_WEATHER_API_KEY not set")
	}

	executor := orchestrator.NewExecutor(
		agents.NewRegistry(registered...),
		agents.NewDirectHandler(model),
		agents.NewEmailFormatter(model, logger),
		planner.New(model, logger),
		orchestrator.NewSynthesizer(model, logger),
		m,
		orchestrator.Config{
			ResponderTimeout: time.Duration(p.ResponderTimeoutSeconds) * time.Second,
			MaxParallel:      p.MaxParallelResponders,
		},
		logger,
	)

	var policy routing.Policy
	if p.RoutingStrategy == "ladder" {
		policy = routing.NewLadderPolicy()
	} else {
		policy = routing.NewClassifierPolicy(model, routing.PolicyConfig{
			ComplexityMinWords: p.ComplexityMinWords,
		})
	}

	orch := orchestrator.New(policy, executor, m, logger)
	srv := server.New(p, orch, m, logger)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("supportflow stopped")
	return nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("supportflow")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
