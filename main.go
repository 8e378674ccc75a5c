package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/hcp-interaction-logger/agent/agents/assistant"
	"github.com/tanpawarit/hcp-interaction-logger/agent/agents/orchestrator"
	"github.com/tanpawarit/hcp-interaction-logger/agent/extract"
	llmx "github.com/tanpawarit/hcp-interaction-logger/agent/llm"
	toolx "github.com/tanpawarit/hcp-interaction-logger/agent/tool"
	"github.com/tanpawarit/hcp-interaction-logger/api"
	"github.com/tanpawarit/hcp-interaction-logger/interaction"
	configx "github.com/tanpawarit/hcp-interaction-logger/pkg/config"
	"github.com/tanpawarit/hcp-interaction-logger/pkg/database"
	_ "github.com/tanpawarit/hcp-interaction-logger/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/hcp-interaction-logger/pkg/openrouter"
)

type AppConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

func main() {
	zerolog.DefaultContextLogger = &log.Logger

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	dbCfg := configx.MustNew[database.Config]("DB")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, *dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	store, err := interaction.NewBunStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create interaction store")
	}
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}

	models, err := assistant.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create model registry")
	}

	extractionCfg := llmCfg.For(llmx.RoleExtraction)
	client, err := openrouterx.NewClient(extractionCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create extraction client")
	}
	extractor, err := extract.New(client, extractionCfg.Model, extract.WithTemperature(extractionCfg.Temperature))
	if err != nil {
		log.Fatal().Err(err).Msg("create extractor")
	}

	tools, err := toolx.NewGateway(store)
	if err != nil {
		log.Fatal().Err(err).Msg("create tool gateway")
	}

	workflows, err := orchestrator.New(store, models, tools, extractor)
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	handler, err := api.NewHandler(store, workflows, extractor)
	if err != nil {
		log.Fatal().Err(err).Msg("create api handler")
	}

	srv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           api.NewRouter(handler, log.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
}
