package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"braindump-service/internal/config"
	"braindump-service/internal/llm"
	"braindump-service/internal/logging"
	"braindump-service/internal/repository"
	"braindump-service/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env is what every subcommand runs against; tests swap the builders.
type env struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger

	openStore    func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error)
	newExtractor func(cfg *config.Config, logger *zap.Logger) (llm.Provider, error)
}

func defaultEnv() *env {
	return &env{
		openStore: func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
			if cfg.Database.Type == "sqlite" {
				if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
			return repository.Open(ctx, repository.Config{
				Type: cfg.Database.Type,
				Path: cfg.Database.Path,
				URL:  cfg.Database.URL,
			}, logger)
		},
		newExtractor: func(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
			return llm.NewMultiProviderClient(llm.MultiProviderConfig{
				Providers:   cfg.Providers,
				MaxFailures: cfg.MaxFailuresBeforeSwitch,
			}, logger)
		},
	}
}

func NewRoot() *cobra.Command {
	return newRoot(defaultEnv())
}

func newRoot(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "braindumpctl",
		Short:        "Brain dump pipeline tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(config.ResolvePath(e.configPath))
			if err != nil {
				return err
			}
			e.cfg = cfg

			if e.logger == nil {
				logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
				if err != nil {
					return err
				}
				e.logger = logger
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default $BRAINDUMP_CONFIG or configs/config.yml)")

	cmd.AddCommand(newProcessCmd(e))
	cmd.AddCommand(newMigrateCmd(e))
	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := e.openStore(cmd.Context(), e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("failed to migrate %s database: %w", e.cfg.Database.Type, err)
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", e.cfg.Database.Type)
			return nil
		},
	}
}

// newPipeline assembles the pipeline for one-shot runs; events are not published from the CLI.
func (e *env) newPipeline(ctx context.Context) (*service.Pipeline, func(), error) {
	extractor, err := e.newExtractor(e.cfg, e.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}

	store, err := e.openStore(ctx, e.cfg, e.logger)
	if err != nil {
		extractor.Close()
		return nil, nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	cleanup := func() {
		store.Close()
		extractor.Close()
	}

	pipeline := service.NewPipeline(extractor, store, nil, service.Config{
		ExtractionTimeout: e.cfg.Extraction.Timeout,
	}, e.logger)
	return pipeline, cleanup, nil
}
