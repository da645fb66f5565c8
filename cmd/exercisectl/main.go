// Package main provides exercisectl, the maintenance CLI that imports and repairs
// exercise records against the third-party catalog.
package main

import (
	"alcyxob/fitness-catalog/internal/catalog"
	"alcyxob/fitness-catalog/internal/config"
	"alcyxob/fitness-catalog/internal/logger"
	"alcyxob/fitness-catalog/internal/repository"
	"alcyxob/fitness-catalog/internal/repository/mongo"
	"alcyxob/fitness-catalog/internal/service"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	gifMode    string
	logMode    string
	output     string
}

// runtime holds the wired dependencies of one command invocation.
type runtime struct {
	cfg        config.Config
	log        *logger.Logger
	repo       repository.ExerciseRepository
	reconciler *service.Reconciler
	close      func()
}

// loadConfig reads configuration and applies flag overrides.
func (g *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.gifMode != "" {
		cfg.Gif.Mode = g.gifMode
	}
	if g.logMode != "" {
		cfg.Log.Mode = g.logMode
	}
	return cfg, nil
}

// setup validates the configuration for reqs before touching the store or the catalog.
func setup(ctx context.Context, cfg config.Config, reqs ...config.Requirement) (*runtime, error) {
	if err := cfg.Validate(reqs...); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	gifs, err := cfg.GifBuilder()
	if err != nil {
		return nil, err
	}

	client, err := catalog.NewClient(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		APIKey:            cfg.Catalog.APIKey,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	repo := mongo.NewMongoExerciseRepository(dbClient.Database(cfg.Database.Name), cfg.Database.Collection)

	return &runtime{
		cfg:        cfg,
		log:        log,
		repo:       repo,
		reconciler: service.NewReconciler(repo, client, gifs, log),
		close: func() {
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Warn("Failed to disconnect MongoDB", "error", err)
			}
			log.Sync()
		},
	}, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "exercisectl",
		Short: "Import and repair exercise records from the exercise catalog",
		Long: `exercisectl keeps the exercise collection aligned with the third-party catalog.

Every command is idempotent: re-running it after an interruption picks up
whatever is still missing. Configuration comes from config.yaml in --config
and from environment variables such as DATABASE_URI and CATALOG_API_KEY.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.gifMode, "gif-mode", "", "Override gif.mode: proxy or direct")
	rootCmd.PersistentFlags().StringVar(&flags.logMode, "log-mode", "", "Override log.mode: dev or prod")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(newImportCmd(flags))
	rootCmd.AddCommand(newBackfillCmd(flags))
	rootCmd.AddCommand(newRepairGifsCmd(flags))
	rootCmd.AddCommand(newForceProxyCmd(flags))
	rootCmd.AddCommand(newLinkIDsCmd(flags))
	rootCmd.AddCommand(newReconcileCmd(flags))
	rootCmd.AddCommand(newListMissingCmd(flags))

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
