package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/devconnector/devconnector-go/internal/config"
	"github.com/devconnector/devconnector-go/internal/crypto"
	"github.com/devconnector/devconnector-go/internal/logger"
	"github.com/devconnector/devconnector-go/internal/metrics"
	"github.com/devconnector/devconnector-go/internal/repository"
	"github.com/devconnector/devconnector-go/internal/server"
)

// Set via ldflags.
var version = "dev"

const connectTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "devconnector",
		Usage:   "DevConnector API server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file loaded before the environment is read",
				EnvVars: []string{"DEVCONNECTOR_ENV_FILE"},
				Value:   ".env",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create indexes or apply schema migrations, then exit",
				Action: migrate,
			},
		},
	}
}

// setup loads the dotenv file and the configuration and builds the logger.
func setup(c *cli.Context) (config.Config, zerolog.Logger, error) {
	envFile := c.String("env-file")
	envErr := godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		log.Warn().Str("file", envFile).Msg("no .env file found, using environment variables")
	}
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg config.Config) (*repository.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreMongo:
		return repository.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.StoreMySQL:
		return repository.OpenMySQL(ctx, cfg.MySQLDSN)
	default:
		return nil, config.ErrUnknownStore
	}
}

func closeStore(store *repository.Store, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("closing store")
	}
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating %s store: %w", cfg.StoreDriver, err)
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	tokens, err := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	if err != nil {
		return err
	}

	srv, err := server.New(ctx, cfg, server.Deps{
		Store:   store,
		Hasher:  crypto.NewHasher(crypto.DefaultHashParams()),
		Tokens:  tokens,
		Metrics: metrics.New(),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	store, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	if err := store.Migrate(c.Context); err != nil {
		return fmt.Errorf("migrating %s store: %w", cfg.StoreDriver, err)
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("migrations applied")
	return nil
}
