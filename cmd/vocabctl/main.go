// Command vocabctl manages the HSK vocabulary stored in Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliskhannn/hsk-trainer-bot/internal/config"
	"github.com/aliskhannn/hsk-trainer-bot/internal/infra/postgres"
	"github.com/aliskhannn/hsk-trainer-bot/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "vocabctl",
	Short:         "Manage the HSK vocabulary database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and the database.
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	pool *pgxpool.Pool
}

// setup loads configuration and connects to the database.
func setup(ctx context.Context) (*env, func(), error) {
	cfg, err := config.Load(false)
	if err != nil {
		return nil, nil, err
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, err
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return nil, nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        cfg.DB.MaxConnections,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = lg.Sync()
	}
	return &env{cfg: cfg, log: lg, pool: pool}, cleanup, nil
}
