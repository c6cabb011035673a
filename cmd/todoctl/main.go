package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/todo-api/cmd/todoctl/ui"
	"github.com/redmonkez12/todo-api/internal/config"
	"github.com/redmonkez12/todo-api/internal/database"
	"github.com/redmonkez12/todo-api/internal/events"
	"github.com/redmonkez12/todo-api/internal/logging"
)

// app holds what every subcommand needs. Connections are opened on demand.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	db     *bun.DB
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{}
	err := execute(ctx, a, newRootCmd(a))
	stop()

	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

// execute runs the command tree and releases connections whatever the
// outcome; cobra skips post-run hooks when a command fails.
func execute(ctx context.Context, a *app, root *cobra.Command) error {
	defer a.close()
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "Administer the todo API database",
		Long:          "Run schema migrations and inspect or remove items and users directly in the store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.NewLogger(cfg.Server.IsDevelopment())
			return nil
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newItemsCmd(a),
		newUsersCmd(a),
	)
	return rootCmd
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *app) database() (*bun.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// publisher returns the RabbitMQ publisher when configured. The CLI keeps
// working without a broker.
func (a *app) publisher() events.Publisher {
	if a.cfg.Events.AMQPURL == "" {
		return events.NoopPublisher{}
	}
	p, err := events.NewRabbitPublisher(a.cfg.Events.AMQPURL, a.cfg.Events.Exchange)
	if err != nil {
		a.logger.Warn("event publisher unavailable, events will be dropped", "error", err.Error())
		return events.NoopPublisher{}
	}
	return p
}

func (a *app) redis(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address(),
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}
