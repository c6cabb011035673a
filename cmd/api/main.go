package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/todo-api/docs"
	"github.com/redmonkez12/todo-api/internal/auth"
	"github.com/redmonkez12/todo-api/internal/config"
	"github.com/redmonkez12/todo-api/internal/database"
	"github.com/redmonkez12/todo-api/internal/events"
	httpServer "github.com/redmonkez12/todo-api/internal/http"
	"github.com/redmonkez12/todo-api/internal/item"
	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/todo"
	"github.com/redmonkez12/todo-api/internal/user"
)

// @title           Todo API
// @version         1.0
// @description     Multi-user todo lists. Every item belongs to the account that created it.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token from /auth/login, sent as "Bearer <token>".

const startupTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("todo-api: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting todo-api", "env", cfg.Server.Env, "port", cfg.Server.Port, "token_type", cfg.Auth.TokenType)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	rdb, err := connectRedis(startCtx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	defer publisher.Close()

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return err
	}

	// Redis holds refresh tokens and access revocations alike
	tokenStore := auth.NewRedisRepository(rdb)

	authService := auth.NewService(
		user.NewRepository(db),
		tokenStore,
		tokenStore,
		tokens,
		logger,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	todoService := todo.NewService(item.NewRepository(db), publisher, logger, cfg.Todo)

	router := httpServer.NewRouter(
		cfg,
		auth.NewHandler(authService),
		auth.NewMiddleware(tokens, tokenStore),
		todo.NewHandler(todoService),
		logger,
	)

	server := httpServer.NewServer(":"+cfg.Server.Port, router, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, logger)
	return server.Run(ctx, cfg.Server.ShutdownTimeout)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", cfg.Address(), err)
	}
	return client, nil
}

// newPublisher connects to RabbitMQ when AMQP_URL is set. Without it item
// events are dropped.
func newPublisher(cfg config.EventsConfig, logger *logging.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, item events disabled")
		return events.NoopPublisher{}, nil
	}

	publisher, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	logger.Info("publishing item events", "exchange", cfg.Exchange)
	return publisher, nil
}
