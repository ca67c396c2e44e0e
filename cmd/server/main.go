package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/messaging/rabbitmq"
	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/conversation"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/hello"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/job"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/config"
	pg "github.com/ogurasousui/jobboard-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/logger"
	"github.com/ogurasousui/jobboard-clean-arch/internal/platform/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ResolvePath(""))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database pool: %w", err)
	}
	defer dbPool.Close()
	log.Info("connected to database", slog.String("host", cfg.Database.Host), slog.String("name", cfg.Database.Name))

	jobOpts := []job.Option{job.WithLegacyReplyFanout(cfg.Jobs.AllowLegacyReplyFanout)}
	if cfg.Messaging.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.Messaging.AMQPURL, cfg.Messaging.Exchange, log)
		if err != nil {
			return fmt.Errorf("initialize event publisher: %w", err)
		}
		defer publisher.Close()
		jobOpts = append(jobOpts, job.WithEventPublisher(publisher))
		log.Info("job events enabled", slog.String("exchange", cfg.Messaging.Exchange))
	}

	txManager := pg.NewTransactionManager(dbPool)

	jobSvc := job.NewService(postgres.NewJobRepository(dbPool), nil, txManager, jobOpts...)
	userSvc := user.NewService(postgres.NewUserRepository(dbPool), nil)
	conversationSvc := conversation.NewService(postgres.NewConversationRepository(dbPool), nil)

	router := handler.NewRouter(log,
		handler.NewGreeterHandler(hello.NewService()),
		handler.NewHealthHandler(dbPool),
		handler.NewUserHandler(userSvc),
		handler.NewJobHandler(jobSvc),
		handler.NewConversationHandler(conversationSvc),
	)

	srv := server.New(cfg.Server, router, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	log.Info("server stopped")
	return nil
}
