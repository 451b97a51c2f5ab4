package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cablecom/leads-api/internal/config"
	"github.com/cablecom/leads-api/internal/infra/database"
	"github.com/cablecom/leads-api/internal/infra/http/handlers"
	"github.com/cablecom/leads-api/internal/infra/integration/facebook"
	"github.com/cablecom/leads-api/internal/infra/mail"
	"github.com/cablecom/leads-api/internal/infra/queue"
	"github.com/cablecom/leads-api/internal/infra/worker"
	"github.com/cablecom/leads-api/internal/logger"
	"github.com/cablecom/leads-api/internal/usecase"
)

const defaultSender = "contact@cable-comservices.com"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := database.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repos.Close()

	creds := usecase.NewCredentialService(repos.Admins, defaultAdmin(cfg), log)
	if _, err := creds.EnsureDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}

	if cfg.SessionSecret == "" {
		log.Warn("ADMIN_SESSION_SECRET not set, sessions will not survive a restart")
	}
	gate, err := usecase.NewSessionGate(creds, cfg.SessionSecret, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("session gate: %w", err)
	}

	from := cfg.SMTP.User
	if from == "" {
		from = defaultSender
	}
	sender := mail.NewEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
	notifier := mail.NewLeadNotifier(sender.Dialer(), from, cfg.NotificationEmail, cfg.NotificationTimeout, log)
	async := mail.NewAsyncDispatcher(notifier)

	g, gctx := errgroup.WithContext(ctx)

	var dispatcher usecase.LeadNotificationDispatcher = async
	var producer *queue.RabbitMQProducer
	var rabbit handlers.ConnectionState
	if cfg.AMQPURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer rmq.Close()

		consumeCh, err := rmq.Conn.Channel()
		if err != nil {
			return fmt.Errorf("open consumer channel: %w", err)
		}

		producer = queue.NewProducer(rmq.Ch, async, log)
		dispatcher = producer
		rabbit = rmq.Conn

		notifyWorker := queue.NewWorker(consumeCh, notifier, log)
		g.Go(func() error {
			return notifyWorker.Start(gctx, queue.QueueName)
		})
		log.Info("lead notifications routed through rabbitmq", zap.String("queue", queue.QueueName))
	}

	leads := usecase.NewLeadService(repos.Leads, dispatcher, log)

	fb := facebook.NewClient(cfg.Facebook.AccessToken, cfg.Facebook.PageID, "")
	if cfg.Facebook.AccessToken != "" {
		refresher := worker.NewFeedRefresher(fb, facebook.CacheTTL-10*time.Minute, log)
		g.Go(func() error {
			refresher.Start(gctx)
			return nil
		})
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Leads:          handlers.NewLeadHandler(leads, log),
		Auth:           handlers.NewAuthHandler(gate, log),
		Facebook:       handlers.NewFacebookHandler(fb, log),
		Health:         handlers.NewHealthHandler(repos.DB, repos.Backend, rabbit, cfg.SMTP.User != "", version),
		Sessions:       gate,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	if producer != nil {
		producer.Wait()
	}
	async.Wait()
	return err
}

func defaultAdmin(cfg *config.Config) usecase.DefaultAdmin {
	return usecase.DefaultAdmin{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}
}
