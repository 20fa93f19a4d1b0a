package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instacord/internal/config"
	"instacord/internal/constants"
	"instacord/internal/database"
	"instacord/internal/dedup"
	"instacord/internal/privacy"
	"instacord/internal/retry"
	"instacord/internal/service"
	"instacord/internal/tracing"
	"instacord/pkg/discord"
	"instacord/pkg/instagram"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	envFile = flag.String("env", ".env", "Path to optional .env file")
	version = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Instacord %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting Instacord")

	// Missing .env is fine; the environment may be set by the host.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to load env file %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Initialize the delivery archive with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})
	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize archive database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize archive database after retries: %w", err)
	}
	defer db.Close()

	discordClient, err := discord.NewClient(cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("failed to create Discord client: %w", err)
	}
	if err := discordClient.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer discordClient.Close()
	logger.WithField("bot", discordClient.BotUser()).Info("Connected to Discord")

	igClient := instagram.NewClient(instagram.ClientConfig{
		BaseURL:  cfg.Instagram.APIBaseURL,
		Username: cfg.Instagram.Username,
		Password: cfg.Instagram.Password,
	})
	if err := backoff.Retry(ctx, func() error {
		return igClient.Login(ctx)
	}); err != nil {
		return fmt.Errorf("failed to log into Instagram after retries: %w", err)
	}
	logger.WithField("username", privacy.MaskUsername(cfg.Instagram.Username)).Info("Logged into Instagram")

	filter := service.NewThreadFilter(cfg.TargetUsernames)
	if filter.Empty() {
		logger.Info("No target usernames configured, forwarding all threads")
	} else {
		logger.WithField("targets", len(cfg.TargetUsernames)).Info("Thread filter active")
	}

	if cfg.Discord.GuildID == "" {
		logger.Warn("DISCORD_GUILD_ID is not set, no channels will be created or resolved")
	}
	router := service.NewChannelRouter(discordClient, cfg.Discord.GuildID, cfg.Discord.CategoryID, logger)
	ledger := dedup.NewLedger()

	processor := service.NewInboxProcessor(igClient, discordClient, router, filter, ledger, db, logger, service.ProcessorOptions{})

	scheduler := service.NewScheduler(processor, igClient, db, logger, service.SchedulerConfig{
		RetentionDays: cfg.RetentionDays,
		Retry:         cfg.Retry,
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := NewServer(cfg.ServerPort, logger, igClient, db, router, ledger)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Server shutdown error: %v", err)
	}

	logger.Info("Instacord stopped")
	return nil
}
