package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sushihentaime/haerin/internal/blogservice"
	"github.com/sushihentaime/haerin/internal/common"
	"github.com/sushihentaime/haerin/internal/mailservice"
	"github.com/sushihentaime/haerin/internal/mediaservice"
	"github.com/sushihentaime/haerin/internal/metrics"
	"github.com/sushihentaime/haerin/internal/userservice"
)

type application struct {
	config        *Config
	logger        *slog.Logger
	userService   *userservice.UserService
	blogService   *blogservice.BlogService
	mailService   *mailservice.MailService
	orphanCleaner *mediaservice.OrphanCleaner
	media         *mediaservice.DiskStore
	broker        *common.MessageBroker
	metrics       *metrics.Manager
	registry      *prometheus.Registry
}

func main() {
	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, closeLogger := newLogger(cfg)
	defer closeLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped", slog.String("error", err.Error()))
		closeLogger()
		os.Exit(1)
	}
}

func run(cfg *Config, logger *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	dbCfg := common.DBConfig{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		MaxOpenConns: 25,
		MaxIdleConns: 25,
		MaxIdleTime:  15 * time.Minute,
	}

	// Apply the migrations before opening the pool
	m, err := common.MigrateUp(cfg.MigrationsSource, dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.Close()

	db, err := common.NewDB(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer common.CloseDB(db)

	// Create the URI and connect to the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		return fmt.Errorf("failed to connect to the message broker: %w", err)
	}
	defer broker.Close()

	// Setup the exchanges, queues, and binding keys
	if err := common.SetupUserExchange(broker); err != nil {
		return fmt.Errorf("failed to setup the user exchange: %w", err)
	}

	if err := common.SetupMediaExchange(broker); err != nil {
		return fmt.Errorf("failed to setup the media exchange: %w", err)
	}

	media, err := mediaservice.NewDiskStore(cfg.MediaRoot, cfg.MediaBaseURL)
	if err != nil {
		return err
	}

	registry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("haerin", "server", registry)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	tokens := userservice.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	mailCfg := mailservice.Config{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUser,
		Password: cfg.MailPassword,
		Sender:   cfg.MailSender,
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		userService:   userservice.NewUserService(db, broker, cache, tokens, logger),
		blogService:   blogservice.NewBlogService(db, media, broker, cache, metricsManager, logger),
		mailService:   mailservice.NewMailService(broker, mailCfg, cfg.MediaBaseURL, logger),
		orphanCleaner: mediaservice.NewOrphanCleaner(broker, media, logger),
		media:         media,
		broker:        broker,
		metrics:       metricsManager,
		registry:      registry,
	}

	// Start the consumers, they stop when the server shuts down
	app.mailService.SendWelcomeEmail()
	app.orphanCleaner.Run()

	return app.serve()
}
