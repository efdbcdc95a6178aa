// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"memewatch/internal/adapter/scraper"
	"memewatch/internal/adapter/storage"
	"memewatch/internal/bot"
	"memewatch/internal/config"
	"memewatch/internal/server"
	"memewatch/internal/server/handlers"
	"memewatch/internal/service/aggregate"
	"memewatch/internal/service/insight"
	"memewatch/internal/service/linker"
	"memewatch/internal/service/pipeline"
	"memewatch/internal/service/scoring"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	// Initialize storage adapter
	analysisStore := storage.NewAnalysisStore(db)

	// Initialize platform scrapers
	var scrapers []pipeline.PlatformScraper
	scrapers = append(scrapers, scraper.NewRedditScraper(cfg.Reddit.Subreddits))

	if cfg.Twitter.BearerToken != "" {
		scrapers = append(scrapers, scraper.NewTwitterScraper(cfg.Twitter.BearerToken, cfg.Twitter.Query))
	} else if cfg.Twitter.ConsumerKey != "" {
		scrapers = append(scrapers, scraper.NewTwitterScraperOAuth1(
			cfg.Twitter.ConsumerKey,
			cfg.Twitter.ConsumerSecret,
			cfg.Twitter.AccessToken,
			cfg.Twitter.AccessSecret,
			cfg.Twitter.Query,
		))
	} else {
		log.Println("No twitter credentials configured, twitter collection disabled")
	}

	var telegramScraper *scraper.TelegramScraper
	if cfg.Telegram.BotToken != "" {
		telegramScraper = scraper.NewTelegramScraper(cfg.Telegram.Channels)
		scrapers = append(scrapers, telegramScraper)
	}

	// Initialize services
	sentimentAnalyzer := scoring.NewSentimentAnalyzer()
	tickerLinker := linker.New()

	pipelineSvc := pipeline.NewService(
		analysisStore,
		sentimentAnalyzer,
		scrapers,
		natsConn,
		pipeline.Config{
			FetchLimit:    cfg.Pipeline.FetchLimit,
			FetchInterval: cfg.Pipeline.FetchInterval,
			RefreshWindow: cfg.Pipeline.RefreshWindow,
			EventsTopic:   cfg.Pipeline.EventsTopic,
		},
	)

	engine := aggregate.NewEngine(analysisStore, tickerLinker)

	var insightGen handlers.InsightGenerator
	if cfg.OpenAI.APIKey != "" {
		insightGen = insight.NewGenerator(cfg.OpenAI.APIKey)
	}

	// Start the collection loop
	go pipelineSvc.Run(ctx)

	// Start the Telegram command bot
	if cfg.Telegram.BotToken != "" {
		signalBot, err := bot.NewBot(
			cfg.Telegram.BotToken,
			engine,
			telegramScraper,
			insightGen,
			tickerLinker.Symbols(),
			cfg.Pipeline.SignalWindow,
		)
		if err != nil {
			log.Fatalf("Failed to start telegram bot: %v", err)
		}
		go signalBot.Start(ctx)
	}

	// Initialize HTTP server
	feedTopic := fmt.Sprintf("%s.created", cfg.Pipeline.EventsTopic)
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		pipelineSvc,
		engine,
		insightGen,
		feedTopic,
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Stop the collection loop and bot
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Println("Shutting down services...")

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
