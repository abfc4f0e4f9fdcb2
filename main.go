package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"offerbot/config"
	"offerbot/internal/catalog"
	"offerbot/internal/dispatch"
	"offerbot/internal/selection"
	"offerbot/logger"
	"offerbot/services/cache"
	"offerbot/services/publisher"
	"offerbot/services/sender"
	"offerbot/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("dispatch_interval", cfg.DispatchInterval).
		Str("catalog", cfg.CatalogPath).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	snd := sender.NewTelegramSender(cfg.TelegramToken)

	// Listing mode: enumerate destinations and exit
	if cfg.ListChats {
		listChats(ctx, snd)
		return
	}

	chatID, err := resolveDestination(ctx, snd, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve destination chat")
	}
	log.Info().Str("chat_id", chatID).Msg("Destination resolved")

	// Initialize services
	services := initializeServices(&cfg)
	defer services.Cleanup()

	store := catalog.NewFileStore(cfg.CatalogPath)
	engine := selection.NewEngine(store, services.History)
	dispatcher := dispatch.NewDispatcher(store, engine, snd, services.Publisher, chatID)

	// Create and start worker
	w := worker.NewWorker(ctx, dispatcher, cfg.DispatchInterval)

	workerDone := make(chan struct{})
	go func() {
		log.Info().Msg("Starting offer dispatch worker")
		w.Start()
		close(workerDone)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case <-workerDone:
		log.Info().Msg("Worker exited")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	History   selection.History
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes the history store and outcome publisher
func initializeServices(cfg *config.Config) *Services {
	services := &Services{}

	switch cfg.HistoryBackend {
	case config.HistoryBackendMemcache:
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		services.History = selection.NewCacheHistory(cacheService, "offerbot_sent_history", cfg.HistoryLimit)
		logger.Info("Using memcache history at %s (limit: %d)", cfg.MemcacheAddr, cfg.HistoryLimit)
	default:
		services.History = selection.NewFileHistory(cfg.HistoryPath, cfg.HistoryLimit)
		logger.Info("Using file history at %s (limit: %d)", cfg.HistoryPath, cfg.HistoryLimit)
	}

	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Publishing outcomes to Redis at %s (stream: %s)", cfg.RedisAddr, cfg.RedisStream)
	} else {
		services.Publisher = publisher.NoopPublisher{}
	}

	return services
}

// resolveDestination returns the configured chat ID, resolving a display
// name through the sender when no explicit ID is set
func resolveDestination(ctx context.Context, snd sender.Sender, cfg *config.Config) (string, error) {
	if cfg.ChatID != "" {
		return cfg.ChatID, nil
	}
	return sender.ResolveChat(ctx, snd, cfg.ChatName)
}

// listChats prints every destination the bot can currently reach
func listChats(ctx context.Context, snd sender.Sender) {
	chats, err := snd.ListChats(ctx)
	if err != nil {
		logger.Default.Fatal().Err(err).Msg("Failed to list chats")
	}
	if len(chats) == 0 {
		logger.Info("No chats visible yet; message the bot or add it to a group first")
		return
	}
	for _, chat := range chats {
		logger.Default.Info().
			Str("chat_id", chat.ID).
			Str("name", chat.Name).
			Msg("Available chat")
	}
}
