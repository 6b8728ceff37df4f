package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"advisor-chat-be/internal/config"
	"advisor-chat-be/internal/controller"
	"advisor-chat-be/internal/handler"
	"advisor-chat-be/internal/metrics"
	"advisor-chat-be/internal/pkg/logger"
	"advisor-chat-be/internal/repository/cache"
	"advisor-chat-be/internal/repository/contract"
	"advisor-chat-be/internal/repository/implementation"
	"advisor-chat-be/internal/repository/memory"
	"advisor-chat-be/internal/repository/unitofwork"
	"advisor-chat-be/internal/service"
	"advisor-chat-be/internal/websocket"
	"advisor-chat-be/internal/workspace"
	"advisor-chat-be/pkg/events"
	"advisor-chat-be/pkg/extract"
	"advisor-chat-be/pkg/llm/factory"
	pktNats "advisor-chat-be/pkg/nats"
	"advisor-chat-be/pkg/playback"
	speechGemini "advisor-chat-be/pkg/speech/gemini"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SourceController controller.ISourceController
	ChatController   controller.IChatController
	SpeechController controller.ISpeechController
	AdminController  controller.IAdminController
	EventHandler     *handler.EventHandler

	// Shared state and background work (exposed for main.go to run)
	Workspace       *workspace.Store
	Persistence     service.IPersistenceService
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub
	Metrics         *metrics.Metrics
	Logger          *logger.ZapLogger
	JWTSecret       string

	closers []func()
}

// Close releases broker and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectRedis(url string) *redis.Client {
	if url == "" {
		log.Println("[INFO] REDIS_URL not set, events stay on this instance")
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func jwtSecret(configured string) string {
	if configured != "" {
		return configured
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("[FATAL] Failed to generate JWT secret: %v", err)
	}
	log.Println("[WARN] JWT_SECRET not set, using a random secret; admin tokens will not survive a restart")
	return hex.EncodeToString(buf)
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })
	c.Metrics = metrics.NewMetrics()

	// 2. Infrastructure
	rdb := connectRedis(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var kv contract.KeyValueRepository
	switch cfg.Storage.TranscriptBackend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("TRANSCRIPT_BACKEND=redis needs a reachable REDIS_URL")
		}
		kv = cache.NewRedisKeyValueRepository(rdb)
	case "", "database":
		kv = implementation.NewKeyValueRepository(db)
	default:
		return nil, fmt.Errorf("unknown transcript backend %q", cfg.Storage.TranscriptBackend)
	}
	log.Printf("[INFO] Transcript backend: %s", cfg.Storage.TranscriptBackend)

	// 3. Workspace mirror: snapshots go through the bus so mutations never wait on storage.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	c.Persistence = service.NewPersistenceService(uowFactory, kv, c.Metrics, sysLogger)
	publisherService := service.NewPublisherService(cfg.App.SyncTopic, pubSub, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.SyncTopic, c.Persistence, c.Metrics, sysLogger)
	c.Workspace = workspace.NewStore(publisherService)

	// 4. Event channel
	wsLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)
	c.closers = append(c.closers, func() { _ = wsLogger.Sync() })
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 5. Providers
	llmBaseURL := cfg.Ai.LLMBaseURL
	apiKey := cfg.Keys.GoogleGemini
	switch cfg.Ai.LLMProvider {
	case "ollama":
		if llmBaseURL == "" {
			llmBaseURL = cfg.Ai.OllamaBaseURL
		}
	case "huggingface":
		apiKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	speechProvider := speechGemini.NewGeminiSpeechProvider("", cfg.Keys.GoogleGemini, cfg.Ai.TTSModel, cfg.Ai.TTSVoice)
	audioCache := memory.NewAudioCacheRepository(cfg.Ai.AudioCacheTTL)

	// 6. Services
	assistantService := service.NewAssistantService(llmProvider, cfg.Ai.Temperature, cfg.Ai.MaxTokens, sysLogger)
	speechService := service.NewSpeechService(speechProvider, audioCache, c.Metrics, sysLogger)
	playbackService := service.NewPlaybackService(
		playback.NewController(speechService, websocket.NewAudioOutput(c.WebSocketHub)),
		c.WebSocketHub,
		c.Metrics,
		sysLogger,
	)

	var linkTitle service.LinkTitleFunc
	if cfg.App.LinkTitleLookup {
		linkTitle = extract.LinkTitle
	}

	chatService := service.NewChatService(c.Workspace, assistantService, playbackService, c.WebSocketHub, publisher, c.Metrics, sysLogger)
	sourceService := service.NewSourceService(c.Workspace, c.WebSocketHub, publisher, linkTitle, c.Metrics, sysLogger)

	c.JWTSecret = jwtSecret(cfg.Admin.JWTSecret)
	authService, err := service.NewAuthService(cfg.Admin.PasswordHash, cfg.Admin.Password, c.JWTSecret, cfg.Admin.TokenTTL, sysLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin auth: %w", err)
	}
	adminService := service.NewAdminService(sysLogger)

	// 7. Controllers
	c.SourceController = controller.NewSourceController(sourceService)
	c.ChatController = controller.NewChatController(chatService)
	c.SpeechController = controller.NewSpeechController(chatService, playbackService)
	c.AdminController = controller.NewAdminController(authService, adminService)
	c.EventHandler = handler.NewEventHandler(c.WebSocketHub, wsLogger)

	return c, nil
}
