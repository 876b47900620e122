package bootstrap

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/config"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/constant"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/controller"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/pkg/logger"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/pkg/mailer"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/memory"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/repository/unitofwork"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/service"
	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/websocket"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/guard"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/mode"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/pipeline"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant/viz"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/cache"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/embedding"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/llm/factory"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/market"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/rag"

	pktNats "github.com/AndikaHugaW/OXEN-AI-sub000/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	DocumentController  controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisAvailable := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisAvailable = false
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 4. Decision Pipeline
	pipelineLogger := log.New(os.Stdout, "", log.LstdFlags)

	marketClient := market.NewClient(cfg.Market.BaseURL, cfg.Market.ApiKey)

	var answerCache cache.ResponseCache = cache.NoopResponseCache{}
	if redisAvailable {
		answerCache = cache.NewRedisResponseCache(rdb, 10*time.Minute)
	}

	var usagePublisher pipeline.EventPublisher
	if natsPub != nil {
		usagePublisher = natsPub
	}

	orchestrator := pipeline.NewOrchestrator(
		mode.NewResolver(pipelineLogger),
		guard.NewChain(pipelineLogger),
		viz.NewResolver(marketClient, pipelineLogger),
		llmProvider,
		answerCache,
		nil, // context is computed by the assistant service before each Answer call
		usagePublisher,
		pipelineLogger,
	)

	retriever := rag.NewRetriever(embeddingProvider, pipelineLogger)

	// 5. Services
	publisherService := service.NewPublisherService(constant.EmbedDocumentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.EmbedDocumentTopic,
		uowFactory,
		embeddingProvider,
	)

	assistantService := service.NewAssistantService(
		uowFactory,
		orchestrator,
		retriever,
		sessionRepo,
		wsHub,
		emailService,
	)
	documentService := service.NewDocumentService(uowFactory, publisherService)

	// 6. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, wsHub, sysLogger),
		DocumentController:  controller.NewDocumentController(documentService),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
