package bootstrap

import (
	"log"

	"minima-be/internal/config"
	"minima-be/internal/controller"
	"minima-be/internal/pkg/logger"
	"minima-be/internal/repository/contract"
	"minima-be/internal/repository/implementation"
	"minima-be/internal/repository/memory"
	"minima-be/internal/service"
	"minima-be/pkg/database"
	embeddingfactory "minima-be/pkg/embedding/factory"
	"minima-be/pkg/imagegen"
	llmfactory "minima-be/pkg/llm/factory"
	"minima-be/pkg/pipeline/relay"
	"minima-be/pkg/pipeline/retrieval"
	"minima-be/pkg/vectorstore"
	"minima-be/pkg/websearch"

	pktNats "minima-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	ChatController        controller.IChatController
	HistoryController     controller.IHistoryController
	VectorstoreController controller.IVectorstoreController
	ImageController       controller.IImageController
	ValidationController  controller.IValidationController

	// AuthService backs the session middleware.
	AuthService service.IAuthService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional. Without a URL everything stays in-process.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// 3. Providers
	embeddingProvider, err := embeddingfactory.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
		embeddingAPIKey(cfg),
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := llmfactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Storage
	var historyRepo contract.HistoryRepository
	if cfg.Store.DatabaseDSN != "" {
		db, err := database.NewGormDB(cfg.Store.DatabaseDSN)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to database: %v", err)
		}
		historyRepo, err = implementation.NewGormHistoryRepository(db)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize history schema: %v", err)
		}
		log.Printf("[INFO] Using History Backend: POSTGRES")
	} else {
		historyRepo = implementation.NewFileHistoryRepository(cfg.Store.HistoryFilePath)
		log.Printf("[INFO] Using History Backend: FILE (%s)", cfg.Store.HistoryFilePath)
	}

	var failureCounter contract.FailureCounter
	if cfg.App.RedisURL != "" {
		counter, err := implementation.NewRedisFailureCounter(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis, falling back to in-memory counters: %v", err)
			failureCounter = memory.NewFailureCounter()
		} else {
			failureCounter = counter
		}
	} else {
		failureCounter = memory.NewFailureCounter()
	}

	diskStore := vectorstore.NewDiskStore(cfg.Store.VectorstoreDir)
	retriever := vectorstore.NewRetriever(diskStore, embeddingProvider)

	// 5. Retrieval and Generation Pipeline
	searchClient := websearch.NewClient(cfg.Search.SearxURL)
	pageFetcher := websearch.NewFetcher()
	coordinator := retrieval.NewCoordinator(
		llmProvider,
		searchClient,
		pageFetcher,
		retriever,
		embeddingProvider,
	)
	generationRelay := relay.New(llmProvider)

	// 6. Services
	authService := service.NewAuthService(cfg.Auth, failureCounter, sysLogger)
	historyService := service.NewHistoryService(historyRepo, natsPub, sysLogger)
	chatService := service.NewChatService(cfg.Ai, cfg.Search, coordinator, generationRelay, historyService, sysLogger)
	vectorstoreService := service.NewVectorstoreService(
		diskStore,
		embeddingProvider,
		cfg.Store.UploadDir,
		pubSub,
		cfg.Store.IndexTopicName,
		sysLogger,
	)

	imageClient := imagegen.NewClient(cfg.Ai.LLMAPIKey, cfg.Ai.LLMBaseURL, cfg.Ai.ImageModel)
	imageService := service.NewImageService(imageClient, sysLogger)

	auditLogger := logger.NewIsolatedLogger("logs/indexing.log")
	consumerService := service.NewConsumerService(pubSub, cfg.Store.IndexTopicName, natsPub, auditLogger)

	// 7. Controllers
	return &Container{
		AuthController:        controller.NewAuthController(authService),
		ChatController:        controller.NewChatController(chatService, sysLogger),
		HistoryController:     controller.NewHistoryController(historyService),
		VectorstoreController: controller.NewVectorstoreController(vectorstoreService),
		ImageController:       controller.NewImageController(imageService),
		ValidationController:  controller.NewValidationController(),

		AuthService:     authService,
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}

func embeddingAPIKey(cfg *config.Config) string {
	if cfg.Ai.EmbeddingProvider == "jina" {
		return cfg.Ai.JinaAPIKey
	}
	return cfg.Ai.GeminiAPIKey
}
