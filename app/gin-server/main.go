package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/balasin/balasin/config"
	"github.com/balasin/balasin/internal/api/handlers"
	"github.com/balasin/balasin/internal/api/middleware"
	"github.com/balasin/balasin/internal/api/routes"
	"github.com/balasin/balasin/internal/cache"
	"github.com/balasin/balasin/internal/logger"
	"github.com/balasin/balasin/internal/providers/completion"
	"github.com/balasin/balasin/internal/providers/transport"
	mongorepo "github.com/balasin/balasin/internal/repositories/mongo"
	pgrepo "github.com/balasin/balasin/internal/repositories/postgres"
	"github.com/balasin/balasin/internal/services"
	"github.com/balasin/balasin/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	// Init MongoDB (transport session documents)
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	// Init PostgreSQL (relational core)
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.EnsurePostgresSchema(); err != nil {
		log.Fatalf("PostgreSQL schema error: %v", err)
	}

	// Init Redis (settings snapshot cache)
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}

	ctx := context.Background()

	mongoDBName := os.Getenv("MONGO_DB")
	if mongoDBName == "" {
		mongoDBName = "balasin"
	}
	mongoDB := config.MongoClient.Database(mongoDBName)

	// Repositories
	merchants := pgrepo.NewMerchantRepo(config.PostgresDB)
	customers := pgrepo.NewCustomerRepo(config.PostgresDB)
	conversations := pgrepo.NewConversationRepo(config.PostgresDB)
	messages := pgrepo.NewMessageRepo(config.PostgresDB)
	chunks := pgrepo.NewKnowledgeRepo(config.PostgresDB)
	usage := pgrepo.NewUsageRepo(config.PostgresDB)
	settingsRepo := pgrepo.NewSettingsRepo(config.PostgresDB)
	sessions := mongorepo.NewWaSessionRepo(mongoDB)

	// Providers
	gateway, err := transport.NewEvolution(
		os.Getenv("EVOLUTION_API_URL"),
		os.Getenv("EVOLUTION_API_KEY"),
	)
	if err != nil {
		log.Fatalf("Transport init error: %v", err)
	}

	comp, err := completion.NewGateway(
		os.Getenv("AI_GATEWAY_URL"),
		os.Getenv("AI_GATEWAY_API_KEY"),
	)
	if err != nil {
		log.Fatalf("Completion init error: %v", err)
	}

	uploader, err := storage.NewGCSUploader(ctx, os.Getenv("GCS_MEDIA_BUCKET"))
	if err != nil {
		log.Fatalf("Storage init error: %v", err)
	}
	defer func() { _ = uploader.Close() }()

	// Services
	settingsSvc := services.NewSettingsService(settingsRepo, cache.NewRedisCache(config.RedisClient))
	identitySvc := services.NewIdentityService(sessions, merchants, customers, conversations)
	usageSvc := services.NewUsageService(usage, merchants)
	knowledgeSvc := services.NewKnowledgeService(chunks)
	memorySvc := services.NewMemoryService(messages)
	mediaSvc := services.NewMediaService(gateway, uploader)
	deliverySvc := services.NewDeliveryService(gateway, l)

	inboundSvc := services.NewInboundService(services.InboundDeps{
		Settings:      settingsSvc,
		Identity:      identitySvc,
		Usage:         usageSvc,
		Knowledge:     knowledgeSvc,
		Memory:        memorySvc,
		Media:         mediaSvc,
		Delivery:      deliverySvc,
		Completion:    comp,
		Messages:      messages,
		Conversations: conversations,
		Logger:        l,
	})
	operatorSvc := services.NewOperatorService(settingsSvc, deliverySvc, messages, conversations)

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Webhook: handlers.NewWebhookHandler(inboundSvc, os.Getenv("WA_WEBHOOK_SECRET"), l),
		Send:    handlers.NewSendHandler(operatorSvc),
		RagTest: handlers.NewRagTestHandler(knowledgeSvc, settingsSvc, merchants, comp),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
