package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/chat-app/services/dm-service/internal/cache"
	cfgpkg "github.com/yourorg/chat-app/services/dm-service/internal/config"
	"github.com/yourorg/chat-app/services/dm-service/internal/handlers"
	"github.com/yourorg/chat-app/services/dm-service/internal/kafka"
	"github.com/yourorg/chat-app/services/dm-service/internal/logger"
	"github.com/yourorg/chat-app/services/dm-service/internal/middleware"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
	"github.com/yourorg/chat-app/services/dm-service/internal/routes"
	"github.com/yourorg/chat-app/services/dm-service/internal/service"
	"github.com/yourorg/chat-app/services/dm-service/internal/ws"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := cfgpkg.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.App.Env == "development"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// stores: Mongo when configured, in-memory fallback otherwise
	var (
		convStore repository.ConversationStore
		msgStore  repository.MessageStore
	)
	if cfg.Mongo.URI != "" {
		mc, err := repository.NewMongoClient(cfg.Mongo.URI)
		if err != nil {
			zlog.Fatalw("mongo init", "error", err)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		db := mc.Database(cfg.Mongo.Database)
		msgColl := db.Collection(cfg.Mongo.MessagesCollection)
		convColl := db.Collection(cfg.Mongo.ConversationsCollection)
		msgStore = repository.NewMongoMessageStore(msgColl, cfg.App.MaxMessageLength)
		convStore = repository.NewMongoConversationStore(convColl, msgColl)
	} else {
		zlog.Warnw("no mongo uri configured, using in-memory stores")
		mem := repository.NewMemoryMessageStore(cfg.App.MaxMessageLength)
		msgStore = mem
		convStore = repository.NewMemoryConversationStore(mem)
	}

	// presence cache (optional)
	var presence ws.Presence
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Fatalw("redis init", "error", err)
		}
		defer func() { _ = rdb.Close() }()
		presence = rdb
	}

	// message.sent producer (optional)
	var publisher service.Publisher
	var kprod *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kprod = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageSent)
		defer func() { _ = kprod.Close() }()
		publisher = kprod
	}

	svc := service.NewMessagingService(convStore, msgStore, publisher, cfg.App.MaxMessageLength, zlog)
	hub := ws.NewHub(presence, zlog)
	wsrv := ws.NewServer(hub, zlog)
	h := handlers.NewMessageHandler(svc, zlog)

	app := fiber.New()
	app.Use(fiberlogger.New())
	routes.Register(app, h, wsrv, middleware.JWTAuth(cfg.App.JWTSecret))

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	go func() {
		// a failed bind aborts the whole process; there is no degraded mode
		if err := app.Listen(addr); err != nil {
			zlog.Fatalw("server listen", "error", err)
		}
	}()
	zlog.Infow("dm-service started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zlog.Infow("dm-service stopped")
}
