// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"gongu-service/internal/config"
	"gongu-service/internal/db"
	campaignHandler "gongu-service/internal/handlers/campaign"
	inventoryHandler "gongu-service/internal/handlers/inventory"
	wsHandler "gongu-service/internal/handlers/websocket"
	kafkamsg "gongu-service/internal/messaging/kafka"
	"gongu-service/internal/middleware"
	"gongu-service/internal/pkg/session"
	"gongu-service/internal/repository/postgres"
	campaignUsecase "gongu-service/internal/service/campaign"
	inventoryUsecase "gongu-service/internal/service/inventory"
	"gongu-service/internal/service/lifecycle"
	statsUsecase "gongu-service/internal/service/statistics"
	"gongu-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	consumers   []*kafkamsg.SignalConsumer
	producer    *kafkamsg.ClosedProducer

	cancelBackground context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()
	backgroundCtx, cancel := context.WithCancel(ctx)
	s.cancelBackground = cancel

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redisClient = redisClient

	// ----- Session Manager -----
	sessionManager := session.NewManager(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	campaignRepo := postgres.NewCampaignRepository(pool, dbWrapper)
	optionRepo := postgres.NewOptionRepository(pool)
	statsRepo := postgres.NewStatisticsRepository(pool)
	orderItemRepo := postgres.NewOrderItemRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(backgroundCtx)

	// ----- Kafka Producer -----
	writer := &kafka.Writer{
		Addr:     kafka.TCP(s.cfg.KafkaBrokers...),
		Topic:    s.cfg.TopicCampaignClosed,
		Balancer: &kafka.Hash{},
	}
	s.producer = kafkamsg.NewClosedProducer(writer, logger)

	// ----- Services (Usecases) -----
	validator := campaignUsecase.NewValidator(campaignRepo)
	campaignService := campaignUsecase.NewCampaignService(campaignRepo, validator, logger)
	inventoryService := inventoryUsecase.NewInventoryService(optionRepo, orderItemRepo, logger)
	finalizer := statsUsecase.NewFinalizer(statsRepo, orderItemRepo, logger)

	orchestrator := lifecycle.NewOrchestrator(
		campaignRepo,
		inventoryService,
		finalizer,
		[]lifecycle.ClosedPublisher{s.producer, hub},
		s.cfg.LifecycleWorkers,
		s.cfg.LifecycleQueueSize,
		logger,
	)
	go func() {
		if err := orchestrator.Start(backgroundCtx); err != nil {
			logger.Error("lifecycle worker pool stopped", zap.Error(err))
		}
	}()

	// ----- Kafka Consumers -----
	orderCompletedReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.cfg.KafkaBrokers,
		GroupID: s.cfg.KafkaConsumerGroup,
		Topic:   s.cfg.TopicOrderCompleted,
	})
	stockDepletedReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.cfg.KafkaBrokers,
		GroupID: s.cfg.KafkaConsumerGroup,
		Topic:   s.cfg.TopicStockDepleted,
	})
	s.consumers = []*kafkamsg.SignalConsumer{
		kafkamsg.NewOrderCompletedConsumer(orderCompletedReader, orchestrator, logger),
		kafkamsg.NewStockDepletedConsumer(stockDepletedReader, orchestrator, logger),
	}
	for _, c := range s.consumers {
		c.Start(backgroundCtx)
	}

	// ----- Handlers -----
	campaignHandlerInst := campaignHandler.NewCampaignHandler(campaignService)
	inventoryHandlerInst := inventoryHandler.NewInventoryHandler(inventoryService)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(sessionManager)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		CampaignHandler:  campaignHandlerInst,
		InventoryHandler: inventoryHandlerInst,
		WSHandler:        wsHandlerInst,
		AuthMiddleware:   authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops the background machinery in reverse dependency order.
func (s *Server) Shutdown(ctx context.Context) {
	if s.cancelBackground != nil {
		s.cancelBackground()
	}
	for _, c := range s.consumers {
		c.Stop()
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil && s.logger != nil {
			s.logger.Warn("failed to close kafka producer", zap.Error(err))
		}
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.logger != nil {
		s.logger.Sync()
	}
}
