package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/athenalobo/muditha-platform/internal/analysis"
	"github.com/athenalobo/muditha-platform/internal/auth"
	"github.com/athenalobo/muditha-platform/internal/bus"
	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/internal/dispatch"
	"github.com/athenalobo/muditha-platform/internal/domain"
	"github.com/athenalobo/muditha-platform/internal/handler"
	"github.com/athenalobo/muditha-platform/internal/hub"
	"github.com/athenalobo/muditha-platform/internal/oracle"
	"github.com/athenalobo/muditha-platform/internal/presence"
	"github.com/athenalobo/muditha-platform/internal/repository"
	"github.com/athenalobo/muditha-platform/internal/room"
	"github.com/athenalobo/muditha-platform/internal/service"
	"github.com/athenalobo/muditha-platform/pkg/database"
	"github.com/athenalobo/muditha-platform/pkg/jwt"
	pkglog "github.com/athenalobo/muditha-platform/pkg/log"
	"github.com/athenalobo/muditha-platform/pkg/middleware"
	"github.com/athenalobo/muditha-platform/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "muditha-chat",
	})
	logger := pkglog.L()

	instanceID := cfg.Server.InstanceID
	if instanceID == "" {
		instanceID = uuid.New().String()
	}

	// Connect to database using GORM
	db, err := database.New(cfg.Database.ToDatabase())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.RoomModel{},
		&domain.ParticipantModel{},
		&domain.MessageModel{},
		&domain.ReadReceiptModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Presence tracker. A dead session store at startup is fatal; on the
	// request path it degrades to missed notifications.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	tracker := presence.NewRedisTracker(redisClient, cfg.Presence.KeyPrefix, cfg.Presence.KeyTTL)

	// Event bus for cross-instance fan-out. Needs its own connection:
	// a subscriber-mode connection cannot run other commands.
	ps, err := pubsub.NewRedisPubSub(pubsub.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect event bus")
	}
	defer ps.Close()

	// Repositories and guard
	roomRepo := repository.NewGormRoomRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	identityStore := auth.NewGormIdentityStore(db)
	guard := room.NewMembershipGuard(roomRepo, identityStore)

	// Auth
	jwtManager := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, cfg.Auth.JWTIssuer)
	authenticator := auth.NewTokenAuthenticator(jwtManager, identityStore)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Analysis pipeline. Without oracle credentials the assistant still
	// answers from the canned fallbacks.
	var oracleClient oracle.Client
	if arkClient, err := oracle.NewArkClient(context.Background(), &cfg.Oracle); err != nil {
		logger.Warn().Err(err).Msg("generative oracle not configured, using fallbacks only")
		oracleClient = oracle.NewDisabledClient()
	} else {
		oracleClient = arkClient
	}
	pipeline := analysis.NewPipeline(
		analysis.NewLexiconScorer(),
		analysis.NewCrisisMatcher(&cfg.Analysis),
		oracleClient,
		&cfg.Analysis,
		cfg.Oracle.HistoryWindow,
	)

	// Hub and fan-out
	h := hub.NewHub(cfg.WebSocket)
	go h.Run()
	fanout := bus.NewFanout(h, ps, instanceID)
	relay := bus.NewRelay(h, ps, instanceID)

	// Dispatcher and gateway
	dispatcher := dispatch.NewDispatcher(guard, messageRepo, roomRepo, pipeline, fanout, tracker, cfg.Oracle.HistoryWindow)
	gatewayService := service.NewChatGatewayService(h, guard, dispatcher, tracker, fanout)
	wsHandler := handler.NewWSHandler(h, authenticator, gatewayService, cfg.WebSocket)
	httpHandler := handler.NewHandler(guard, dispatcher, messageRepo, authMiddleware)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request)
	})
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("instance_id", instanceID).Msg("muditha-chat listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down muditha-chat")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("muditha-chat stopped")
}
