package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/ingest/mqtt"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/logger"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/modes"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/relay"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/stream"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/timeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "rugby-backend"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Rugby Backend server",
	Long:  `Start the Rugby Backend server to receive sensor readings, serve timelines, relay the camera and synchronize viewing modes.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configFrom(cmd)

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	m := metrics.New()

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	gatewayOpts := []ingest.Option{ingest.WithMetrics(m)}
	if cfg.Redis.Addr != "" {
		publisher := stream.NewPublisher(stream.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Stream:   cfg.Redis.Stream,
			MaxLen:   cfg.Redis.MaxLen,
		})
		defer publisher.Close()

		pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		if err := publisher.Ping(pingCtx); err != nil {
			log.Warn("Redis is not reachable, readings will not be published until it is",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()

		gatewayOpts = append(gatewayOpts, ingest.WithPublisher(publisher))
		log.Info("Publishing readings to Redis stream",
			zap.String("addr", cfg.Redis.Addr), zap.String("stream", publisher.Stream()))
	}
	gateway := ingest.NewGateway(store, log, gatewayOpts...)

	broadcasterOpts := []modes.Option{
		modes.WithBuffer(cfg.Modes.Buffer),
		modes.WithMetrics(m),
		modes.WithLogger(log),
	}
	if cfg.Modes.Strict {
		broadcasterOpts = append(broadcasterOpts, modes.WithStrictLabels())
	}
	broadcaster, err := modes.New(cfg.Modes.Labels, broadcasterOpts...)
	if err != nil {
		return fmt.Errorf("failed to create mode broadcaster: %w", err)
	}

	video := newVideoHandler(cfg.Video, m, log)

	var consumer *mqtt.Consumer
	var mqttClient *mqtt.Client
	if cfg.MQTT.Broker != "" {
		mqttClient, err = mqtt.NewClient(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		consumer = mqtt.NewConsumer(mqttClient, gateway, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS), log)
		if err := consumer.Start(cmd.Context()); err != nil {
			mqttClient.Disconnect()
			return fmt.Errorf("failed to subscribe to sensor topics: %w", err)
		}
	}

	// Setup Router
	routeManager := NewRouteManager(RouteDeps{
		Store:          store,
		Gateway:        gateway,
		Reconciler:     timeline.NewReconciler(store),
		Broadcaster:    broadcaster,
		Video:          video,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	routeManager.Setup()

	addr := ":" + cfg.Server.Port

	// WriteTimeout stays zero so the video feed and websocket sessions are not cut off
	server := &http.Server{
		Handler:           routeManager.Router,
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received")

		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				log.Warn("Failed to unsubscribe from sensor topics", zap.Error(err))
			}
			mqttClient.Disconnect()
		}

		// Closing the broadcaster ends the websocket sessions so Shutdown does not wait on them
		broadcaster.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", zap.Error(err))
		}
	}()

	log.Info("Starting Rugby Backend server",
		zap.String("addr", addr),
		zap.String("store", cfg.Store.Driver),
		zap.String("video_mode", cfg.Video.Mode),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// openStore builds the configured record store
func openStore(cfg *Config, log *zap.Logger) (database.Store, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("Using in-memory store, readings are lost on restart")
		return database.NewMemoryStore(), nil
	}

	dbManager, err := database.NewDatabaseManager(cfg.DB.Database(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := dbManager.Init(); err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbManager, nil
}

// newVideoHandler builds the relay for the configured mode
func newVideoHandler(cfg VideoConfig, m *metrics.Metrics, log *zap.Logger) http.Handler {
	if cfg.UpstreamURL == "" {
		log.Warn("No camera upstream configured, /video_feed will answer 502")
	}

	source := relay.NewHTTPSource(cfg.UpstreamURL)
	log.Info("Video relay configured",
		zap.String("mode", cfg.Mode),
		zap.String("upstream", source.URL()),
		zap.Int("queue", cfg.Queue),
	)
	opts := []relay.Option{
		relay.WithChunkSize(cfg.ChunkSize),
		relay.WithBoundary(cfg.Boundary),
		relay.WithQueue(cfg.Queue),
		relay.WithMetrics(m),
		relay.WithLogger(log),
	}

	if cfg.Mode == "direct" {
		return relay.NewDirect(source, opts...)
	}
	return relay.NewHub(source, opts...)
}
