package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/roomsync/internal/controller"
	"github.com/sharetube/roomsync/internal/domain"
	broadcastRedis "github.com/sharetube/roomsync/internal/repository/broadcast/redis"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
	"github.com/sharetube/roomsync/internal/repository/room/inmemory"
	"github.com/sharetube/roomsync/internal/service/media"
	"github.com/sharetube/roomsync/internal/service/room"
	"github.com/sharetube/roomsync/internal/service/subtitle"
	"github.com/sharetube/roomsync/pkg/ctxlogger"
	"github.com/sharetube/roomsync/pkg/httpclient"
	"github.com/sharetube/roomsync/pkg/redisclient"
)

type AppConfig struct {
	Secret           string        `json:"-"`
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	PlaylistLimit    int           `json:"playlist_limit"`
	HTTPTimeout      time.Duration `json:"http_timeout"`
	HTTPRetryMax     int           `json:"http_retry_max"`
	SubtitlesBaseURL string        `json:"subtitles_base_url"`
	RedisEnabled     bool          `json:"redis_enabled"`
	RedisHost        string        `json:"redis_host"`
	RedisPort        int           `json:"redis_port"`
	RedisPassword    string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return errors.New("secret must not be empty")
	}
	if cfg.PlaylistLimit < 1 {
		return fmt.Errorf("playlist limit must be greater than 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be greater than 0")
	}
	if cfg.HTTPRetryMax < 0 {
		return fmt.Errorf("http retry max must not be negative")
	}
	if cfg.RedisEnabled && cfg.RedisPort < 1 {
		return fmt.Errorf("redis port must be greater than 0")
	}
	return nil
}

type broadcaster interface {
	Broadcast(ctx context.Context, actionTag, actorUserId string, state domain.RoomState, communityId string)
}

// NewHandler wires the services behind the HTTP surface. With rc set, broadcasts go through
// redis and a relay feeds them back into the local hub until ctx is done.
func NewHandler(ctx context.Context, cfg *AppConfig, logger *slog.Logger, rc *redis.Client) (http.Handler, error) {
	client := httpclient.New(&httpclient.Config{
		Timeout:  cfg.HTTPTimeout,
		RetryMax: cfg.HTTPRetryMax,
		Logger:   logger,
	})

	hub := ws.NewHub(logger, ws.DefaultBufferSize)

	var gateway broadcaster = hub
	if rc != nil {
		redisGateway := broadcastRedis.NewGateway(rc, logger, broadcastRedis.DefaultQueueSize)
		relay, err := redisGateway.Subscribe(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to broadcasts: %w", err)
		}
		go func() {
			if err := relay.Run(ctx, hub); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorContext(ctx, "broadcast relay stopped", "error", err)
			}
		}()
		go func() {
			if err := redisGateway.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorContext(ctx, "broadcast publisher stopped", "error", err)
			}
		}()
		gateway = redisGateway
	}

	resolver := media.NewResolver(client, logger)
	subtitleService := subtitle.NewService(client, logger, &subtitle.Config{
		BaseURL: cfg.SubtitlesBaseURL,
	})
	roomService := room.NewService(inmemory.NewRepo(logger), resolver, subtitleService, gateway, logger, &room.Config{
		PlaylistLimit: cfg.PlaylistLimit,
	})

	return controller.NewController(roomService, resolver, subtitleService, hub, cfg.Secret, logger).GetMux(), nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, err
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(h), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rc *redis.Client
	if cfg.RedisEnabled {
		rc, err = redisclient.NewRedisClient(ctx, &redisclient.Config{
			Port:     cfg.RedisPort,
			Host:     cfg.RedisHost,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()
	}

	handler, err := NewHandler(ctx, cfg, logger, rc)
	if err != nil {
		return err
	}
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
