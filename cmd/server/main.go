package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/roomsync/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
		usage:        "Secret used to verify caller tokens",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 25,
		usage:        "Maximum number of queued items per room",
	}
	httpTimeout = configVar[time.Duration]{
		envKey:       "SERVER_HTTP_TIMEOUT",
		flagKey:      "http-timeout",
		defaultValue: 15 * time.Second,
		usage:        "Timeout for a single provider request",
	}
	httpRetryMax = configVar[int]{
		envKey:       "SERVER_HTTP_RETRY_MAX",
		flagKey:      "http-retry-max",
		defaultValue: 2,
		usage:        "Retries for transient provider failures",
	}
	subtitlesBaseURL = configVar[string]{
		envKey:       "SERVER_SUBTITLES_BASE_URL",
		flagKey:      "subtitles-base-url",
		defaultValue: "https://www.opensubtitles.org",
		usage:        "Subtitle search provider base URL",
	}
	redisEnabled = configVar[bool]{
		envKey:       "REDIS_ENABLED",
		flagKey:      "redis-enabled",
		defaultValue: false,
		usage:        "Fan broadcasts out through redis",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, secret.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, playlistLimit.usage)
	pflag.Duration(httpTimeout.flagKey, httpTimeout.defaultValue, httpTimeout.usage)
	pflag.Int(httpRetryMax.flagKey, httpRetryMax.defaultValue, httpRetryMax.usage)
	pflag.String(subtitlesBaseURL.flagKey, subtitlesBaseURL.defaultValue, subtitlesBaseURL.usage)
	pflag.Bool(redisEnabled.flagKey, redisEnabled.defaultValue, redisEnabled.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(playlistLimit)
	bind(httpTimeout)
	bind(httpRetryMax)
	bind(subtitlesBaseURL)
	bind(redisEnabled)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)

	return &app.AppConfig{
		Secret:           viper.GetString(secret.flagKey),
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		PlaylistLimit:    viper.GetInt(playlistLimit.flagKey),
		HTTPTimeout:      viper.GetDuration(httpTimeout.flagKey),
		HTTPRetryMax:     viper.GetInt(httpRetryMax.flagKey),
		SubtitlesBaseURL: viper.GetString(subtitlesBaseURL.flagKey),
		RedisEnabled:     viper.GetBool(redisEnabled.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
