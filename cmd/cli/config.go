package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/database"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/relay"
	"github.com/spf13/viper"
)

// Config holds the server and CLI configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Modes  ModesConfig  `mapstructure:"modes"`
	Video  VideoConfig  `mapstructure:"video"`
	Redis  RedisConfig  `mapstructure:"redis"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ModesConfig struct {
	Labels []string `mapstructure:"labels"`
	Strict bool     `mapstructure:"strict"`
	Buffer int      `mapstructure:"buffer"`
}

type VideoConfig struct {
	UpstreamURL string `mapstructure:"upstream_url"`
	Mode        string `mapstructure:"mode"`
	ChunkSize   int    `mapstructure:"chunk_size"`
	Boundary    string `mapstructure:"boundary"`
	Queue       int    `mapstructure:"queue"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"maxlen"`
}

type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	QoS         int    `mapstructure:"qos"`
}

// Database returns the connection settings of the Postgres store
func (c DBConfig) Database() database.Config {
	return database.Config{
		Host:         c.Host,
		Port:         c.Port,
		User:         c.User,
		Password:     c.Password,
		Name:         c.Name,
		SSLMode:      c.SSLMode,
		MaxOpenConns: c.MaxOpen,
		MaxIdleConns: c.MaxIdle,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8059")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "rugby")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "rugby")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("store.driver", "postgres")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("modes.labels", models.DefaultModeLabels)
	v.SetDefault("modes.strict", false)
	v.SetDefault("modes.buffer", 16)

	v.SetDefault("video.upstream_url", "")
	v.SetDefault("video.mode", "shared")
	v.SetDefault("video.chunk_size", 1024)
	v.SetDefault("video.boundary", "frame")
	v.SetDefault("video.queue", relay.DefaultQueue)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "sensor:readings")
	v.SetDefault("redis.maxlen", 100000)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "rugby-backend")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "sensors")
	v.SetDefault("mqtt.qos", 1)
}

// LoadConfig reads defaults, the optional config file and the environment.
// Environment variables use the key path in upper case with "_" for ".",
// e.g. DB_HOST or VIDEO_UPSTREAM_URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/rugby-backend/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the components cannot default themselves
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	switch c.Video.Mode {
	case "shared", "direct":
	default:
		return fmt.Errorf("unsupported video mode %q", c.Video.Mode)
	}

	if len(c.Modes.Labels) == 0 {
		return errors.New("at least one mode label is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos %d", c.MQTT.QoS)
	}
	return nil
}
