package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Redis     RedisConfig     `mapstructure:"redis"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Instance  InstanceConfig  `mapstructure:"instance"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// AdminConfig is the internal debug listener; not exposed publicly.
type AdminConfig struct {
	Port int `mapstructure:"port"`
}

type RedisConfig struct {
	// Address may be empty, in which case the price cache falls back to
	// the in-memory store.
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval"`
	PongTimeout  time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type UpstreamConfig struct {
	GeocoderBaseURL string        `mapstructure:"geocoder_base_url"`
	GeocoderAPIKey  string        `mapstructure:"geocoder_api_key"`
	PricesBaseURL   string        `mapstructure:"prices_base_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type CacheConfig struct {
	PriceTTL time.Duration `mapstructure:"price_ttl"`
}

type AuthConfig struct {
	// Token guards the REST API when set. Socket auth happens upstream.
	Token string `mapstructure:"token"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("admin.port", 8081)
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("websocket.ping_interval", 25*time.Second)
	viper.SetDefault("websocket.pong_timeout", 60*time.Second)
	viper.SetDefault("websocket.write_timeout", 10*time.Second)
	viper.SetDefault("upstream.geocoder_base_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	viper.SetDefault("upstream.geocoder_api_key", "")
	viper.SetDefault("upstream.prices_base_url", "http://localhost:9090")
	viper.SetDefault("upstream.request_timeout", 10*time.Second)
	viper.SetDefault("cache.price_ttl", 24*time.Hour)
	viper.SetDefault("auth.token", "")
	viper.SetDefault("instance.id", "sync-service-1")

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/cartshare/")

	// Environment variable support
	viper.AutomaticEnv()

	// Environment variable mappings
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("admin.port", "ADMIN_PORT")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("websocket.ping_interval", "WS_PING_INTERVAL")
	viper.BindEnv("websocket.pong_timeout", "WS_PONG_TIMEOUT")
	viper.BindEnv("websocket.write_timeout", "WS_WRITE_TIMEOUT")
	viper.BindEnv("upstream.geocoder_base_url", "GEOCODER_BASE_URL")
	viper.BindEnv("upstream.geocoder_api_key", "GEOCODER_API_KEY")
	viper.BindEnv("upstream.prices_base_url", "PRICES_BASE_URL")
	viper.BindEnv("upstream.request_timeout", "UPSTREAM_REQUEST_TIMEOUT")
	viper.BindEnv("cache.price_ttl", "PRICE_CACHE_TTL")
	viper.BindEnv("auth.token", "AUTH_TOKEN")
	viper.BindEnv("instance.id", "INSTANCE_ID")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, continue with defaults and environment variables
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	cacheBackend := "memory"
	if c.Redis.Address != "" {
		cacheBackend = "redis@" + c.Redis.Address
	}
	return fmt.Sprintf(
		"Server: %s:%d, Admin: :%d, Cache: %s, Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Admin.Port,
		cacheBackend,
		c.Instance.ID,
	)
}
