package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/athenalobo/muditha-platform/pkg/config"
	"github.com/athenalobo/muditha-platform/pkg/database"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	WebSocket WebSocketConfig
	Presence  PresenceConfig
	Oracle    OracleConfig
	Analysis  AnalysisConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host       string
	Port       int
	InstanceID string `mapstructure:"instance_id"`
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string `mapstructure:"db_name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTIssuer     string        `mapstructure:"jwt_issuer"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type PresenceConfig struct {
	KeyPrefix string        `mapstructure:"key_prefix"`
	KeyTTL    time.Duration `mapstructure:"key_ttl"`
}

type OracleConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Region        string        `mapstructure:"region"`
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float32       `mapstructure:"temperature"`
	TopP          float32       `mapstructure:"top_p"`
	Timeout       time.Duration `mapstructure:"timeout"`
	HistoryWindow int           `mapstructure:"history_window"`
}

// AnalysisConfig holds the risk scoring tables. Keywords, weights and
// thresholds are data, not behavior, so they live here and can be tuned
// without touching the pipeline.
type AnalysisConfig struct {
	CrisisKeywords      []string `mapstructure:"crisis_keywords"`
	UrgencyKeywords     []string `mapstructure:"urgency_keywords"`
	CrisisWeight        int      `mapstructure:"crisis_weight"`
	UrgencyWeight       int      `mapstructure:"urgency_weight"`
	HighRiskThreshold   int      `mapstructure:"high_risk_threshold"`
	MediumRiskThreshold int      `mapstructure:"medium_risk_threshold"`

	CrisisResponseHigh   string `mapstructure:"crisis_response_high"`
	CrisisResponseMedium string `mapstructure:"crisis_response_medium"`
	CrisisResponseLow    string `mapstructure:"crisis_response_low"`
	FallbackReply        string `mapstructure:"fallback_reply"`
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "muditha")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", "muditha_chat")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.file_path", "muditha.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "muditha-auth")
	v.SetDefault("auth.token_duration", "24h")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("presence.key_prefix", "user_socket_")
	v.SetDefault("presence.key_ttl", "1h")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.region", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.max_tokens", 512)
	v.SetDefault("oracle.temperature", 0.7)
	v.SetDefault("oracle.top_p", 0.9)
	v.SetDefault("oracle.timeout", "30s")
	v.SetDefault("oracle.history_window", 10)
	v.SetDefault("analysis.crisis_keywords", defaultCrisisKeywords)
	v.SetDefault("analysis.urgency_keywords", defaultUrgencyKeywords)
	v.SetDefault("analysis.crisis_weight", 3)
	v.SetDefault("analysis.urgency_weight", 2)
	v.SetDefault("analysis.high_risk_threshold", 5)
	v.SetDefault("analysis.medium_risk_threshold", 3)
	v.SetDefault("analysis.crisis_response_high", defaultCrisisResponseHigh)
	v.SetDefault("analysis.crisis_response_medium", defaultCrisisResponseMedium)
	v.SetDefault("analysis.crisis_response_low", defaultCrisisResponseLow)
	v.SetDefault("analysis.fallback_reply", defaultFallbackReply)
	v.SetDefault("log.level", "info")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.instance_id", "INSTANCE_ID")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.db_name", "DB_NAME")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("oracle.base_url", "ORACLE_BASE_URL")
	v.BindEnv("oracle.region", "ORACLE_REGION")
	v.BindEnv("oracle.api_key", "ORACLE_API_KEY")
	v.BindEnv("oracle.model", "ORACLE_MODEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Auth.TokenDuration = parseDuration(v, "auth.token_duration", 24*time.Hour)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Presence.KeyTTL = parseDuration(v, "presence.key_ttl", time.Hour)
	cfg.Oracle.Timeout = parseDuration(v, "oracle.timeout", 30*time.Second)

	return &cfg, nil
}

// DatabaseConfig converts to the shared database package config.
func (c *DatabaseConfig) ToDatabase() *database.Config {
	return &database.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.DBName,
		SSLMode:         c.SSLMode,
		FilePath:        c.FilePath,
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
