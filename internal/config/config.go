package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"SiteMonitorAPI/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Monitoring    MonitoringConfig
	Notifications NotificationConfig
	MQTT          MQTTConfig
	Redis         RedisConfig
	Security      SecurityConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxHeaderBytes  int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// MonitoringConfig drives the outage detection engine and polling loop.
type MonitoringConfig struct {
	SourceURL           string
	SourceTimeout       time.Duration
	OutageThresholdPct  float64
	PollIntervalSeconds int
	PollAutoStart       bool
}

// NotificationConfig carries per-channel recipient lists and provider
// credentials for the dispatcher.
type NotificationConfig struct {
	WhatsAppRecipients []string
	WhatsAppGatewayURL string
	WhatsAppToken      string
	EmailRecipients    []string
	EmailFrom          string
	ResendAPIKey       string
	WebhookURLs        []string
	SendTimeout        time.Duration
}

type MQTTConfig struct {
	Enabled        bool
	Broker         string
	Port           int
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	AutoReconnect  bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	RateLimitPerMinute int
	EnableRateLimit    bool
}

type LoggingConfig struct {
	Level     logger.Level
	FilePath  string
	UseColors bool
}

var requiredEnvVars = []string{
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"DB_NAME",
	"SITE_SOURCE_URL",
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	if err := validateRequired(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Monitoring:    loadMonitoringConfig(),
		Notifications: loadNotificationConfig(),
		MQTT:          loadMQTTConfig(),
		Redis:         loadRedisConfig(),
		Security:      loadSecurityConfig(),
		Logging:       loadLoggingConfig(),
	}

	return cfg, nil
}

func validateRequired() error {
	var missing []string

	for _, key := range requiredEnvVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnvAsInt("SERVER_PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "15s"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", "10s"),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", "10s"),
		MaxHeaderBytes:  getEnvAsInt("MAX_HEADER_BYTES", 1048576),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "sitemonitor"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "site_monitor"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m"),
	}
}

func loadMonitoringConfig() MonitoringConfig {
	return MonitoringConfig{
		SourceURL:           getEnv("SITE_SOURCE_URL", ""),
		SourceTimeout:       getEnvAsDuration("SITE_SOURCE_TIMEOUT", "15s"),
		OutageThresholdPct:  getEnvAsFloat("OUTAGE_THRESHOLD_PERCENT", 95.0),
		PollIntervalSeconds: getEnvAsInt("POLL_INTERVAL_SECONDS", 300),
		PollAutoStart:       getEnvAsBool("POLL_AUTO_START", false),
	}
}

func loadNotificationConfig() NotificationConfig {
	return NotificationConfig{
		WhatsAppRecipients: splitList(getEnv("WHATSAPP_RECIPIENTS", "")),
		WhatsAppGatewayURL: getEnv("WHATSAPP_GATEWAY_URL", ""),
		WhatsAppToken:      getEnv("WHATSAPP_TOKEN", ""),
		EmailRecipients:    splitList(getEnv("EMAIL_RECIPIENTS", "")),
		EmailFrom:          getEnv("EMAIL_FROM", "alerts@sitemonitor.local"),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		WebhookURLs:        splitList(getEnv("WEBHOOK_URLS", "")),
		SendTimeout:        getEnvAsDuration("NOTIFY_SEND_TIMEOUT", "30s"),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Enabled:        getEnvAsBool("MQTT_ENABLED", false),
		Broker:         getEnv("MQTT_BROKER", "localhost"),
		Port:           getEnvAsInt("MQTT_PORT", 1883),
		ClientID:       getEnv("MQTT_CLIENT_ID", "site-monitor-api"),
		Username:       getEnv("MQTT_USERNAME", ""),
		Password:       getEnv("MQTT_PASSWORD", ""),
		TopicPrefix:    getEnv("MQTT_TOPIC_PREFIX", "sites/monitor"),
		QoS:            byte(getEnvAsInt("MQTT_QOS", 1)),
		KeepAlive:      getEnvAsDuration("MQTT_KEEP_ALIVE", "60s"),
		ConnectTimeout: getEnvAsDuration("MQTT_CONNECT_TIMEOUT", "10s"),
		AutoReconnect:  getEnvAsBool("MQTT_AUTO_RECONNECT", true),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func loadSecurityConfig() SecurityConfig {
	origins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	methods := getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")

	return SecurityConfig{
		CORSAllowedOrigins: strings.Split(origins, ","),
		CORSAllowedMethods: strings.Split(methods, ","),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
		EnableRateLimit:    getEnvAsBool("ENABLE_RATE_LIMIT", true),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
		FilePath:  getEnv("LOG_FILE_PATH", ""),
		UseColors: getEnvAsBool("LOG_USE_COLORS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func (c *Config) Validate() error {
	var errs []string

	if c.Database.Password == "" {
		errs = append(errs, "DB_PASSWORD cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}

	if c.Monitoring.SourceURL == "" {
		errs = append(errs, "SITE_SOURCE_URL cannot be empty")
	}

	if c.Monitoring.OutageThresholdPct <= 0 || c.Monitoring.OutageThresholdPct > 100 {
		errs = append(errs, "OUTAGE_THRESHOLD_PERCENT must be in (0, 100]")
	}

	if c.Monitoring.PollIntervalSeconds < 1 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be at least 1")
	}

	if c.MQTT.Enabled && (c.MQTT.Port < 1 || c.MQTT.Port > 65535) {
		errs = append(errs, "MQTT_PORT must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func (c *Config) Print() {
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║             Site Monitor - Configuration                ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Printf("Environment:      %s\n", c.Server.Environment)
	fmt.Printf("Server:           %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Database:         %s:%d/%s\n", c.Database.Host, c.Database.Port, c.Database.Database)
	fmt.Printf("Site source:      %s\n", c.Monitoring.SourceURL)
	fmt.Printf("Outage threshold: %.1f%%\n", c.Monitoring.OutageThresholdPct)
	fmt.Printf("Poll interval:    %ds (auto-start: %v)\n", c.Monitoring.PollIntervalSeconds, c.Monitoring.PollAutoStart)
	if c.MQTT.Enabled {
		fmt.Printf("MQTT Broker:      %s:%d\n", c.MQTT.Broker, c.MQTT.Port)
	}
	fmt.Println("──────────────────────────────────────────────────────────")
}
