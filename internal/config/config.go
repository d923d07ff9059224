package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string
	// RateLimitRPS and RateLimitBurst bound API requests; zero RPS disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	// SQLiteLogQueries wraps the driver so every statement is logged at debug level.
	SQLiteLogQueries bool

	SerialPort   string
	SerialBaud   int
	PollInterval time.Duration

	WeatherAPIKey          string
	WeatherAPIURL          string
	WeatherQuery           string
	WeatherTimeout         time.Duration
	WeatherRefreshInterval time.Duration

	AlertTempMin  float64
	AlertTempMax  float64
	AlertHumidMin float64
	AlertHumidMax float64

	// MQTTBroker empty disables publishing.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envString("HTTP_ADDR", ":8080")
	rateRPS, err := envFloat("HTTP_RATE_LIMIT_RPS", 5)
	if err != nil {
		return Config{}, err
	}
	if rateRPS < 0 {
		return Config{}, fmt.Errorf("invalid HTTP_RATE_LIMIT_RPS %v: must be >= 0", rateRPS)
	}
	rateBurst, err := envInt("HTTP_RATE_LIMIT_BURST", 10)
	if err != nil {
		return Config{}, err
	}

	driver := envString("DB_DRIVER", "sqlite3")
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := envString("SQLITE_PATH", "data/sensor_data.db")

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 0)
	if err != nil {
		return Config{}, err
	}
	logSQL, err := envBool("DB_LOG_SQL", false)
	if err != nil {
		return Config{}, err
	}

	serialPort := envString("SERIAL_PORT", "/dev/ttyACM0")
	serialBaud, err := envInt("SERIAL_BAUD", 9600)
	if err != nil {
		return Config{}, err
	}
	if serialBaud <= 0 {
		return Config{}, fmt.Errorf("invalid SERIAL_BAUD %d: must be > 0", serialBaud)
	}
	pollInterval, err := envDuration("POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("invalid POLL_INTERVAL %s: must be > 0", pollInterval)
	}

	weatherTimeout, err := envDuration("WEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	weatherRefresh, err := envDuration("WEATHER_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	tempMin, err := envFloat("ALERT_TEMP_MIN", 60)
	if err != nil {
		return Config{}, err
	}
	tempMax, err := envFloat("ALERT_TEMP_MAX", 80)
	if err != nil {
		return Config{}, err
	}
	if tempMin > tempMax {
		return Config{}, fmt.Errorf("ALERT_TEMP_MIN %v must be <= ALERT_TEMP_MAX %v", tempMin, tempMax)
	}
	humidMin, err := envFloat("ALERT_HUMID_MIN", 30)
	if err != nil {
		return Config{}, err
	}
	humidMax, err := envFloat("ALERT_HUMID_MAX", 60)
	if err != nil {
		return Config{}, err
	}
	if humidMin > humidMax {
		return Config{}, fmt.Errorf("ALERT_HUMID_MIN %v must be <= ALERT_HUMID_MAX %v", humidMin, humidMax)
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:   appEnv,
		LogLevel: level,
		HTTPAddr: httpAddr,

		RateLimitRPS:   rateRPS,
		RateLimitBurst: rateBurst,

		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogQueries:      logSQL,

		SerialPort:   serialPort,
		SerialBaud:   serialBaud,
		PollInterval: pollInterval,

		WeatherAPIKey:          strings.TrimSpace(os.Getenv("WEATHER_API_KEY")),
		WeatherAPIURL:          envString("WEATHER_API_URL", "http://api.weatherapi.com/v1/current.json"),
		WeatherQuery:           envString("WEATHER_QUERY", "auto:ip"),
		WeatherTimeout:         weatherTimeout,
		WeatherRefreshInterval: weatherRefresh,

		AlertTempMin:  tempMin,
		AlertTempMax:  tempMax,
		AlertHumidMin: humidMin,
		AlertHumidMax: humidMax,

		MQTTBroker:   strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:     mqttPort,
		MQTTClientID: envString("MQTT_CLIENT_ID", "temphumidity-monitor"),
		MQTTTopic:    envString("MQTT_TOPIC", "home/climate/readings"),
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}
