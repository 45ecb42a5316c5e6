package config

import (
	"os"
	"strconv"
)

// Config for the biometrics engine service.
type Config struct {
	// Platform health bridge (native source). Disabled means the session
	// runs synthetic-only from the start.
	Bridge struct {
		Enabled bool
		BaseURL string
		Timeout int // seconds
	}

	// MQTT realtime push from the bridge.
	MQTT struct {
		Enabled    bool
		Broker     string
		ClientID   string
		Username   string
		Password   string
		DataTopic  string
		ErrorTopic string
		QoS        byte
	}

	// Redis realtime mirror.
	Redis struct {
		Enabled         bool
		Addr            string
		Password        string
		DB              int
		MirrorKeyPrefix string
		MirrorTTL       int // seconds
	}

	Monitor struct {
		Interval int // poll interval in seconds
	}

	HTTP struct {
		Addr string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds the config from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Bridge.Enabled = getEnvBool("BRIDGE_ENABLED", false)
	cfg.Bridge.BaseURL = getEnv("BRIDGE_BASE_URL", "http://localhost:8700")
	cfg.Bridge.Timeout = getEnvInt("BRIDGE_TIMEOUT", 10)

	cfg.MQTT.Enabled = getEnvBool("MQTT_ENABLED", false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "flowsense-biometrics")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.DataTopic = getEnv("MQTT_DATA_TOPIC", "flowsense/biometrics/realtime")
	cfg.MQTT.ErrorTopic = getEnv("MQTT_ERROR_TOPIC", "flowsense/biometrics/errors")
	cfg.MQTT.QoS = 1

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.MirrorKeyPrefix = getEnv("MIRROR_KEY_PREFIX", "flowsense:biometrics:")
	cfg.Redis.MirrorTTL = getEnvInt("MIRROR_TTL", 300)

	cfg.Monitor.Interval = getEnvInt("MONITOR_INTERVAL", 60)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
