package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Bridge.Enabled {
		t.Error("Expected BRIDGE_ENABLED default false")
	}

	if cfg.Bridge.BaseURL != "http://localhost:8700" {
		t.Errorf("Expected BRIDGE_BASE_URL default 'http://localhost:8700', got '%s'", cfg.Bridge.BaseURL)
	}

	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Expected MQTT_BROKER default 'tcp://localhost:1883', got '%s'", cfg.MQTT.Broker)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Redis.MirrorKeyPrefix != "flowsense:biometrics:" {
		t.Errorf("Expected MIRROR_KEY_PREFIX default 'flowsense:biometrics:', got '%s'", cfg.Redis.MirrorKeyPrefix)
	}

	if cfg.Monitor.Interval != 60 {
		t.Errorf("Expected MONITOR_INTERVAL default 60, got %d", cfg.Monitor.Interval)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Expected HTTP_ADDR default ':8080', got '%s'", cfg.HTTP.Addr)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("BRIDGE_ENABLED", "true")
	os.Setenv("BRIDGE_BASE_URL", "http://bridge:9000")
	os.Setenv("BRIDGE_TIMEOUT", "5")
	os.Setenv("MQTT_ENABLED", "true")
	os.Setenv("REDIS_ENABLED", "true")
	os.Setenv("REDIS_ADDR", "redis:6379")
	os.Setenv("MONITOR_INTERVAL", "15")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !cfg.Bridge.Enabled {
		t.Error("Expected BRIDGE_ENABLED true")
	}

	if cfg.Bridge.BaseURL != "http://bridge:9000" {
		t.Errorf("Expected BRIDGE_BASE_URL 'http://bridge:9000', got '%s'", cfg.Bridge.BaseURL)
	}

	if cfg.Bridge.Timeout != 5 {
		t.Errorf("Expected BRIDGE_TIMEOUT 5, got %d", cfg.Bridge.Timeout)
	}

	if !cfg.MQTT.Enabled {
		t.Error("Expected MQTT_ENABLED true")
	}

	if !cfg.Redis.Enabled {
		t.Error("Expected REDIS_ENABLED true")
	}

	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Expected REDIS_ADDR 'redis:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Monitor.Interval != 15 {
		t.Errorf("Expected MONITOR_INTERVAL 15, got %d", cfg.Monitor.Interval)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("MONITOR_INTERVAL", "not-a-number")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Monitor.Interval != 60 {
		t.Errorf("Expected fallback to default 60, got %d", cfg.Monitor.Interval)
	}
}
