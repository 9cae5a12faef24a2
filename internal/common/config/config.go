package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	DocumentsDBPath    string `yaml:"documents_db_path"`
	DocumentsMigration string `yaml:"documents_migration"`
	DocumentsURL       string `yaml:"documents_url"`
	OpenAPIPath        string `yaml:"openapi_path"`

	// APITokens: "token:user,..."; пусто - bearer auth выключен.
	APITokens string `yaml:"api_tokens"`

	Editor EditorConfig `yaml:"editor"`
}

// EditorConfig - настройки сессии редактирования.
type EditorConfig struct {
	AutosaveDelayMS int     `yaml:"autosave_delay_ms"`
	DragThresholdPX float64 `yaml:"drag_threshold_px"`
	SaveTimeout     int     `yaml:"save_timeout"`
}

func (e EditorConfig) AutosaveDelay() time.Duration {
	return time.Duration(e.AutosaveDelayMS) * time.Millisecond
}

func (e EditorConfig) SaveTimeoutDuration() time.Duration {
	return time.Duration(e.SaveTimeout) * time.Second
}

func defaults() *Config {
	return &Config{
		Port:               "3000",
		Environment:        "development",
		ReadTimeout:        10,
		WriteTimeout:       10,
		DocumentsDBPath:    "data/db/documents.db",
		DocumentsMigration: "migrations/001_init_documents.sql",
		DocumentsURL:       "http://localhost:3003",
		OpenAPIPath:        "docs/takeoff.openapi.yaml",
		Editor: EditorConfig{
			AutosaveDelayMS: 2000,
			DragThresholdPX: 3,
			SaveTimeout:     10,
		},
	}
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// LoadFile читает YAML поверх значений по умолчанию. Переменные окружения
// всё равно важнее файла.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fallback := defaults()
	if cfg.Editor.AutosaveDelayMS <= 0 {
		cfg.Editor.AutosaveDelayMS = fallback.Editor.AutosaveDelayMS
	}
	if cfg.Editor.DragThresholdPX <= 0 {
		cfg.Editor.DragThresholdPX = fallback.Editor.DragThresholdPX
	}
	if cfg.Editor.SaveTimeout <= 0 {
		cfg.Editor.SaveTimeout = fallback.Editor.SaveTimeout
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.ReadTimeout = getEnvAsInt("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.DocumentsDBPath = getEnv("DOCS_DB_PATH", cfg.DocumentsDBPath)
	cfg.DocumentsMigration = getEnv("DOCS_MIGRATIONS", cfg.DocumentsMigration)
	cfg.DocumentsURL = getEnv("DOCUMENTS_URL", cfg.DocumentsURL)
	cfg.OpenAPIPath = getEnv("OPENAPI_PATH", cfg.OpenAPIPath)
	cfg.APITokens = getEnv("DOCS_API_TOKENS", cfg.APITokens)
	cfg.Editor.AutosaveDelayMS = getEnvAsInt("AUTOSAVE_DELAY_MS", cfg.Editor.AutosaveDelayMS)
	cfg.Editor.DragThresholdPX = getEnvAsFloat("DRAG_THRESHOLD_PX", cfg.Editor.DragThresholdPX)
	cfg.Editor.SaveTimeout = getEnvAsInt("SAVE_TIMEOUT", cfg.Editor.SaveTimeout)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultVal
}
