package config

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken      string
	DBFile        string
	SuperAdminID  int64
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionTTL    time.Duration
}

// fileConfig mirrors the JSON configuration document that supplies the
// database file path.
type fileConfig struct {
	DBConfig struct {
		DBFile string `json:"db_file"`
	} `json:"db_config"`
}

const (
	defaultConfigFile = "resources/config.json"
	defaultDBFile     = "resources/db/invitations.db"
)

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		DBFile:        defaultDBFile,
		SuperAdminID:  0,
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionTTL:    24 * time.Hour,
	}

	configFile := getEnv("BOT_CONFIG_FILE", defaultConfigFile)
	data, err := os.ReadFile(configFile)
	if err != nil {
		log.Printf("Config file %s not readable, using defaults: %v", configFile, err)
		return cfg
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		log.Printf("Config file %s is not valid JSON, using defaults: %v", configFile, err)
		return cfg
	}
	if fc.DBConfig.DBFile != "" {
		cfg.DBFile = fc.DBConfig.DBFile
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
