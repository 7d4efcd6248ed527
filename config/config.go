package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendDynamo = "dynamodb"
	BackendMemory = "memory"
)

// Config is everything the server reads from the environment
type Config struct {
	Port               string
	AWSRegion          string
	StoreBackend       string
	UsersTable         string
	ChatsTable         string
	MessagesTable      string
	S3Bucket           string
	MatchMaxAttempts   int
	BatchMatchInterval time.Duration // zero disables the scheduled sweep
	AllowedOrigins     []string
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds the config from the environment alone
func FromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendDynamo)),
		UsersTable:         getEnv("USERS_TABLE", "Users"),
		ChatsTable:         getEnv("CHATS_TABLE", "Chats"),
		MessagesTable:      getEnv("MESSAGES_TABLE", "Messages"),
		S3Bucket:           os.Getenv("S3_BUCKET_NAME"),
		MatchMaxAttempts:   getInt("MATCH_MAX_ATTEMPTS", 5),
		BatchMatchInterval: getDuration("BATCH_MATCH_INTERVAL", 0),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		log.Printf("⚠️  Ignoring invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		log.Printf("⚠️  Ignoring invalid %s=%q", key, raw)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
