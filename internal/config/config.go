package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI   string
	MongoDB    string
	RedisURL   string
	JWTSecret  string
	ServerPort string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	// RejectOthersOnSelect controls what happens to the other applicants
	// when an employer selects a freelancer: explicitly rejected (default)
	// or left pending.
	RejectOthersOnSelect bool
}

func LoadConfig() (*Config, error) {
	// .env is optional in containerized deployments
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnv("MONGO_DB", "freelance_app"),
		RedisURL:             os.Getenv("REDIS_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		ServerPort:           getEnv("SERVER_PORT", ":8080"),
		SMTPHost:             os.Getenv("SMTP_HOST"),
		SMTPPort:             os.Getenv("SMTP_PORT"),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		RejectOthersOnSelect: getEnv("REJECT_OTHERS_ON_SELECT", "true") != "false",
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
