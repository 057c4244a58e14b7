package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI            string
	RedisURL            string
	ServerPort          string
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPass            string
	AdminEmail          string
	FirebaseCredentials string
}

// LoadConfig подгружает переменные окружения из .env
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		MongoURI:            os.Getenv("MONGO_URI"),
		RedisURL:            os.Getenv("REDIS_URL"),
		ServerPort:          os.Getenv("SERVER_PORT"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            smtpPort,
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
	}, nil
}
