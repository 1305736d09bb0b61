package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	DatabaseDSN string
	CorsOrigin  string

	AccessSecret       string
	AccessTokenExpiry  time.Duration
	RefreshSecret      string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool
	// keep the refresh token alive across password changes unless set
	RevokeSessionsOnPasswordChange bool

	CloudinaryUrl    string
	CloudinaryFolder string
	UploadMaxBytes   int64
	ImageMaxWidth    int
	ImageMaxPixels   int
	ImageJPEGQuality int

	// empty lets the docs UI use the host it was served from
	SwaggerHost    string
	SwaggerSchemes []string

	KafkaBroker     string
	KafkaTopic      string
	KafkaWatchTopic string
	KafkaGroupID    string
	KafkaUsername   string
	KafkaPassword   string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:  envOr("SERVER_PORT", ":8000"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),
		CorsOrigin:  envOr("CORS_ORIGIN", "*"),

		AccessSecret:                   os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:              envDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshSecret:                  os.Getenv("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry:             envDuration("REFRESH_TOKEN_EXPIRY", 240*time.Hour),
		CookieSecure:                   envBool("COOKIE_SECURE", true),
		RevokeSessionsOnPasswordChange: envBool("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false),

		CloudinaryUrl:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: envOr("CLOUDINARY_FOLDER", "channel"),
		UploadMaxBytes:   int64(envInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		ImageMaxWidth:    envInt("IMAGE_MAX_WIDTH", 1280),
		ImageMaxPixels:   envInt("IMAGE_MAX_PIXELS", 40_000_000),
		ImageJPEGQuality: envInt("IMAGE_JPEG_QUALITY", 85),

		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
		SwaggerSchemes: envList("SWAGGER_SCHEMES"),

		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		KafkaTopic:      envOr("KAFKA_TOPIC", "account-events"),
		KafkaWatchTopic: os.Getenv("KAFKA_WATCH_TOPIC"),
		KafkaGroupID:    envOr("KAFKA_GROUP_ID", "channel-service"),
		KafkaUsername:   os.Getenv("KAFKA_USERNAME"),
		KafkaPassword:   os.Getenv("KAFKA_PASSWORD"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		return errors.New("token expiry must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
