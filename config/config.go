package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mongo struct {
	URI          string
	Database     string
	Transactions bool
}

type Cloudinary struct {
	URL    string
	Folder string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type VAPID struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

type Config struct {
	Port           int
	GinMode        string
	JWTSecret      string
	JWTExpiresIn   time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
	LogLevel       string
	LogFormat      string
	MaxUploadSize  int64

	Mongo      Mongo
	Cloudinary Cloudinary
	MinIO      MinIO
	VAPID      VAPID

	// EnvFileErr is set when .env could not be loaded. Values then come
	// from the process environment only.
	EnvFileErr error
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseDuration accepts Go durations ("100h", "90s") and bare integers,
// which are read as seconds. Non-positive values fall back.
func parseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func parseSize(value string, fallback int64) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return fallback
	}
	return size
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadMongo() Mongo {
	return Mongo{
		URI:          getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		Database:     getEnv("MONGODB_DATABASE", "socialapi"),
		Transactions: getEnvBool("MONGODB_TRANSACTIONS", true),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:   getEnv("MINIO_ENDPOINT", ""),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		BucketName: getEnv("MINIO_BUCKET", "media"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
	}
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	envErr := godotenv.Load()

	return &Config{
		EnvFileErr:     envErr,
		Port:           getEnvAsInt("PORT", 5000),
		GinMode:        getEnv("GIN_MODE", "debug"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiresIn:   parseDuration(getEnv("JWT_EXPIRES_IN", ""), 360000*time.Second),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", ""), 10*time.Second),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AuthRateLimit:  getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: parseDuration(getEnv("AUTH_RATE_WINDOW", ""), time.Minute),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		MaxUploadSize:  parseSize(getEnv("MEDIA_MAX_SIZE", ""), 10*1024*1024),
		Mongo:          LoadMongo(),
		Cloudinary: Cloudinary{
			URL:    getEnv("CLOUDINARY_URL", ""),
			Folder: getEnv("CLOUDINARY_FOLDER", "socialapi"),
		},
		MinIO: LoadMinIO(),
		VAPID: VAPID{
			PublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
			PrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
			Subscriber: getEnv("VAPID_SUBSCRIBER", "mailto:admin@example.com"),
		},
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	return nil
}

func (c *Config) PushEnabled() bool {
	return c.VAPID.PublicKey != "" && c.VAPID.PrivateKey != ""
}
