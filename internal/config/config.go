package config

import (
	"os"
	"strconv"
	"time"

	"rps_api/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	// Classifier API
	ClassifierURL     string
	ClassifierSecret  string
	ClassifierTimeout time.Duration

	// Blob storage: "local" or "s3"
	StorageBackend string
	UploadDir      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	// Upload limits
	MaxImageSize int64

	// Rate limiting
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// Load reads the config from env. Missing required values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	classifierURL := os.Getenv("CLASSIFIER_URL")
	if classifierURL == "" {
		logger.Fatal("CLASSIFIER_URL is not set")
	}

	classifierSecret := os.Getenv("CLASSIFIER_JWT_SECRET")
	if classifierSecret == "" {
		// single shared secret deployments reuse the API secret
		classifierSecret = jwtSecret
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	storageBackend := os.Getenv("STORAGE_BACKEND")
	if storageBackend == "" {
		storageBackend = "local"
	}
	if storageBackend != "local" && storageBackend != "s3" {
		logger.Fatal("STORAGE_BACKEND must be local or s3", "got", storageBackend)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	maxImageSize := int64(5 << 20) // 5 MiB
	if v := os.Getenv("MAX_IMAGE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxImageSize = n
		}
	}

	classifierTimeout := 30 * time.Second
	if v := os.Getenv("CLASSIFIER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			classifierTimeout = time.Duration(n) * time.Second
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	submitRateLimit := 30
	if v := os.Getenv("SUBMIT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			submitRateLimit = n
		}
	}

	submitRateWindow := time.Minute
	if v := os.Getenv("SUBMIT_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			submitRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:           port,
		DatabaseURL:       dbURL,
		JWTSecret:         jwtSecret,
		ClassifierURL:     classifierURL,
		ClassifierSecret:  classifierSecret,
		ClassifierTimeout: classifierTimeout,
		StorageBackend:    storageBackend,
		UploadDir:         uploadDir,
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          os.Getenv("S3_REGION"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:       os.Getenv("S3_SECRET_ACCESS_KEY"),
		MaxImageSize:      maxImageSize,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		SubmitRateLimit:   submitRateLimit,
		SubmitRateWindow:  submitRateWindow,
	}
}
