package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. When a .env
// file path is given via -e/-env (or ./.env exists), it is loaded first
// without overriding variables already present in the environment.
//
// Recognized variables:
//
//	ADDRESS              HTTP bind address
//	DATABASE_DSN         PostgreSQL DSN
//	SECRET_KEY           JWT HMAC secret
//	SESSION_TTL_HOURS    session validity, hours
//	S3_ACCESS_KEY        object store access key
//	S3_SECRET_KEY        object store secret key
//	S3_BUCKET            bucket name
//	S3_REGION            region
//	S3_ENDPOINT          base endpoint (e.g. a local MinIO)
//	UPLOAD_URL_TTL_SEC   presigned PUT lifetime, seconds
//	DOWNLOAD_URL_TTL_SEC presigned GET lifetime, seconds
//	LOG_FORMAT           "json" or "text"
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile == "" {
		if _, err := os.Stat(".env"); err == nil {
			envFile = ".env"
		}
	}
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	setStr := func(name string, target *string) {
		if v, ok := os.LookupEnv(name); ok {
			*target = v
		}
	}

	setStr("ADDRESS", &config.EndpointAddr)
	setStr("DATABASE_DSN", &config.DatabaseDSN)
	setStr("SECRET_KEY", &config.SecretKey)
	setStr("S3_ACCESS_KEY", &config.S3AccessKey)
	setStr("S3_SECRET_KEY", &config.S3SecretKey)
	setStr("S3_BUCKET", &config.S3Bucket)
	setStr("S3_REGION", &config.S3Region)
	setStr("S3_ENDPOINT", &config.S3BaseEndpoint)
	setStr("LOG_FORMAT", &config.LogFormat)

	if v, ok := os.LookupEnv("SESSION_TTL_HOURS"); ok {
		if h, err := strconv.Atoi(v); err == nil {
			config.SessionValidityDuration = time.Duration(h) * time.Hour
		}
	}
	if v, ok := os.LookupEnv("UPLOAD_URL_TTL_SEC"); ok {
		if s, err := strconv.Atoi(v); err == nil {
			config.UploadURLTTL = time.Duration(s) * time.Second
		}
	}
	if v, ok := os.LookupEnv("DOWNLOAD_URL_TTL_SEC"); ok {
		if s, err := strconv.Atoi(v); err == nil {
			config.DownloadURLTTL = time.Duration(s) * time.Second
		}
	}
}
