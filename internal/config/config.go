package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string
	BaseURL    string

	MySQLDSN string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	UploadDir   string

	StaleDraftDays      int
	OrphanRetentionDays int
	SwaggerHost         string
	LogLevel            string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/fieldtrack?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "noreply@fieldtrack.local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("STALE_DRAFT_DAYS", 3)
	v.SetDefault("ORPHAN_RETENTION_DAYS", 7)
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Env:        v.GetString("APP_ENV"),
		ServerPort: v.GetString("SERVER_PORT"),
		BaseURL:    strings.TrimRight(v.GetString("BASE_URL"), "/"),

		MySQLDSN: v.GetString("MYSQL_DSN"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),
		RedisPass: v.GetString("REDIS_PASSWORD"),

		JWTSecret: v.GetString("JWT_SECRET"),

		SMTPHost: v.GetString("SMTP_HOST"),
		SMTPPort: v.GetInt("SMTP_PORT"),
		SMTPUser: v.GetString("SMTP_USER"),
		SMTPPass: v.GetString("SMTP_PASSWORD"),
		MailFrom: v.GetString("MAIL_FROM"),

		S3Region:    v.GetString("S3_REGION"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),
		UploadDir:   v.GetString("UPLOAD_DIR"),

		StaleDraftDays:      v.GetInt("STALE_DRAFT_DAYS"),
		OrphanRetentionDays: v.GetInt("ORPHAN_RETENTION_DAYS"),
		SwaggerHost:         v.GetString("SWAGGER_HOST"),
		LogLevel:            v.GetString("LOG_LEVEL"),
	}
}

// S3Configured reports whether the S3 backend should be used: bucket and
// credentials all present and not left as placeholders.
func (c *Config) S3Configured() bool {
	for _, v := range []string{c.S3Bucket, c.S3AccessKey, c.S3SecretKey} {
		if v == "" || strings.HasPrefix(v, "your-") || strings.HasPrefix(v, "change-") {
			return false
		}
	}
	return true
}
