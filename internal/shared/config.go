package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration
	BulkTimeout time.Duration

	StorageDriver string // mysql | memory
	MySQLDSN      string
	AutoMigrate   bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailRPS      int
	Workers      int

	PublicSiteURL  string
	ExportLogoPath string

	MediaCloudName string
	MediaAPIKey    string
	MediaAPISecret string
	MediaFolder    string

	AdminJWTSecret    string
	AdminOIDCIssuer   string
	AdminOIDCClientID string

	KafkaBrokers []string
	KafkaTopic   string

	TelegramToken  string
	TelegramChatID int64
}

// Load reads the environment, after an optional .env in the working dir.
// Integrations left unset are only reported here; the operation that needs
// them fails when called.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		BulkTimeout: time.Duration(atoi("BULK_TIMEOUT_SECONDS", 300)) * time.Second,

		StorageDriver: strings.ToLower(env("STORAGE_DRIVER", "mysql")),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/safari?parseTime=true&charset=utf8mb4&loc=UTC"),
		AutoMigrate:   env("AUTO_MIGRATE", "false") == "true",

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		SMTPHost:     env("SMTP_HOST", ""),
		SMTPPort:     atoi("SMTP_PORT", 587),
		SMTPUsername: env("SMTP_USERNAME", ""),
		SMTPPassword: env("SMTP_PASSWORD", ""),
		MailFrom:     env("MAIL_FROM", ""),
		MailRPS:      atoi("MAIL_RPS", 5),
		Workers:      atoi("NOTIFY_WORKERS", 4),

		PublicSiteURL:  strings.TrimRight(env("PUBLIC_SITE_URL", ""), "/"),
		ExportLogoPath: env("EXPORT_LOGO_PATH", ""),

		MediaCloudName: env("MEDIA_CLOUD_NAME", ""),
		MediaAPIKey:    env("MEDIA_API_KEY", ""),
		MediaAPISecret: env("MEDIA_API_SECRET", ""),
		MediaFolder:    env("MEDIA_FOLDER", "safari"),

		AdminJWTSecret:    env("ADMIN_JWT_SECRET", ""),
		AdminOIDCIssuer:   env("ADMIN_OIDC_ISSUER", ""),
		AdminOIDCClientID: env("ADMIN_OIDC_CLIENT_ID", ""),

		KafkaBrokers: list(env("KAFKA_BROKERS", "")),
		KafkaTopic:   env("KAFKA_BOOKING_TOPIC", "safari.bookings"),

		TelegramToken:  env("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: int64(atoi("TELEGRAM_CHAT_ID", 0)),
	}
	if c.SMTPHost == "" || c.MailFrom == "" {
		log.Warn().Msg("SMTP_HOST/MAIL_FROM empty; customer emails will fail")
	}
	if c.PublicSiteURL == "" {
		log.Warn().Msg("PUBLIC_SITE_URL is empty; customer emails are sent without a link to the site")
	}
	if c.AdminJWTSecret == "" && c.AdminOIDCIssuer == "" {
		log.Warn().Msg("no admin token verifier configured; every admin request will be rejected")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
