package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "CACHE_TTL_SECONDS", "KAFKA_BROKERS", "NOTIFY_WORKERS", "PUBLIC_SITE_URL", "HTTP_TIMEOUT_SECONDS", "BULK_TIMEOUT_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.StorageDriver != "mysql" || c.CacheTTL != 300*time.Second || c.Workers != 4 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.KafkaBrokers != nil {
		t.Fatalf("brokers = %v", c.KafkaBrokers)
	}
	if c.HTTPTimeout != 15*time.Second || c.BulkTimeout != 300*time.Second {
		t.Fatalf("timeouts = %s / %s", c.HTTPTimeout, c.BulkTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("MAIL_RPS", "3")
	t.Setenv("PUBLIC_SITE_URL", "https://safari.example/")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("BULK_TIMEOUT_SECONDS", "90")
	t.Setenv("EXPORT_LOGO_PATH", "/etc/safari/logo.png")

	c := Load()
	if c.StorageDriver != "memory" {
		t.Fatalf("driver = %q", c.StorageDriver)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", c.KafkaBrokers)
	}
	if c.SMTPPort != 587 || c.MailRPS != 3 {
		t.Fatalf("smtp port = %d, rps = %v", c.SMTPPort, c.MailRPS)
	}
	if c.PublicSiteURL != "https://safari.example" || c.TelegramChatID != -100123 {
		t.Fatalf("site = %q chat = %d", c.PublicSiteURL, c.TelegramChatID)
	}
	if c.BulkTimeout != 90*time.Second || c.ExportLogoPath != "/etc/safari/logo.png" {
		t.Fatalf("bulk timeout = %s logo = %q", c.BulkTimeout, c.ExportLogoPath)
	}
}
