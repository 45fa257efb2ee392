package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "REDIS_ADDR", "WALLET_LOCK_TIMEOUT", "AUTO_MIGRATE", "IDEMPOTENCY_TTL_SECONDS", "SMTP_HOST"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" {
		t.Fatalf("AppPort = %q", c.AppPort)
	}
	if c.RedisAddr != "" {
		t.Fatalf("redis must be opt-in, got %q", c.RedisAddr)
	}
	if c.WalletLockTimeout != 3*time.Second || c.WalletLockExpiry != 15*time.Second {
		t.Fatalf("lock durations = %s/%s", c.WalletLockTimeout, c.WalletLockExpiry)
	}
	if c.FundPlanCacheTTL != time.Minute || c.IdempotencyTTL() != 5*time.Minute {
		t.Fatalf("ttl defaults = %s/%s", c.FundPlanCacheTTL, c.IdempotencyTTL())
	}
	if c.AutoMigrate {
		t.Fatalf("AUTO_MIGRATE should default to false")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("WALLET_LOCK_TIMEOUT", "500ms")
	t.Setenv("WALLET_LOCK_EXPIRY", "bogus")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "30")

	c := Load()
	if c.RedisAddr != "localhost:6379" || c.RedisDB != 2 {
		t.Fatalf("redis = %q/%d", c.RedisAddr, c.RedisDB)
	}
	if c.WalletLockTimeout != 500*time.Millisecond {
		t.Fatalf("timeout = %s", c.WalletLockTimeout)
	}
	if c.WalletLockExpiry != 15*time.Second {
		t.Fatalf("unparseable duration should keep default, got %s", c.WalletLockExpiry)
	}
	if !c.AutoMigrate || c.IdempotencyTTL() != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Setenv("SMTP_HOST", "")
		return Load()
	}

	c := base()
	c.MySQLHost = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("missing host should fail")
	}

	c = base()
	c.MySQLPort = "not-a-port"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "MYSQL_PORT") {
		t.Fatalf("bad port should fail, got %v", err)
	}

	c = base()
	c.WalletLockExpiry = c.WalletLockTimeout
	if err := c.Validate(); err == nil {
		t.Fatalf("expiry must exceed timeout")
	}

	c = base()
	c.SMTPHost, c.SMTPPort = "smtp.example.com", "nope"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "SMTP_PORT") {
		t.Fatalf("bad smtp port should fail, got %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "ledger"}
	got := c.MySQLDSN()
	if !strings.HasPrefix(got, "u:p@tcp(db:3306)/ledger?") || !strings.Contains(got, "parseTime=true") {
		t.Fatalf("dsn = %q", got)
	}
}
