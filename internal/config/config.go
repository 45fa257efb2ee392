package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort  string
	LogLevel string

	MySQLHost   string
	MySQLPort   string
	MySQLDB     string
	MySQLUser   string
	MySQLPass   string
	AutoMigrate bool

	// empty disables idempotency, RedLock, the plan cache and notifications
	RedisAddr string
	RedisDB   int

	IdempTTLSecs      int
	WalletLockTimeout time.Duration
	WalletLockExpiry  time.Duration
	FundPlanCacheTTL  time.Duration
	NotifyChannel     string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	OpsEmail string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := time.ParseDuration(v); err == nil && n > 0 {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return d
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		AppPort:     getenv("APP_PORT", "8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		MySQLHost:   getenv("MYSQL_HOST", "mysql"),
		MySQLPort:   getenv("MYSQL_PORT", "3306"),
		MySQLDB:     getenv("MYSQL_DB", "fund_ledger"),
		MySQLUser:   getenv("MYSQL_USER", "ledger"),
		MySQLPass:   getenv("MYSQL_PASS", "ledger"),
		AutoMigrate: getbool("AUTO_MIGRATE", false),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:      getint("IDEMPOTENCY_TTL_SECONDS", 300),
		WalletLockTimeout: getduration("WALLET_LOCK_TIMEOUT", 3*time.Second),
		WalletLockExpiry:  getduration("WALLET_LOCK_EXPIRY", 15*time.Second),
		FundPlanCacheTTL:  getduration("FUND_PLAN_CACHE_TTL", 60*time.Second),
		NotifyChannel:     getenv("NOTIFY_CHANNEL", "investor_notifications"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getenv("SMTP_PORT", "465"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		OpsEmail: getenv("OPS_EMAIL", "ops@localhost"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.SMTPHost != "" {
		if _, err := net.LookupPort("tcp", c.SMTPPort); err != nil {
			return fmt.Errorf("invalid SMTP_PORT %q: %w", c.SMTPPort, err)
		}
	}
	if c.WalletLockExpiry <= c.WalletLockTimeout {
		return fmt.Errorf("WALLET_LOCK_EXPIRY (%s) must exceed WALLET_LOCK_TIMEOUT (%s)", c.WalletLockExpiry, c.WalletLockTimeout)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps ledger timestamps unshifted
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
