package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/taskflow/internal/progression"
)

type Config struct {
	Port string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBQueryTimeout time.Duration
	DBConnLifetime time.Duration

	AMQPURL   string
	RedisAddr string

	RateLimit       int
	RateLimitWindow time.Duration

	JWTSecret string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string
	AppURL   string

	LevelTablePath    string
	StaleLeadAfter    time.Duration
	StaleLeadSchedule string

	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	// TrustProxy liga o chi RealIP; só com um proxy na frente que sobrescreve os headers.
	TrustProxy  bool
}

// Load lê o .env (se existir) e depois o ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv monta a Config a partir de uma função de lookup, o que deixa os testes
// livres de mexer no ambiente do processo.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:              p.str("PORT", "8080"),
		DatabaseURL:       p.str("DATABASE_URL", ""),
		DBMaxOpenConns:    p.int("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    p.int("DB_MAX_IDLE_CONNS", 5),
		DBQueryTimeout:    p.duration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBConnLifetime:    p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AMQPURL:           p.str("AMQP_URL", ""),
		RedisAddr:         p.str("REDIS_ADDR", ""),
		RateLimit:         p.int("RATE_LIMIT", 60),
		RateLimitWindow:   p.duration("RATE_LIMIT_WINDOW", time.Minute),
		JWTSecret:         p.str("JWT_SECRET", ""),
		MailHost:          p.str("MAIL_HOST", ""),
		MailPort:          p.int("MAIL_PORT", 587),
		MailUser:          p.str("MAIL_USER", ""),
		MailPass:          p.str("MAIL_PASS", ""),
		MailFrom:          p.str("MAIL_FROM", ""),
		AppURL:            p.str("APP_URL", "http://localhost:5173"),
		LevelTablePath:    p.str("LEVEL_TABLE_PATH", ""),
		StaleLeadAfter:    p.duration("STALE_LEAD_AFTER", 90*24*time.Hour),
		StaleLeadSchedule: p.str("STALE_LEAD_SCHEDULE", "@every 1h"),
		LogLevel:          p.str("LOG_LEVEL", "info"),
		LogFormat:         p.str("LOG_FORMAT", "json"),
		CORSOrigins:       p.list("CORS_ORIGINS", []string{"*"}),
		TrustProxy:        p.bool("TRUST_PROXY", false),
	}

	if p.err != nil {
		return nil, p.err
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.MailUser
	}
	return cfg, nil
}

// LevelTable devolve a tabela padrão ou a carregada de LEVEL_TABLE_PATH.
func (c *Config) LevelTable() (*progression.Table, error) {
	if c.LevelTablePath == "" {
		return progression.DefaultTable(), nil
	}
	return progression.LoadTable(c.LevelTablePath)
}

// parser guarda o primeiro erro de conversão
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: invalid %s=%q: %w", key, value, err)
	}
}
