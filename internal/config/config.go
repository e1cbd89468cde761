package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
)

const (
	DefaultPath = "langsalary.yaml"

	MinPageDelay = 500 * time.Millisecond

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	LocaleEN = "en"
	LocaleRU = "ru"
)

// DefaultTerms are the languages searched when nothing else is configured
var DefaultTerms = []string{"Python", "Java", "Javascript", "C++", "C#", "Go", "Swift", "Kotlin", "Ruby", "PHP"}

type Config struct {
	Terms     []string `yaml:"terms"`
	AreaLabel string   `yaml:"area_label"`
	Locale    string   `yaml:"locale"`

	HeadHunter HeadHunterConfig `yaml:"headhunter"`
	SuperJob   SuperJobConfig   `yaml:"superjob"`

	PageCap         int           `yaml:"page_cap"`
	PageDelay       time.Duration `yaml:"page_delay"`
	RateLimitPerSec int           `yaml:"rate_limit_per_sec"`
	Workers         int           `yaml:"workers"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Proxy           string        `yaml:"proxy"`

	Cache CacheConfig `yaml:"cache"`
	NATS  NATSConfig  `yaml:"nats"`
	OTel  OTelConfig  `yaml:"otel"`

	HistoryPath     string `yaml:"history_path"`
	MetricsTextfile string `yaml:"metrics_textfile"`
}

type HeadHunterConfig struct {
	Enabled bool   `yaml:"enabled"`
	Area    int    `yaml:"area"`
	BaseURL string `yaml:"base_url"`
}

type SuperJobConfig struct {
	Enabled bool   `yaml:"enabled"`
	Town    int    `yaml:"town"`
	BaseURL string `yaml:"base_url"`
	// APIKey only comes from SUPERJOB_API_KEY
	APIKey string `yaml:"-"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type OTelConfig struct {
	CollectorURL string `yaml:"collector_url"`
}

// Default returns the configuration used when no file, env or flag says otherwise
func Default() *Config {
	return &Config{
		Terms:     append([]string(nil), DefaultTerms...),
		AreaLabel: "Moscow",
		Locale:    LocaleEN,
		HeadHunter: HeadHunterConfig{
			Enabled: true,
			Area:    1,
			BaseURL: "https://api.hh.ru/vacancies",
		},
		SuperJob: SuperJobConfig{
			Enabled: true,
			Town:    4,
			BaseURL: "https://api.superjob.ru/2.0/vacancies/",
		},
		PageCap:         20,
		PageDelay:       MinPageDelay,
		RateLimitPerSec: 5,
		Workers:         1,
		RequestTimeout:  30 * time.Second,
		Cache: CacheConfig{
			Backend:   CacheNone,
			TTL:       time.Hour,
			RedisAddr: "localhost:6379",
		},
		NATS: NATSConfig{
			Subject: "langsalary.reports",
		},
	}
}

// Load layers defaults, the YAML file and the environment (including .env).
// A missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return lserrors.InvalidInput(fmt.Sprintf("parsing %s", path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if terms := getEnvString("LANGSALARY_TERMS", ""); terms != "" {
		c.Terms = SplitTerms(terms)
	}
	c.AreaLabel = getEnvString("LANGSALARY_AREA_LABEL", c.AreaLabel)
	c.Locale = getEnvString("LANGSALARY_LOCALE", c.Locale)

	c.HeadHunter.Area = getEnvInt("HH_AREA", c.HeadHunter.Area)
	c.HeadHunter.BaseURL = getEnvString("HH_BASE_URL", c.HeadHunter.BaseURL)
	c.SuperJob.Town = getEnvInt("SJ_TOWN", c.SuperJob.Town)
	c.SuperJob.BaseURL = getEnvString("SJ_BASE_URL", c.SuperJob.BaseURL)
	c.SuperJob.APIKey = getEnvString("SUPERJOB_API_KEY", c.SuperJob.APIKey)

	c.PageCap = getEnvInt("LANGSALARY_PAGE_CAP", c.PageCap)
	c.PageDelay = getEnvDuration("LANGSALARY_PAGE_DELAY", c.PageDelay)
	c.RateLimitPerSec = getEnvInt("LANGSALARY_RATE_LIMIT", c.RateLimitPerSec)
	c.Workers = getEnvInt("LANGSALARY_WORKERS", c.Workers)
	c.RequestTimeout = getEnvDuration("LANGSALARY_REQUEST_TIMEOUT", c.RequestTimeout)
	c.Proxy = getEnvString("LANGSALARY_PROXY", c.Proxy)

	c.Cache.Backend = getEnvString("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisAddr = getEnvString("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnvString("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)

	c.NATS.URL = getEnvString("NATS_URL", c.NATS.URL)
	c.NATS.Subject = getEnvString("NATS_SUBJECT", c.NATS.Subject)
	c.OTel.CollectorURL = getEnvString("OTEL_COLLECTOR_URL", c.OTel.CollectorURL)

	c.HistoryPath = getEnvString("LANGSALARY_HISTORY", c.HistoryPath)
	c.MetricsTextfile = getEnvString("LANGSALARY_METRICS_FILE", c.MetricsTextfile)
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	if len(c.Terms) == 0 {
		return lserrors.InvalidInput("at least one search term is required", nil)
	}
	if !c.HeadHunter.Enabled && !c.SuperJob.Enabled {
		return lserrors.InvalidInput("no source enabled", nil)
	}
	if c.SuperJob.Enabled && strings.TrimSpace(c.SuperJob.APIKey) == "" {
		return lserrors.InvalidInput("SUPERJOB_API_KEY is required when superjob is enabled", nil)
	}
	if c.PageCap < 1 {
		return lserrors.InvalidInput(fmt.Sprintf("page cap must be at least 1, got %d", c.PageCap), nil)
	}
	if c.PageDelay < MinPageDelay {
		return lserrors.InvalidInput(fmt.Sprintf("page delay must be at least %s, got %s", MinPageDelay, c.PageDelay), nil)
	}
	if c.Workers < 1 {
		return lserrors.InvalidInput(fmt.Sprintf("workers must be at least 1, got %d", c.Workers), nil)
	}
	if c.RequestTimeout <= 0 {
		return lserrors.InvalidInput("request timeout must be positive", nil)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return lserrors.InvalidInput(fmt.Sprintf("unknown cache backend %q", c.Cache.Backend), nil)
	}
	switch c.Locale {
	case LocaleEN, LocaleRU:
	default:
		return lserrors.InvalidInput(fmt.Sprintf("unknown locale %q", c.Locale), nil)
	}
	return nil
}

// SplitTerms splits a comma separated list, dropping blanks and repeats
func SplitTerms(s string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, term := range strings.Split(s, ",") {
		if term = strings.TrimSpace(term); term != "" && !seen[term] {
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
