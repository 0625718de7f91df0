package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	SessionTTL            time.Duration
	ManagerLinkSecret     string
	ManagerLinkTTL        time.Duration
	PublicBaseURL         string
	AdminWindowCode       string
	AllowedOrigins        []string
	FrontendDir           string
	Environment           string
	SeedAdminEmail        string
	SeedAdminPassword     string
	RunMigrations         bool
	RunSeed               bool
	MigrationsDir         string
	ReferenceDataFile     string
	RedisURL              string
	ReportCacheTTL        time.Duration
	MetricsEnabled        bool
	MaxBodyBytes          int64
	RateLimitPerMinute    int
	RequestTimeout        time.Duration
	DefaultPeriod         string
	DefaultSalaryRegion   string
	DefaultSalaryYear     int
	DefaultEvaluationYear int
	RecomputeOnWeights    bool
	PDIThreshold          float64
	RecognitionThreshold  float64
}

// Load reads the process environment, after an optional .env file.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		SessionTTL:            getEnvDuration("SESSION_TTL", 8*time.Hour),
		ManagerLinkSecret:     getEnv("MANAGER_LINK_SECRET", ""),
		ManagerLinkTTL:        getEnvDuration("MANAGER_LINK_TTL", 30*24*time.Hour),
		PublicBaseURL:         getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		AdminWindowCode:       strings.TrimSpace(getEnv("ADMIN_WINDOW_CODE", "")),
		AllowedOrigins:        getEnvList("ALLOWED_ORIGINS", []string{"https://gestor.thehrkey.tech"}),
		FrontendDir:           getEnv("FRONTEND_DIR", "frontend/dist"),
		Environment:           getEnv("APP_ENV", "development"),
		SeedAdminEmail:        getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:     getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:               getEnvBool("RUN_SEED", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		ReferenceDataFile:     getEnv("REFERENCE_DATA_FILE", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		ReportCacheTTL:        getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RequestTimeout:        getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		DefaultPeriod:         getEnv("EVALUATION_PERIOD_DEFAULT", "102025"),
		DefaultSalaryRegion:   getEnv("DEFAULT_SALARY_REGION", "R1"),
		DefaultSalaryYear:     getEnvInt("DEFAULT_SALARY_YEAR", 2025),
		DefaultEvaluationYear: getEnvInt("DEFAULT_EVALUATION_YEAR", 2025),
		RecomputeOnWeights:    getEnvBool("RECOMPUTE_ON_WEIGHT_CHANGE", false),
		PDIThreshold:          getEnvFloat("PDI_THRESHOLD", 3.0),
		RecognitionThreshold:  getEnvFloat("RECOGNITION_THRESHOLD", 4.5),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.ManagerLinkSecret) == "" {
			return fmt.Errorf("MANAGER_LINK_SECRET must be set in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminEmail) != "" && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.PDIThreshold >= c.RecognitionThreshold {
		return fmt.Errorf("PDI_THRESHOLD must be below RECOGNITION_THRESHOLD")
	}
	if !validPeriod(c.DefaultPeriod) {
		return fmt.Errorf("EVALUATION_PERIOD_DEFAULT must use MMYYYY")
	}
	return nil
}

func validPeriod(p string) bool {
	if len(p) != 6 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
