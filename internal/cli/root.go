package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hrkey/internal/app/server"
	"hrkey/internal/platform/cache"
	"hrkey/internal/platform/config"
	"hrkey/internal/platform/db"
)

var rootCmd = &cobra.Command{
	Use:   "hrkeyctl",
	Short: "Operate the HR Key evaluation service",
	Long: `hrkeyctl runs maintenance tasks against the HR Key database:
schema migrations, seed data, score recomputation, manager links and
report exports. Settings come from the environment (and .env), and any
flag overrides its environment variable.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "Postgres URL (DATABASE_URL)")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for report cache invalidation (REDIS_URL)")
	rootCmd.PersistentFlags().String("migrations-dir", "", "migration directory (MIGRATIONS_DIR)")

	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("redis_url", rootCmd.PersistentFlags().Lookup("redis-url"))
	_ = viper.BindPFlag("migrations_dir", rootCmd.PersistentFlags().Lookup("migrations-dir"))
	viper.SetEnvPrefix("HRKEY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(migrateCmd, seedCmd, recomputeCmd, managerLinkCmd, nineBoxCmd, meritPDFCmd)
}

func initConfig() {
	for _, path := range []string{".hrkeyctl.yaml", ".hrkeyctl.yml"} {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "error reading config file: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() config.Config {
	cfg := config.Load()
	if v := viper.GetString("database_url"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := viper.GetString("redis_url"); v != "" {
		cfg.RedisURL = v
	}
	if v := viper.GetString("migrations_dir"); v != "" {
		cfg.MigrationsDir = v
	}
	return cfg
}

type env struct {
	cfg      config.Config
	pool     *pgxpool.Pool
	cache    *cache.Client
	services *server.Services
}

func (e *env) Close() {
	_ = e.cache.Close()
	e.pool.Close()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg := loadConfig()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	reportCache, err := cache.Connect(ctx, cfg.RedisURL, cfg.ReportCacheTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: report cache disabled: %v\n", err)
		reportCache = nil
	}
	return &env{
		cfg:      cfg,
		pool:     pool,
		cache:    reportCache,
		services: server.NewServices(cfg, pool, reportCache, nil),
	}, nil
}
