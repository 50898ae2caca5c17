package nutrilog

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/app"
	"github.com/saadjs/nutrilog/internal/stats"
)

var (
	dbPath     string
	configPath string
	timezone   string
)

var rootCmd = &cobra.Command{
	Use:           "nutrilog",
	Short:         "nutrilog tracks meals, calories and macros against personal goals",
	Long:          "nutrilog is a local-first nutrition tracker: log meals by hand, by barcode or by AI estimate, and follow your streaks against goals calculated from your profile.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&timezone, "tz", "", "IANA timezone for day boundaries (overrides config)")
}

func loadConfig() (*app.Config, error) {
	return app.LoadConfig(configPath)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

// resolveDBPath prefers --db, then db_path from config, then the default location.
func resolveDBPath(cfg *app.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func newClock(cfg *app.Config) (*stats.LocalCalendarClock, error) {
	zone := timezone
	if zone == "" && cfg != nil {
		zone = cfg.Timezone
	}
	return stats.NewLocalCalendarClock(zone)
}
