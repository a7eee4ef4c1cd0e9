// Command DialogCore serves the dialog manager over HTTP and offers a local
// chat loop and a content validator.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel string
	stateDir string
	dbDSN    string
	apiAddr  string
	seed     uint64

	// cfg is filled in PersistentPreRunE before any subcommand runs.
	cfg Config
)

var rootCmd = &cobra.Command{
	Use:   "DialogCore",
	Short: "DialogCore - open-domain social dialog manager",
	Long: `DialogCore runs multi-turn social conversations. Each turn the user's
utterance is annotated, every response generator proposes a reply and the
arbiter picks one response and at most one prompt.

Configuration is read from the environment (and a .env file); flags
override the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = loadEnvironmentConfig()
		applyFlags(cmd, &cfg)
		initializeLogger(cfg.LogLevel)
		slog.Debug("Configuration loaded", "state_dir", cfg.StateDir, "db_type", dbType(cfg.DSN()),
			"api_addr", cfg.APIAddr, "neo4j", cfg.Neo4jURI != "", "redis", cfg.RedisAddr != "", "genai", cfg.OpenAIKey != "")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env DIALOGCORE_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "state directory for the default SQLite database (env DIALOGCORE_STATE_DIR)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "database DSN: PostgreSQL URL, SQLite path or \"memory\" (env DATABASE_DSN)")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", "", "HTTP listen address (env DIALOGCORE_API_ADDR)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "fix the random source of every turn (env DIALOGCORE_SEED)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(validateCmd)
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, c *Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("state-dir") {
		c.StateDir = stateDir
	}
	if flags.Changed("db") {
		c.DatabaseDSN = dbDSN
	}
	if flags.Changed("addr") {
		c.APIAddr = apiAddr
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
