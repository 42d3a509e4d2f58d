// Package cmd provides the command-line interface of vplat.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vplat/platform"
)

// Environment variables that provide default flag values. They can also be
// set in a .env file.
const (
	EnvConfig      = "VPLAT_CONFIG"
	EnvMonitorPort = "VPLAT_MONITOR_PORT"
	EnvTraceDB     = "VPLAT_TRACE_DB"
	EnvClickHouse  = "VPLAT_CLICKHOUSE"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vplat",
	Short: "vplat builds and runs virtual platforms.",
	Long: `vplat builds a virtual platform made of memories, routers and ` +
		`traffic generators from a YAML description, and runs it.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func init() {
	rootCmd.PersistentFlags().String("config", "",
		"platform description; defaults to $"+EnvConfig)
	rootCmd.PersistentFlags().String("env-file", ".env",
		"file that provides default environment variables")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func loadEnv(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func loadPlatformConfig(cmd *cobra.Command) (*platform.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		return nil, fmt.Errorf("no platform description, use --config or $%s",
			EnvConfig)
	}

	return platform.LoadConfig(path)
}

func stringFlagOrEnv(cmd *cobra.Command, flag, env string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}

	if v := os.Getenv(env); v != "" {
		return v
	}

	v, _ := cmd.Flags().GetString(flag)

	return v
}

func intFlagOrEnv(cmd *cobra.Command, flag, env string) (int, error) {
	if !cmd.Flags().Changed(flag) {
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("$%s: %w", env, err)
			}

			return n, nil
		}
	}

	return cmd.Flags().GetInt(flag)
}
