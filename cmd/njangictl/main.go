package main

import (
	"os"

	"github.com/Marceldinga/TheYoungShallGrow/internal/config"
	"github.com/Marceldinga/TheYoungShallGrow/internal/logger"
	"github.com/spf13/cobra"
)

const programName = "njangictl"

var globalFlags = struct {
	configFile string
	debug      bool
}{}

// loadConfig reads the configuration and sets up logging for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.configFile)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if globalFlags.debug {
		level = "debug"
	}
	logger.InitializeWithWriter(os.Stderr, level, cfg.Log.Format)
	return cfg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operator tool for The Young Shall Grow rotation ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.configFile, "config", "config/config.dev.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(
		migrateCommand(),
		tokenCommand(),
		potCommand(),
		capacityCommand(),
		payoutCommand(),
		accrueInterestCommand(),
		interestRunsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
