package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"robofleet/internal/config"
	"robofleet/internal/registry"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	registryPath string

	// Loaded per invocation
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "robofleet",
	Short: "robofleet - robot selection and dynamics validation",
	Long: `robofleet matches manipulation tasks to the best-suited robot in a
fleet and validates requested motion parameters against that robot's
torque, velocity and acceleration limits, attenuating them when needed.

The pipeline: task text -> requirement extraction -> multi-criterion
selection -> inverse dynamics torque estimation -> limit feasibility
check -> parameter scaling.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if registryPath != "" {
			cfg.RegistryPath = registryPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger constructs the zap logger from the logging config. The
// --verbose flag forces the debug level regardless of config.
func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lc.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// loadRegistry opens the configured registry file, or the builtin
// fleet when none is configured.
func loadRegistry() (*registry.Registry, error) {
	if cfg.RegistryPath == "" {
		logger.Debug("no registry configured, using builtin fleet")
		return registry.BuiltinFleet(), nil
	}
	return registry.Load(cfg.RegistryPath, logger)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "robofleet.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "path to robot registry file (overrides config)")

	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fleetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
