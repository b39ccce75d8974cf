package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/debridement/core"
	"github.com/signalsfoundry/debridement/internal/cleanup"
	"github.com/signalsfoundry/debridement/internal/config"
	"github.com/signalsfoundry/debridement/internal/logging"
	"github.com/signalsfoundry/debridement/kb"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "debridement",
		Short: "Automatic debris cleanup for a persistent space-flight world",
		Long: "debridement periodically removes inert debris: stages left landed or " +
			"splashed on the home body, and orbiting junk whose orbit decays inside an atmosphere.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./debridement.yaml)")
	flags.String("scenario", "", "YAML scenario describing the world")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	root.AddCommand(newRunCmd(), newInspectCmd(), newSalvageCmd())
	return root
}

// initConfig points viper at the config file and binds flags. A missing
// default config file is fine; we use defaults.
func initConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("debridement")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := config.BindFlags(viper.GetViper(), cmd.Flags()); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// setup loads configuration and builds the logger every subcommand uses.
func setup() (config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(cfg.Logging()), nil
}

// loadWorld reads the scenario at path into a fresh knowledge base.
func loadWorld(ctx context.Context, path string, log logging.Logger) (*kb.KnowledgeBase, kb.ScenarioSummary, error) {
	if path == "" {
		return nil, kb.ScenarioSummary{}, errors.New("no scenario configured; pass --scenario or set scenario in the config file")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, kb.ScenarioSummary{}, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()

	world := kb.NewKnowledgeBase()
	sum, err := kb.LoadScenario(world, f)
	if err != nil {
		return nil, sum, fmt.Errorf("load scenario %q: %w", path, err)
	}
	log.Info(ctx, "loaded scenario",
		logging.String("path", path),
		logging.Int("bodies", sum.Bodies),
		logging.Int("vessels", sum.Vessels),
		logging.Int("tle_driven", sum.TLEDriven),
		logging.Bool("ready", world.Ready()),
	)
	return world, sum, nil
}

func newScanner(cfg config.Config, log logging.Logger, opts ...cleanup.ScannerOption) (*cleanup.Scanner, error) {
	policy, err := core.NewPolicy(cfg.CorePolicy())
	if err != nil {
		return nil, err
	}
	return cleanup.NewScanner(policy, log, opts...), nil
}
