package commands

import (
	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CoreLoader loads configuration from configFile, applies overrides and
// returns the wired application core
type CoreLoader func(configFile string, overrides ...func(conf *config.Config)) (*core.Core, error)

// CommandProps injected props that can be made available to all commands
type CommandProps struct {
	LoadCore   CoreLoader
	configFile string
}

func (p *CommandProps) core(overrides ...func(conf *config.Config)) (*core.Core, error) {
	return p.LoadCore(p.configFile, overrides...)
}

// Root builds and returns our root command
func Root(props *CommandProps) *cobra.Command {
	var verbose bool
	var silent bool

	cmd := &cobra.Command{
		Use:   "fleetprobe",
		Short: "Discover, health check and track a fleet of servers",
		// This runs before all commands and all sub-commands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// set logging verbosity for all loggers
			zerolog.SetGlobalLevel(zerolog.InfoLevel)

			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if silent {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			return nil
		},
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	cmd.PersistentFlags().BoolVar(&silent, "silent", false, "disables all logging")
	cmd.PersistentFlags().StringVar(&props.configFile, "config", "", "path to yaml config file")

	cmd.AddCommand(sweep(props))
	cmd.AddCommand(probe(props))
	cmd.AddCommand(historyCmd(props))
	cmd.AddCommand(targets(props))
	cmd.AddCommand(clear())
	cmd.AddCommand(info())
	cmd.AddCommand(version())

	return cmd
}
