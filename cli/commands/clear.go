package commands

import (
	"os"

	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/**
 * Command to remove config, log and database files
 */
func clear() *cobra.Command {
	var keepDatabase bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clears config, log and database files",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New()

			keys := []string{"config-file", "log-file"}

			if !keepDatabase {
				keys = append(keys, "database-file")
			}

			for _, key := range keys {
				path, ok := viper.Get(key).(string)

				if !ok || path == "" {
					continue
				}

				if err := os.RemoveAll(path); err != nil {
					return err
				}

				log.Info().Str("file", path).Msg("removed file")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&keepDatabase, "keep-database", false, "keep the registry and history database")

	return cmd
}
