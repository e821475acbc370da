package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/robgonnella/fleetprobe/cli/commands"
	app_info "github.com/robgonnella/fleetprobe/internal/app-info"
	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/core"
	"github.com/robgonnella/fleetprobe/internal/logger"
	"github.com/spf13/viper"
)

/**
 * Main entry point for all commands
 * Here we setup environment config via viper
 */

func setRunTimeConfig() error {
	userHomeDir, err := os.UserHomeDir()

	if err != nil {
		return err
	}

	configDir := path.Join(userHomeDir, ".config", app_info.NAME)

	if err := os.MkdirAll(configDir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	cacheDir := path.Join(userHomeDir, ".cache", app_info.NAME)

	if err := os.MkdirAll(cacheDir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	logFile := path.Join(cacheDir, app_info.NAME+".log")

	configFile := path.Join(configDir, "config.yml")

	databaseFile := path.Join(cacheDir, app_info.NAME+".db")

	// share run-time config globally using viper
	viper.Set("log-file", logFile)
	viper.Set("config-dir", configDir)
	viper.Set("config-file", configFile)
	viper.Set("cache-dir", cacheDir)
	viper.Set("database-file", databaseFile)

	return nil
}

// loadConfig reads the yaml config falling back to defaults when the
// default config file does not exist yet
func loadConfig(configFile string) (*config.Config, error) {
	explicit := configFile != ""

	if !explicit {
		configFile = viper.Get("config-file").(string)
	}

	conf, err := config.New(configFile)

	if err == nil {
		return conf, nil
	}

	if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	conf = config.Default()

	if err := config.Write(*conf); err != nil {
		logger.New().Warn().Err(err).Msg("failed to write default config")
	}

	return conf, nil
}

// Entry point for the cli
func main() {
	log := logger.New()

	err := setRunTimeConfig()

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	var logCloser io.Closer

	loadCore := func(configFile string, overrides ...func(conf *config.Config)) (*core.Core, error) {
		conf, err := loadConfig(configFile)

		if err != nil {
			return nil, err
		}

		for _, o := range overrides {
			o(conf)
		}

		if conf.Log.File != "" && logCloser == nil {
			logCloser = logger.GlobalSetLogFile(conf.Log.File, logger.FileOptions{
				MaxSizeMB:  conf.Log.MaxSizeMB,
				MaxBackups: conf.Log.MaxBackups,
				MaxAgeDays: conf.Log.MaxAgeDays,
				Compress:   conf.Log.Compress,
			})
		}

		return core.CreateNewAppCore(conf)
	}

	// Get the "root" cobra cli command
	cmd := commands.Root(&commands.CommandProps{
		LoadCore: loadCore,
	})

	// operator interrupt stops new work, in-flight probes finish on their own
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// execute the cobra command and exit with error code if necessary
	err = cmd.ExecuteContext(ctx)

	stop()

	if logCloser != nil {
		logCloser.Close()
	}

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
