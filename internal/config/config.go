package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robgonnella/fleetprobe/internal/exception"
	"github.com/robgonnella/fleetprobe/internal/util"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig represents the sql backend used for the target
// registry and probe history
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	File   string `yaml:"file"`
}

// RegistryConfig selects where registered targets are read from
type RegistryConfig struct {
	Source string `yaml:"source"`
	File   string `yaml:"file"`
}

// SweepConfig represents defaults for exploratory range sweeps
type SweepConfig struct {
	Ports       []int         `yaml:"ports"`
	MinOctet    int           `yaml:"min_octet"`
	MaxOctet    int           `yaml:"max_octet"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	Rate        float64       `yaml:"rate"`
	Handshake   bool          `yaml:"handshake"`
	Strategy    string        `yaml:"strategy"`
	Namespaces  []string      `yaml:"namespaces"`
}

// ProbeConfig represents defaults for health probing registered targets
type ProbeConfig struct {
	SkipPing    bool          `yaml:"skip_ping"`
	PingMethod  string        `yaml:"ping_method"`
	PingPort    int           `yaml:"ping_port"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	TestClass   string        `yaml:"test_class"`
	VerifyCert  bool          `yaml:"verify_cert"`
}

// LogConfig represents log file output settings
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config represents the data structure of our user provided yaml configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Registry RegistryConfig `yaml:"registry"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Probe    ProbeConfig    `yaml:"probe"`
	Log      LogConfig      `yaml:"log"`
}

// supported values
const (
	DriverSqlite   = "sqlite"
	DriverMysql    = "mysql"
	SourceDatabase = "database"
	SourceFile     = "file"
	PingICMP       = "icmp"
	PingTCP        = "tcp"
)

var strategies = []string{"connect", "handshake", "both"}

// New returns umarshaled data structure of user provided config. Keys
// missing from the file keep their Default value.
func New(confPath string) (*Config, error) {
	raw, err := os.ReadFile(confPath)

	if err != nil {
		return nil, err
	}

	config := Default()

	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns the default configuration
func Default() *Config {
	dbFile, _ := viper.Get("database-file").(string)
	logFile, _ := viper.Get("log-file").(string)

	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSqlite,
			File:   dbFile,
		},
		Registry: RegistryConfig{
			Source: SourceDatabase,
		},
		Sweep: SweepConfig{
			Ports:       []int{5989},
			MinOctet:    1,
			MaxOctet:    254,
			Concurrency: 100,
			Timeout:     2 * time.Second,
			Strategy:    "connect",
			Namespaces:  []string{"root/cimv2", "interop", "root/interop"},
		},
		Probe: ProbeConfig{
			PingMethod:  PingICMP,
			PingPort:    5989,
			PingTimeout: 2 * time.Second,
			Timeout:     20 * time.Second,
			Concurrency: 25,
			TestClass:   "CIM_ComputerSystem",
		},
		Log: LogConfig{
			File:       logFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate reports the first invalid configuration value
func (c *Config) Validate() error {
	if len(c.Sweep.Ports) == 0 {
		return fmt.Errorf("%w: no sweep ports configured", exception.ErrInvalidPort)
	}

	for _, p := range c.Sweep.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("%w: %d", exception.ErrInvalidPort, p)
		}
	}

	if c.Sweep.MinOctet < 0 || c.Sweep.MaxOctet > 255 || c.Sweep.MinOctet > c.Sweep.MaxOctet {
		return fmt.Errorf(
			"%w: octet bounds %d-%d",
			exception.ErrInvalidRange,
			c.Sweep.MinOctet,
			c.Sweep.MaxOctet,
		)
	}

	if c.Sweep.Concurrency < 1 || c.Probe.Concurrency < 1 {
		return errors.New("concurrency must be greater than zero")
	}

	if c.Sweep.Timeout <= 0 || c.Probe.Timeout <= 0 || c.Probe.PingTimeout <= 0 {
		return errors.New("timeouts must be greater than zero")
	}

	if c.Sweep.Rate < 0 {
		return errors.New("sweep rate cannot be negative")
	}

	if !util.SliceIncludes(strategies, c.Sweep.Strategy) {
		return fmt.Errorf("unknown sweep strategy %q", c.Sweep.Strategy)
	}

	switch c.Database.Driver {
	case DriverSqlite, DriverMysql:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Database.Driver == DriverMysql && c.Database.DSN == "" {
		return errors.New("mysql driver requires a dsn")
	}

	switch c.Registry.Source {
	case SourceDatabase:
	case SourceFile:
		if c.Registry.File == "" {
			return errors.New("file registry requires a file path")
		}
	default:
		return fmt.Errorf("unknown registry source %q", c.Registry.Source)
	}

	switch c.Probe.PingMethod {
	case PingICMP, PingTCP:
	default:
		return fmt.Errorf("unknown ping method %q", c.Probe.PingMethod)
	}

	if c.Probe.PingPort < 1 || c.Probe.PingPort > 65535 {
		return fmt.Errorf("%w: ping port %d", exception.ErrInvalidPort, c.Probe.PingPort)
	}

	return nil
}

// Write persists the configuration to the run-time config file path
func Write(conf Config) error {
	configFile := viper.Get("config-file").(string)

	file, err := os.Create(configFile)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}
