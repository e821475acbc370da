package core

import (
	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/database"
	"github.com/robgonnella/fleetprobe/internal/discovery"
	"github.com/robgonnella/fleetprobe/internal/event"
	"github.com/robgonnella/fleetprobe/internal/health"
	"github.com/robgonnella/fleetprobe/internal/history"
	"github.com/robgonnella/fleetprobe/internal/matcher"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/robgonnella/fleetprobe/internal/target"
)

// getPinger returns the reachability check selected by configuration
func getPinger(conf *config.Config) health.Pinger {
	if conf.Probe.PingMethod == config.PingTCP {
		return health.NewConnectPinger(conf.Probe.PingPort)
	}

	return health.NewSystemPinger()
}

// CreateNewAppCore creates and returns a new instance of *core.Core
func CreateNewAppCore(conf *config.Config) (*Core, error) {
	db, err := database.Open(
		conf.Database,
		&target.TargetModel{},
		&history.RecordModel{},
	)

	if err != nil {
		return nil, err
	}

	var repo target.Repo

	if conf.Registry.Source == config.SourceFile {
		repo = target.NewFileRepo(conf.Registry.File)
	} else {
		repo = target.NewSqliteRepo(db)
	}

	targets := target.NewService(repo)
	store := history.NewGormStore(db)
	events := event.NewEventManager()

	connectors := protocol.DefaultRegistry(protocol.WBEMOptions{
		TestClass:  conf.Probe.TestClass,
		VerifyCert: conf.Probe.VerifyCert,
	})

	pinger := getPinger(conf)

	prober := health.NewProber(pinger, connectors, health.Options{
		SkipPing:    conf.Probe.SkipPing,
		PingTimeout: conf.Probe.PingTimeout,
		Timeout:     conf.Probe.Timeout,
	})

	fleet := health.NewFleet(targets, prober, conf.Probe.Concurrency)

	// open hosts already answered on their port
	matchProber := health.NewProber(pinger, connectors, health.Options{
		SkipPing: true,
		Timeout:  conf.Probe.Timeout,
	})

	hostMatcher := matcher.New(
		targets,
		matchProber,
		conf.Sweep.Namespaces,
		conf.Probe.Concurrency,
	)

	proberOpts := discovery.ProberOptions{
		Timeout:   conf.Sweep.Timeout,
		Handshake: conf.Sweep.Handshake,
	}

	engine := discovery.NewEngine(
		func(strategy discovery.Strategy) discovery.Prober {
			return discovery.NewProber(strategy, proberOpts)
		},
		discovery.WithRateLimit(conf.Sweep.Rate),
		discovery.WithResultHook(func(r discovery.ScanResult) {
			events.Send(event.Event{
				Type:    event.SweepResultType,
				Payload: r,
			})
		}),
	)

	return New(
		conf,
		targets,
		store,
		engine,
		hostMatcher,
		fleet,
		events,
	), nil
}
