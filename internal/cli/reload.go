package cli

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/juju/errors"
	"github.com/robfig/cron/v3"

	"github.com/raoulx24/atlas-archive/internal/config"
	"github.com/raoulx24/atlas-archive/internal/logging"
)

type configTarget interface {
	UpdateConfig(cfg config.Config)
}

// reloader re-reads the config file on SIGHUP and, when enabled, on a
// cron schedule, and pushes changed settings to the running monitor.
type reloader struct {
	mu     sync.Mutex
	path   string
	last   config.Config
	target configTarget
	log    logging.Logger

	// forceDebug keeps debug output on across reloads (--verbose).
	forceDebug bool
}

func newReloader(path string, current config.Config, forceDebug bool, target configTarget, log logging.Logger) *reloader {
	return &reloader{path: path, last: current, forceDebug: forceDebug, target: target, log: log}
}

// reload applies the file's settings if they parse, validate and differ
// from what was last applied.
func (r *reloader) reload() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := config.Load(r.path)
	if err != nil {
		r.log.Errorf("config reload failed: %v", err)
		return false
	}
	if r.forceDebug {
		cfg.DebugOutput = true
	}
	if err := cfg.Validate(); err != nil {
		r.log.Errorf("config reload rejected: %v", err)
		return false
	}
	if *cfg == r.last {
		return false
	}

	logging.SetDebug(cfg.DebugOutput)
	r.target.UpdateConfig(*cfg)
	r.last = *cfg
	r.log.Infof("config reloaded from %s", r.path)
	return true
}

// start installs the SIGHUP handler and the optional schedule. The returned
// func removes both.
func (r *reloader) start(rc config.ReloadConfig) (func(), error) {
	var sched *cron.Cron
	if rc.Enabled {
		sched = cron.New()
		if _, err := sched.AddFunc(rc.Schedule, func() { r.reload() }); err != nil {
			return nil, errors.Annotatef(err, "reload schedule %q", rc.Schedule)
		}
		sched.Start()
		r.log.Debugf("config reload scheduled %q", rc.Schedule)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-hup:
				r.reload()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(hup)
		close(done)
		if sched != nil {
			<-sched.Stop().Done()
		}
	}, nil
}
