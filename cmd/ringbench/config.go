package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zephyrtronium/ringmaster"
)

// Load loads ringbench workloads from a TOML configuration.
// Workloads are validated and defaults are filled in.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	if u := md.Undecoded(); len(u) != 0 {
		return nil, nil, fmt.Errorf("unknown config key %s", u[0])
	}
	expandcfg(&cfg, os.Getenv)
	if len(cfg.Workload) == 0 {
		return nil, nil, errNoWorkloads
	}
	for name, w := range cfg.Workload {
		if err := w.resolve(); err != nil {
			return nil, nil, fmt.Errorf("bad workload.%s: %w", name, err)
		}
	}
	return &cfg, &md, nil
}

func loadFile(ctx context.Context, file string) (*Config, *toml.MetaData, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, md, err := Load(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, md, nil
}

var errNoWorkloads = errors.New("no workloads")

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config is the top-level ringbench configuration.
type Config struct {
	// HTTP configures the metrics and stats listener.
	HTTP HTTP `toml:"http"`
	// Workload is the set of workloads to run, keyed by name.
	Workload map[string]*Workload `toml:"workload"`
}

type HTTP struct {
	// Listen is the address to serve on. Empty disables the server.
	Listen string `toml:"listen"`
}

// Workload is the configuration for one buffer and its workers.
type Workload struct {
	// Backend is intrusive, naive, or timeseries. Default intrusive.
	Backend string `toml:"backend"`
	// Mode is the initial retrieval mode of ring buffers.
	Mode ringmaster.Mode `toml:"mode"`
	// Capacity is the size of a timeseries buffer. Ignored otherwise.
	Capacity int `toml:"capacity"`
	// Preload is the number of samples pushed before workers start.
	Preload int `toml:"preload"`
	// Producers is the number of goroutines pushing samples.
	Producers int `toml:"producers"`
	// Consumers is the number of goroutines performing weighted ops.
	Consumers int `toml:"consumers"`
	// Duration is the run time in seconds.
	Duration float64 `toml:"duration"`
	// Rate limits each producer. Zero every means unlimited.
	Rate Rate `toml:"rate"`
	// Ops is the weight of each consumer operation:
	// push, pop, peek, popif, purge, and mode.
	Ops map[string]int `toml:"ops"`
}

// Rate is a rate limit.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

func (w *Workload) resolve() error {
	switch w.Backend {
	case "":
		w.Backend = ringmaster.Intrusive.String()
	case "timeseries":
		if w.Capacity <= 0 {
			return errors.New("timeseries needs a positive capacity")
		}
	default:
		var b ringmaster.Backend
		if err := b.UnmarshalText([]byte(w.Backend)); err != nil {
			return fmt.Errorf("backend %q: %w", w.Backend, err)
		}
		w.Backend = b.String()
	}
	if w.Producers < 0 || w.Consumers < 0 || w.Preload < 0 {
		return errors.New("negative worker or preload count")
	}
	if w.Producers == 0 && w.Consumers == 0 {
		return errors.New("no producers or consumers")
	}
	if w.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if w.Rate.Every < 0 {
		return errors.New("negative rate")
	}
	if w.Rate.Every > 0 && w.Rate.Num <= 0 {
		return errors.New("rate with no burst")
	}
	if len(w.Ops) == 0 {
		w.Ops = map[string]int{"pop": 1}
	}
	total := 0
	for op, n := range w.Ops {
		if _, ok := parseOp(op); !ok {
			return fmt.Errorf("unknown op %q", op)
		}
		if n < 0 {
			return fmt.Errorf("negative weight for op %q", op)
		}
		total += n
	}
	if total == 0 && w.Consumers > 0 {
		return errors.New("consumers with no op weights")
	}
	return nil
}

func expandcfg(cfg *Config, expand func(s string) string) {
	cfg.HTTP.Listen = os.Expand(cfg.HTTP.Listen, expand)
	for _, w := range cfg.Workload {
		w.Backend = os.Expand(w.Backend, expand)
	}
}
