// Ringbench runs configurable concurrent workloads against ringmaster buffers
// and reports what they did.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/ringmaster/metrics"
)

var app = cli.Command{
	Name:  "ringbench",
	Usage: "Concurrent workload driver for ring buffers",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "run",
			Usage:  "Run all configured workloads and print reports",
			Action: cliRun,
		},
		{
			Name:    "validate",
			Aliases: []string{"check"},
			Usage:   "Load the config and print the resolved workloads",
			Action:  cliValidate,
		},
	},
	Action: cliRun,

	Authors: []any{
		"Branden J Brown  @zephyrtronium",
	},
	Copyright: "Copyright 2024 Branden J Brown",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadFile(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	m := metrics.New("ringbench")
	b, err := newBench(cfg, m)
	if err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	apictx, stop := context.WithCancel(ctx)
	defer stop()
	if cfg.HTTP.Listen != "" {
		group.Go(func() error {
			return b.api(apictx, cfg.HTTP.Listen, http.NewServeMux(), m.Collectors())
		})
	}
	var reports []Report
	group.Go(func() error {
		defer stop()
		var err error
		reports, err = b.run(ctx)
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}
	return writeReports(os.Stdout, reports)
}

func writeReports(w io.Writer, reports []Report) error {
	enc := jsontext.NewEncoder(w)
	for _, r := range reports {
		if err := json.MarshalEncode(enc, &r); err != nil {
			return fmt.Errorf("couldn't write report: %w", err)
		}
	}
	return nil
}

func cliValidate(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadFile(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	describe(os.Stdout, cfg)
	return nil
}

// describe prints the resolved workloads in name order.
func describe(w io.Writer, cfg *Config) {
	if cfg.HTTP.Listen != "" {
		fmt.Fprintf(w, "http: %s\n", cfg.HTTP.Listen)
	}
	names := make([]string, 0, len(cfg.Workload))
	for name := range cfg.Workload {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := cfg.Workload[name]
		fmt.Fprintf(w, "%s: backend=%s mode=%v producers=%d consumers=%d duration=%s",
			name, c.Backend, c.Mode, c.Producers, c.Consumers, fseconds(c.Duration))
		if c.Backend == "timeseries" {
			fmt.Fprintf(w, " capacity=%d", c.Capacity)
		}
		ops := make([]string, 0, len(c.Ops))
		for op, n := range c.Ops {
			ops = append(ops, fmt.Sprintf("%s=%d", op, n))
		}
		slices.Sort(ops)
		fmt.Fprintf(w, " ops=[%s]\n", strings.Join(ops, " "))
	}
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}
