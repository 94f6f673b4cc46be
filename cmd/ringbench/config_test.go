package main

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"testing"

	"github.com/zephyrtronium/ringmaster"
)

//go:embed example.toml
var exampleToml string

func eqcase[T comparable](t *testing.T, name string, val T, eq T) {
	t.Helper()
	if val != eq {
		t.Errorf("wrong %s: want %#v, got %#v", name, eq, val)
	}
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("RINGBENCH_PORT", "4959")
	cfg, md, err := Load(context.Background(), strings.NewReader(exampleToml))
	if err != nil {
		t.Fatalf("failed to load example.toml: %v", err)
	}
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, ":4959")
	eqcase(t, "len(Workload)", len(cfg.Workload), 3)
	q := cfg.Workload["queue"]
	eqcase(t, "queue.Backend", q.Backend, "intrusive")
	eqcase(t, "queue.Mode", q.Mode, ringmaster.FIFO)
	eqcase(t, "queue.Preload", q.Preload, 1000)
	eqcase(t, "queue.Producers", q.Producers, 4)
	eqcase(t, "queue.Consumers", q.Consumers, 4)
	eqcase(t, "queue.Duration", q.Duration, 10)
	eqcase(t, "queue.Rate.Every", q.Rate.Every, 0.001)
	eqcase(t, "queue.Rate.Num", q.Rate.Num, 10)
	eqcase(t, "queue.Ops[pop]", q.Ops["pop"], 10)
	eqcase(t, "queue.Ops[peek]", q.Ops["peek"], 2)
	eqcase(t, "queue.Ops[popif]", q.Ops["popif"], 1)
	eqcase(t, "queue.Ops[purge]", q.Ops["purge"], 1)
	eqcase(t, "queue.Ops[mode]", q.Ops["mode"], 0)
	s := cfg.Workload["stack"]
	eqcase(t, "stack.Backend", s.Backend, "naive")
	eqcase(t, "stack.Mode", s.Mode, ringmaster.LIFO)
	eqcase(t, "stack.Duration", s.Duration, 10.5)
	eqcase(t, "stack.Rate.Every", s.Rate.Every, 0)
	r := cfg.Workload["recent"]
	eqcase(t, "recent.Backend", r.Backend, "timeseries")
	eqcase(t, "recent.Capacity", r.Capacity, 64)
	if !md.IsDefined("workload", "queue", "rate", "every") {
		t.Errorf("rate.every not defined in metadata")
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"empty", ``},
		{"syntax", `[workload.x`},
		{"unknown-key", "[workload.x]\nproducers = 1\nduration = 1.0\nbogus = 1\n"},
		{"backend", "[workload.x]\nbackend = 'linked'\nproducers = 1\nduration = 1.0\n"},
		{"mode", "[workload.x]\nmode = 'random'\nproducers = 1\nduration = 1.0\n"},
		{"capacity", "[workload.x]\nbackend = 'timeseries'\nproducers = 1\nduration = 1.0\n"},
		{"workers", "[workload.x]\nduration = 1.0\n"},
		{"negative", "[workload.x]\nproducers = -1\nconsumers = 1\nduration = 1.0\n"},
		{"duration", "[workload.x]\nproducers = 1\n"},
		{"burst", "[workload.x]\nproducers = 1\nduration = 1.0\nrate.every = 1.0\n"},
		{"op", "[workload.x]\nconsumers = 1\nduration = 1.0\nops.shuffle = 1\n"},
		{"weight", "[workload.x]\nconsumers = 1\nduration = 1.0\nops.pop = -1\n"},
		{"weightless", "[workload.x]\nconsumers = 1\nduration = 1.0\nops.pop = 0\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, _, err := Load(context.Background(), strings.NewReader(c.toml))
			if err == nil {
				t.Errorf("no error loading %q: got %+v", c.toml, cfg)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	const src = "[workload.x]\nconsumers = 1\nduration = 1.0\n"
	cfg, _, err := Load(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	w := cfg.Workload["x"]
	eqcase(t, "Backend", w.Backend, "intrusive")
	eqcase(t, "Mode", w.Mode, ringmaster.FIFO)
	eqcase(t, "len(Ops)", len(w.Ops), 1)
	eqcase(t, "Ops[pop]", w.Ops["pop"], 1)
}

func TestDescribe(t *testing.T) {
	t.Setenv("RINGBENCH_PORT", "4959")
	cfg, _, err := Load(context.Background(), strings.NewReader(exampleToml))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	describe(&b, cfg)
	want := []string{
		"http: :4959",
		"queue: backend=intrusive mode=fifo producers=4 consumers=4 duration=10s ops=[mode=0 peek=2 pop=10 popif=1 purge=1]",
		"recent: backend=timeseries mode=fifo producers=1 consumers=1 duration=5s capacity=64 ops=[peek=1 pop=1]",
		"stack: backend=naive mode=lifo producers=2 consumers=2 duration=10.5s ops=[mode=1 pop=3 push=1]",
	}
	got := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("wrong line count: want %d, got %d:\n%s", len(want), len(got), b.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wrong line %d:\nwant %s\ngot  %s", i, want[i], got[i])
		}
	}
}
