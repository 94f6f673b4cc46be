package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gitlab.com/zephyrtronium/pick"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/ringmaster"
	"github.com/zephyrtronium/ringmaster/metrics"
	"github.com/zephyrtronium/ringmaster/syncmap"
	"github.com/zephyrtronium/ringmaster/tpool"
)

// sample is the record moved through workload buffers.
type sample struct {
	seq  uint64
	at   time.Time
	from int
}

var samples = tpool.New(func() *sample { return new(sample) })

type op uint8

const (
	opPush op = iota
	opPop
	opPeek
	opPopIf
	opPurge
	opMode
	numOps
)

var opNames = [numOps]string{"push", "pop", "peek", "popif", "purge", "mode"}

func (o op) String() string {
	return opNames[o]
}

func parseOp(s string) (op, bool) {
	for i, n := range opNames {
		if n == s {
			return op(i), true
		}
	}
	return 0, false
}

// purgeAge is the age past which a purge removes samples.
const purgeAge = 100 * time.Millisecond

// workload is a buffer together with the workers that exercise it.
type workload struct {
	name string
	cfg  *Workload
	buf  *ringmaster.Instrumented[*sample]
	dist *pick.Dist[op] // nil without consumers

	seq    atomic.Uint64
	ops    [numOps]atomic.Int64
	hits   atomic.Int64
	purged atomic.Int64

	started atomic.Int64 // unix nanos
	ended   atomic.Int64
}

func newBuffer(cfg *Workload) (ringmaster.Buffer[*sample], error) {
	if cfg.Backend == "timeseries" {
		return ringmaster.NewTimeseries[*sample](cfg.Capacity), nil
	}
	var b ringmaster.Backend
	if err := b.UnmarshalText([]byte(cfg.Backend)); err != nil {
		return nil, err
	}
	return ringmaster.New[*sample](ringmaster.WithBackend(b), ringmaster.WithMode(cfg.Mode)), nil
}

func newWorkload(name string, cfg *Workload, m *metrics.Metrics) (*workload, error) {
	b, err := newBuffer(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't create buffer for %s: %w", name, err)
	}
	cases := make([]pick.Case[op], 0, len(cfg.Ops))
	for s, n := range cfg.Ops {
		o, ok := parseOp(s)
		if !ok {
			return nil, fmt.Errorf("unknown op %q for %s", s, name)
		}
		cases = append(cases, pick.Case[op]{E: o, W: n})
	}
	w := &workload{
		name: name,
		cfg:  cfg,
	}
	if cfg.Consumers > 0 {
		w.dist = pick.New(cases)
	}
	// Preload directly so that metrics only reflect worker activity.
	for range cfg.Preload {
		b.Push(w.sample(-1))
	}
	w.buf = ringmaster.Instrument(b, m, name)
	return w, nil
}

func (w *workload) sample(from int) *sample {
	s := samples.Get()
	*s = sample{seq: w.seq.Add(1), at: time.Now(), from: from}
	return s
}

// run runs the workload's workers until its duration elapses or ctx ends.
func (w *workload) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, fseconds(w.cfg.Duration))
	defer cancel()
	log := slog.With(slog.String("workload", w.name))
	log.InfoContext(ctx, "start",
		slog.String("backend", w.cfg.Backend),
		slog.Int("producers", w.cfg.Producers),
		slog.Int("consumers", w.cfg.Consumers),
	)
	w.started.Store(time.Now().UnixNano())
	defer func() { w.ended.Store(time.Now().UnixNano()) }()
	group, ctx := errgroup.WithContext(ctx)
	lim := rate.Every(fseconds(w.cfg.Rate.Every))
	for i := range w.cfg.Producers {
		r := rate.NewLimiter(lim, w.cfg.Rate.Num)
		group.Go(func() error { return w.produce(ctx, i, r) })
	}
	for range w.cfg.Consumers {
		group.Go(func() error { return w.consume(ctx) })
	}
	err := group.Wait()
	log.InfoContext(ctx, "done", slog.Int("len", w.buf.Len()), slog.Any("err", err))
	return err
}

func (w *workload) produce(ctx context.Context, id int, r *rate.Limiter) error {
	for ctx.Err() == nil {
		// Wait only fails when the context ends before the next token.
		if err := r.Wait(ctx); err != nil {
			return nil
		}
		w.buf.Push(w.sample(id))
		w.ops[opPush].Add(1)
	}
	return nil
}

func (w *workload) consume(ctx context.Context) error {
	for ctx.Err() == nil {
		o := w.dist.Pick(rand.Uint32())
		if !w.do(o) {
			runtime.Gosched()
		}
	}
	return nil
}

// do performs a single operation and reports whether it found anything.
func (w *workload) do(o op) bool {
	w.ops[o].Add(1)
	switch o {
	case opPush:
		w.buf.Push(w.sample(-1))
		return true
	case opPop:
		s, ok := w.buf.Pop()
		return w.release(s, ok)
	case opPeek:
		_, ok := w.buf.Peek()
		return ok
	case opPopIf:
		s, ok := w.buf.PopIf(func(s *sample) bool { return s.seq%2 == 0 })
		return w.release(s, ok)
	case opPurge:
		cutoff := time.Now().Add(-purgeAge)
		n := w.buf.Purge(func(s *sample) bool { return s.at.After(cutoff) })
		w.purged.Add(int64(n))
		return n != 0
	case opMode:
		if w.buf.Mode() == ringmaster.FIFO {
			w.buf.SetMode(ringmaster.LIFO)
		} else {
			w.buf.SetMode(ringmaster.FIFO)
		}
		return true
	default:
		panic(fmt.Errorf("ringbench: unknown op %d", o))
	}
}

func (w *workload) release(s *sample, ok bool) bool {
	if !ok {
		return false
	}
	w.hits.Add(1)
	samples.Put(s)
	return true
}

// Report is the summary of a workload run.
type Report struct {
	Run     uuid.UUID `json:"run"`
	Name    string    `json:"name"`
	Backend string    `json:"backend"`
	Mode    string    `json:"mode,omitzero"`
	Ops     Counts    `json:"ops"`
	Hits    int64     `json:"hits"`
	Purged  int64     `json:"purged"`
	Len     int       `json:"len"`
	Elapsed float64   `json:"elapsed"`
}

// Counts is the number of times each operation was performed.
type Counts struct {
	Push  int64 `json:"push"`
	Pop   int64 `json:"pop"`
	Peek  int64 `json:"peek"`
	PopIf int64 `json:"popif"`
	Purge int64 `json:"purge"`
	Mode  int64 `json:"mode"`
}

// report summarizes the workload. It may be called while workers run.
func (w *workload) report(run uuid.UUID) Report {
	r := Report{
		Run:     run,
		Name:    w.name,
		Backend: w.cfg.Backend,
		Ops: Counts{
			Push:  w.ops[opPush].Load(),
			Pop:   w.ops[opPop].Load(),
			Peek:  w.ops[opPeek].Load(),
			PopIf: w.ops[opPopIf].Load(),
			Purge: w.ops[opPurge].Load(),
			Mode:  w.ops[opMode].Load(),
		},
		Hits:   w.hits.Load(),
		Purged: w.purged.Load(),
		Len:    w.buf.Len(),
	}
	if w.cfg.Backend != "timeseries" {
		r.Mode = w.buf.Mode().String()
	}
	if start := w.started.Load(); start != 0 {
		end := w.ended.Load()
		if end == 0 {
			end = time.Now().UnixNano()
		}
		r.Elapsed = time.Duration(end - start).Seconds()
	}
	return r
}

// bench is the set of workloads in one run.
type bench struct {
	id        uuid.UUID
	workloads *syncmap.Map[string, *workload]
}

func newBench(cfg *Config, m *metrics.Metrics) (*bench, error) {
	b := &bench{
		id:        uuid.New(),
		workloads: syncmap.New[string, *workload](),
	}
	for name, wc := range cfg.Workload {
		if err := b.add(name, wc, m); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// add registers a new workload. The registry is unchanged on error.
func (b *bench) add(name string, cfg *Workload, m *metrics.Metrics) error {
	if _, ok := b.workloads.Load(name); ok {
		return fmt.Errorf("duplicate workload %s", name)
	}
	w, err := newWorkload(name, cfg, m)
	if err != nil {
		return err
	}
	if _, loaded := b.workloads.LoadOrStore(name, func() *workload { return w }); loaded {
		return fmt.Errorf("duplicate workload %s", name)
	}
	return nil
}

// run runs all workloads concurrently and returns their reports in name order.
func (b *bench) run(ctx context.Context) ([]Report, error) {
	slog.InfoContext(ctx, "run", slog.Any("id", b.id), slog.Int("workloads", b.workloads.Len()))
	group, ctx := errgroup.WithContext(ctx)
	for _, w := range b.workloads.All() {
		group.Go(func() error { return w.run(ctx) })
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("workload failed: %w", err)
	}
	var r []Report
	for _, w := range b.workloads.All() {
		r = append(r, w.report(b.id))
	}
	return r, nil
}

// lookup returns the live report for a workload.
func (b *bench) lookup(name string) (Report, bool) {
	w, ok := b.workloads.Load(name)
	if !ok {
		return Report{}, false
	}
	return w.report(b.id), true
}
