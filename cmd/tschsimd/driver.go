// Package main is cmd/tschsimd, the HTTP+WS driver around the simulation
// core: RUN/PAUSE/RESET/STATUS as JWT-guarded endpoints, plus a websocket
// broadcast of per-slot status and a periodic stats tally. This is
// explicitly "driver, not core" (spec.md §6): no file here is imported by
// internal/{timeline,node,network,linkmodel,plugin}.
package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/tschsim/engine/internal/config"
	"github.com/tschsim/engine/internal/network"
	"github.com/tschsim/engine/internal/stats"
	"github.com/tschsim/engine/internal/store/repository"
	"github.com/tschsim/engine/internal/web"
)

// runState is the driver's RUN/PAUSE lifecycle, independent of the core
// simulation's own state.
type runState int

const (
	stateIdle runState = iota
	stateRunning
	statePaused
)

func (s runState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case statePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Driver owns the network, the background step/broadcast/tally loop, and
// RUN/PAUSE/RESET/STATUS transitions. It never runs core step() calls
// concurrently with itself (spec.md §5 forbids concurrency in the core);
// conc.WaitGroup here supervises the single background goroutine that
// runs the step loop, so no two Step calls ever run at once.
type Driver struct {
	mu      sync.Mutex
	cfg     config.DriverConfig
	logger  *zap.Logger
	net     *network.Network
	hub     *web.Hub
	repo    *repository.SnapshotRepo
	tally   *stats.TallyService
	runID   string
	state   runState
	speedHz float64
	cancel  context.CancelFunc
	wg      *conc.WaitGroup
}

// NewDriver builds a Driver over a freshly constructed Network, matching
// the RESET semantics described in SPEC_FULL.md: the network is always
// (re)built fresh from cfg, never mutated in place.
func NewDriver(cfg config.DriverConfig, logger *zap.Logger, repo *repository.SnapshotRepo, hub *web.Hub) *Driver {
	d := &Driver{cfg: cfg, logger: logger, repo: repo, hub: hub}
	d.rebuild()
	return d
}

func (d *Driver) rebuild() {
	simCfg := d.cfg.Sim
	d.net = network.New(&simCfg, d.logger, nil, nil)
	d.runID = uuid.New().String()
	d.net.Initialize()
	if d.tally != nil {
		d.tally.Stop()
	}
	d.tally = stats.New(d.net, d.repo, d.runID, d.cfg.TallyInterval(), d.logger)
	d.tally.OnTallyComplete = func(s stats.Summary) {
		d.hub.BroadcastTallyCompleted(s)
	}
	d.state = stateIdle
}

// Network exposes the current network so callers (e.g. a scenario loader)
// can populate nodes/links before the first RUN.
func (d *Driver) Network() *network.Network {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net
}

// Run starts (or resumes) stepping the network at speedHz steps/sec,
// broadcasting each step's statuses over the websocket hub.
func (d *Driver) Run(speedHz float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateRunning {
		return fmt.Errorf("driver: already running")
	}
	if speedHz <= 0 {
		speedHz = 1
	}
	d.speedHz = speedHz
	d.state = stateRunning

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.tally.Start()

	wg := conc.NewWaitGroup()
	wg.Go(func() { d.stepLoop(ctx, speedHz) })
	d.wg = wg
	return nil
}

func (d *Driver) stepLoop(ctx context.Context, speedHz float64) {
	period := time.Duration(float64(time.Second) / speedHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.mu.Lock()
			if d.state != stateRunning {
				d.mu.Unlock()
				continue
			}
			if err := d.net.Step(); err != nil {
				d.logger.Warn("step reported anomalies", zap.Error(err))
			}
			statuses := d.net.Statuses()
			d.mu.Unlock()
			d.hub.BroadcastStep(statuses)
		}
	}
}

// Pause halts stepping without discarding network state. The cancel and
// Wait happen with mu released: stepLoop needs mu itself to finish its
// in-flight tick and observe ctx.Done(), so holding mu across Wait() here
// would deadlock against it.
func (d *Driver) Pause() error {
	d.mu.Lock()
	if d.state != stateRunning {
		d.mu.Unlock()
		return fmt.Errorf("driver: not running")
	}
	d.state = statePaused
	cancel, wg := d.cancel, d.wg
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wg != nil {
		wg.Wait()
	}
	d.tally.Stop()
	return nil
}

// Reset drops the current network and reconstructs it fresh from the
// stored config, per SPEC_FULL.md's reset semantics.
func (d *Driver) Reset() {
	d.mu.Lock()
	cancel, wg := d.cancel, d.wg
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if wg != nil {
		wg.Wait()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rebuild()
}

// StatusSnapshot reports the driver's RUN/PAUSE state and a stats
// headline for the STATUS verb.
type StatusSnapshot struct {
	RunID    string `json:"run_id"`
	State    string `json:"state"`
	ASN      uint64 `json:"asn"`
	Headline string `json:"headline"`
}

// Status reports the current run state and an aggregate headline.
func (d *Driver) Status() StatusSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	collisions, endpointRx := 0, 0
	for _, n := range d.net.Nodes {
		collisions += n.Stats.MacRxCollision
		endpointRx += n.Stats.AppNumEndpointRx
	}
	return StatusSnapshot{
		RunID:    d.runID,
		State:    d.state.String(),
		ASN:      d.net.Timeline.ASN(),
		Headline: stats.Headline(len(d.net.Nodes), collisions, endpointRx),
	}
}
