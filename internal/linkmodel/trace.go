package linkmodel

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tschsim/engine/internal/prng"
)

// TraceEvent is one scripted mutation of a Trace link's parameters,
// applied once the timeline crosses AtSeconds.
type TraceEvent struct {
	AtSeconds   float64
	SuccessRate float64
	RSSIDbm     float64
}

// Trace replays link-quality mutations from an externally produced event
// stream instead of computing them from a propagation model (spec.md
// §4.2). The core only ever reads this file synchronously through
// Advance/LoadFile — any live-tailing of the source file (e.g. via
// fsnotify) is the driver's concern, not the core's, to keep step()
// single-threaded (spec.md §5).
type Trace struct {
	NoiseStdDb float64

	events  []TraceEvent
	next    int
	current TraceEvent

	lastRSSI float64
}

// NewTrace builds a Trace model over a pre-sorted or unsorted event list.
func NewTrace(events []TraceEvent) *Trace {
	sorted := append([]TraceEvent(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AtSeconds < sorted[j].AtSeconds })
	return &Trace{events: sorted}
}

// LoadFile parses a simple "at_seconds,success_rate,rssi_dbm" CSV event
// stream and returns its events; it does not touch any Trace model (pass
// the result to NewTrace or Reload).
func LoadFile(path string) ([]TraceEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []TraceEvent
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("trace file %s line %d: expected 3 fields, got %d", path, lineNo, len(parts))
		}
		at, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("trace file %s line %d: %w", path, lineNo, err)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("trace file %s line %d: %w", path, lineNo, err)
		}
		rssi, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("trace file %s line %d: %w", path, lineNo, err)
		}
		events = append(events, TraceEvent{AtSeconds: at, SuccessRate: clamp01(rate), RSSIDbm: rssi})
	}
	return events, scanner.Err()
}

// Reload replaces the event stream and resets replay position to the
// start. The driver's trace-file watch does not call it.
func (t *Trace) Reload(events []TraceEvent) {
	sorted := append([]TraceEvent(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AtSeconds < sorted[j].AtSeconds })
	t.events = sorted
	t.next = 0
}

// Advance applies every scripted event whose AtSeconds has been crossed.
func (t *Trace) Advance(nowSeconds float64) {
	for t.next < len(t.events) && t.events[t.next].AtSeconds <= nowSeconds {
		t.current = t.events[t.next]
		t.next++
	}
}

func (t *Trace) TrySend(rng *prng.Source, channel int) bool {
	t.lastRSSI = t.current.RSSIDbm + noise(rng, t.NoiseStdDb)
	return rng.Bernoulli(t.current.SuccessRate)
}

func (t *Trace) AverageSuccessRate(channel int) float64 { return t.current.SuccessRate }

func (t *Trace) LastRSSI() float64 { return t.lastRSSI }

// Update is a no-op: Trace parameters come from the event stream, not
// node positions.
func (t *Trace) Update(from, to Position) {}
