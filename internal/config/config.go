// Package config declares the simulation's tunable parameter record
// (spec.md §6 Configuration) shared by internal/node and
// internal/network. Loading it from disk/env (viper, cast) is the
// driver's concern, layered on top in load.go; this file only fixes the
// struct shape and its documented defaults, so the core never depends on
// how a value was supplied.
package config

// Config is the flat parameter record every core component reads from.
// Field names track the MAC_*/APP_*/PHY_*/IP_* names spec.md uses so a
// reader can match this struct directly against §6's enumeration.
type Config struct {
	Seed            int64
	DurationSeconds float64

	DefaultSlotframeSize int
	SlotDurationUs       float64

	MinBE       int
	MaxBE       int
	MaxRetries  int
	QueueSize   int
	MaxSubslots int

	HeaderSize   int
	EBPacketSize int
	MaxPacketSize int

	EBPeriodSec            float64
	ChannelScanDurationSec float64
	KeepaliveTimeoutSec    float64
	DesyncThresholdSec     float64
	HoppingSequence        []int
	MaxJoinPriority        int

	FragmentationEnabled bool
	ReassemblyTimeoutSec float64

	CoChannelRejectionDb float64
	CaptureEffectExact   bool // false: second-highest-signal approximation; true: mW-sum of interferers

	NumRecentLinkLayerSeqnums int

	FreshnessMax                int
	FreshnessHalvingIntervalSec float64
	ETXDefault                  int
	ETXNoAckPenalty             int
	ETXAlphaFresh               float64
	ETXAlphaNotFresh            float64
	ETXBootstrapRSSILowDbm      float64
	ETXBootstrapRSSIHighDbm     float64
	ETXBootstrapLow             int
	ETXBootstrapHigh            int

	SchedulingAlgorithm string
	SchedulingParams    map[string]any
	RoutingAlgorithm    string
	RoutingParams       map[string]any

	AppPacketSize      int
	AppPacketPeriodSec float64
	AppWarmupSec       float64
}

// Default returns a Config populated with spec.md's documented defaults.
// Every numeric default below is named directly by spec.md §4.5/§6/§8;
// where spec.md leaves a value to "configuration", the default chosen
// here matches the concrete scenario values used in §8's worked examples.
func Default() Config {
	return Config{
		Seed:            0,
		DurationSeconds: 120,

		DefaultSlotframeSize: 101,
		SlotDurationUs:       10000,

		MinBE:       1,
		MaxBE:       7,
		MaxRetries:  7,
		QueueSize:   8,
		MaxSubslots: 1,

		HeaderSize:    10,
		EBPacketSize:  32,
		MaxPacketSize: 127,

		EBPeriodSec:            10,
		ChannelScanDurationSec: 1.5,
		KeepaliveTimeoutSec:    60,
		DesyncThresholdSec:     120,
		HoppingSequence:        []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		MaxJoinPriority:        10,

		FragmentationEnabled: true,
		ReassemblyTimeoutSec: 60,

		CoChannelRejectionDb: 3,
		CaptureEffectExact:   false,

		NumRecentLinkLayerSeqnums: 16,

		FreshnessMax:                16,
		FreshnessHalvingIntervalSec: 15 * 60,
		ETXDefault:                  2 * 128,
		ETXNoAckPenalty:             12,
		ETXAlphaFresh:               0.1,
		ETXAlphaNotFresh:            0.25,
		ETXBootstrapRSSILowDbm:      -90,
		ETXBootstrapRSSIHighDbm:     -60,
		ETXBootstrapLow:             3 * 128,
		ETXBootstrapHigh:            1 * 128,

		SchedulingAlgorithm: "passthrough",
		RoutingAlgorithm:    "null",

		AppPacketSize:      40,
		AppPacketPeriodSec: 10,
		AppWarmupSec:       0,
	}
}
