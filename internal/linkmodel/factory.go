package linkmodel

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind selects a link-model variant by name, matching the LINK_MODEL
// configuration field (spec.md §6).
type Kind string

const (
	KindFixed        Kind = "Fixed"
	KindUDGM         Kind = "UDGM"
	KindLogisticLoss Kind = "LogisticLoss"
	KindPisterHack   Kind = "PisterHack"
	KindTrace        Kind = "Trace"
)

// Spec is the flat connection-spec record the configuration layer fills
// in per link or per default; ConnectionSpec in spec.md §6.
type Spec struct {
	Kind Kind

	// Fixed
	SuccessRate       float64
	PerChannelSuccess map[int]float64
	MeanRSSIDbm       float64

	// UDGM
	TxRangeMeters float64

	// LogisticLoss
	TxPowerDbm          float64
	RefRSSIAt1mDbm      float64
	PathLossExponent    float64
	InflectionRSSIDbm   float64
	SteepnessDb         float64
	SensitivityDbm      float64
	ShadowFadingSigmaDb float64

	// PisterHack
	FrequencyMhz  float64
	AntennaGainDb float64

	// Trace
	TraceEvents []TraceEvent

	// shared
	NoiseStdDb float64
}

// Create builds a Model for the requested kind. An unrecognized kind logs
// a WARNING and falls back to Fixed with a neutral 50% success rate,
// matching spec.md §7.1's configuration-error policy (never fail, always
// fall back to a documented default).
func Create(spec Spec, logger *zap.Logger) Model {
	switch spec.Kind {
	case KindFixed:
		return &Fixed{
			SuccessRate:       spec.SuccessRate,
			PerChannelSuccess: spec.PerChannelSuccess,
			MeanRSSIDbm:       spec.MeanRSSIDbm,
			NoiseStdDb:        spec.NoiseStdDb,
		}
	case KindUDGM:
		return &UDGM{
			TxRangeMeters: spec.TxRangeMeters,
			RSSIAtZero:    spec.MeanRSSIDbm,
			NoiseStdDb:    spec.NoiseStdDb,
		}
	case KindLogisticLoss:
		m := NewLogisticLoss()
		m.TxPowerDbm = spec.TxPowerDbm
		m.RefRSSIAt1mDbm = spec.RefRSSIAt1mDbm
		m.PathLossExponent = spec.PathLossExponent
		m.InflectionRSSIDbm = spec.InflectionRSSIDbm
		m.SteepnessDb = spec.SteepnessDb
		m.SensitivityDbm = spec.SensitivityDbm
		m.ShadowFadingSigmaDb = spec.ShadowFadingSigmaDb
		m.NoiseStdDb = spec.NoiseStdDb
		return m
	case KindPisterHack:
		return &PisterHack{
			TxPowerDbm:    spec.TxPowerDbm,
			FrequencyMhz:  spec.FrequencyMhz,
			AntennaGainDb: spec.AntennaGainDb,
			NoiseStdDb:    spec.NoiseStdDb,
		}
	case KindTrace:
		t := NewTrace(spec.TraceEvents)
		t.NoiseStdDb = spec.NoiseStdDb
		return t
	default:
		if logger != nil {
			logger.Warn("unknown link model, falling back to Fixed(0.5)",
				zap.String("requested", fmt.Sprint(spec.Kind)))
		}
		return &Fixed{SuccessRate: 0.5, MeanRSSIDbm: -70}
	}
}
