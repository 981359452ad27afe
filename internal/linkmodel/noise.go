package linkmodel

import (
	"math"

	"github.com/tschsim/engine/internal/prng"
)

// noise draws a zero-mean Gaussian RSSI perturbation with standard
// deviation stddev, shared by every model variant that supports it
// (spec.md §4.2: "All models optionally add Gaussian noise with std σ to
// RSSI per call").
func noise(rng *prng.Source, stddev float64) float64 {
	if stddev <= 0 {
		return 0
	}
	return rng.Gaussian(0, stddev)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// logistic returns the standard logistic function 1/(1+e^-x).
func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// logit is the inverse of logistic: logit(logistic(x)) == x.
func logit(p float64) float64 {
	p = clamp01(p)
	if p <= 0 {
		p = 1e-9
	}
	if p >= 1 {
		p = 1 - 1e-9
	}
	return math.Log(p / (1 - p))
}
