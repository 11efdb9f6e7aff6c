// Package noise implements the pseudorange and Doppler measurement error
// models used to weight the PVT least-squares solve (spec.md §4.4): a
// C/N0-and-elevation-dependent variance with PLL-lock and lock-time
// penalties.
//
// Grounded on FengXuebin-gnssgo/src/pntpos.go's VarianceErr (elevation term
// and per-constellation EFACT_* scale), generalized with the C/N0- and
// lock-time-dependent terms spec.md §4.4 requires and the teacher does not
// carry.
package noise

import (
	"math"

	"github.com/fxbgnss/gnsscore/sid"
)

// Options parameterizes the error model (spec.md §4.4); DefaultOptions
// carries the spec's literal constants.
type Options struct {
	KCn0               float64 // pseudorange exponential CN0 coefficient (m^2)
	DCn0               float64 // CN0 exponential decay constant (dB-Hz)
	KEl                float64 // elevation term coefficient (m^2)
	KCn0Doppler        float64 // Doppler exponential CN0 coefficient (Hz^2)
	DopplerBaselineHz2 float64
	UnlockedPenalty    float64 // multiplier applied when the PLL is not locked
	LockRampS          float64 // lock-time (s) at which the ramp penalty reaches 1
	MinElevationRad    float64
}

// DefaultOptions carries spec.md §4.4's literal constants: k_cn0=780,
// d_cn0=6.5, k_el=0.1, Doppler baseline 0.1 Hz^2 with k_cn0,D=700, a ×16
// unlocked-PLL penalty, and a linear 4→1 lock-time ramp over 0-4s.
func DefaultOptions() Options {
	return Options{
		KCn0:               780.0,
		DCn0:               6.5,
		KEl:                0.1,
		KCn0Doppler:        700.0,
		DopplerBaselineHz2: 0.1,
		UnlockedPenalty:    16.0,
		LockRampS:          4.0,
		MinElevationRad:    5.0 * math.Pi / 180.0,
	}
}

// baselineVarianceM2 is σ²_base(code), the per-code recommended baseline of
// spec.md §4.4.
func baselineVarianceM2(code sid.Code) float64 {
	switch code {
	case sid.GpsL1CA, sid.GalE1B, sid.GalE5a, sid.GalE5b:
		return 0.4
	case sid.GpsL2C, sid.GpsL5, sid.QzsL1CA, sid.QzsL5:
		return 1.0
	case sid.GloL1OF, sid.GloL2OF:
		return 8.0
	case sid.BdsB1I, sid.BdsB2I, sid.BdsB3I:
		return 0.5
	default:
		return 1.0
	}
}

// lockPenalty combines the ×16 unlocked-PLL penalty with the linear 4→1
// ramp as lock-time rises from 0 to Options.LockRampS (spec.md §4.4).
func lockPenalty(opt Options, locked bool, lockTimeS float64) float64 {
	if !locked {
		return opt.UnlockedPenalty
	}
	switch {
	case lockTimeS <= 0:
		return 4.0
	case lockTimeS >= opt.LockRampS:
		return 1.0
	default:
		return 4.0 - 3.0*(lockTimeS/opt.LockRampS)
	}
}

// PseudorangeVariance returns the code-pseudorange measurement variance
// (m^2) for a signal observed at elevationRad with the given C/N0 (dB-Hz),
// PLL lock state and lock time, per spec.md §4.4's literal formula:
// σ²_ρ = σ²_base(code) + k_cn0·exp(−C/N0/d_cn0) + k_el·(1/max(sin el, ε))².
func PseudorangeVariance(opt Options, code sid.Code, elevationRad, cn0DbHz float64, locked bool, lockTimeS float64) float64 {
	el := elevationRad
	if el < opt.MinElevationRad {
		el = opt.MinElevationRad
	}
	sinEl := math.Sin(el)
	const epsilon = 1e-3
	if sinEl < epsilon {
		sinEl = epsilon
	}
	v := baselineVarianceM2(code) + opt.KCn0*math.Exp(-cn0DbHz/opt.DCn0) + opt.KEl*sqr(1.0/sinEl)
	return v * lockPenalty(opt, locked, lockTimeS)
}

// DopplerVariance returns the range-rate measurement variance (Hz^2)
// implied by C/N0, PLL lock state and lock time (spec.md §4.4):
// σ²_D = σ²_D,base + k_cn0,D·exp(−C/N0/d_cn0). Callers convert to (m/s)^2 by
// scaling by the signal's wavelength squared.
func DopplerVariance(opt Options, cn0DbHz float64, locked bool, lockTimeS float64) float64 {
	v := opt.DopplerBaselineHz2 + opt.KCn0Doppler*math.Exp(-cn0DbHz/opt.DCn0)
	return v * lockPenalty(opt, locked, lockTimeS)
}

func sqr(x float64) float64 { return x * x }
