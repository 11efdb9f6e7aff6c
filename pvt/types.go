package pvt

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/fxbgnss/gnsscore/ephemeris"
	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/noise"
	"github.com/fxbgnss/gnsscore/sid"
)

// Measurement is one satellite's pseudorange (and optional Doppler)
// observation at the receiver's approximate time of reception, plus the
// signal-quality fields the noise model (spec.md §4.4) needs: carrier-to-
// noise density, PLL lock state and lock time.
type Measurement struct {
	Sid          sid.SID
	PseudorangeM float64
	DopplerHz    float64
	HasDoppler   bool

	// CN0DbHz is the carrier-to-noise density ratio (dB-Hz) driving both the
	// pseudorange and Doppler exponential noise terms.
	CN0DbHz float64
	// PLLLocked reports whether the carrier tracking loop is locked; an
	// unlocked PLL applies noise.Options.UnlockedPenalty to both variances.
	PLLLocked bool
	// LockTimeS is seconds since the PLL last achieved lock, ramping the
	// noise penalty from 4x down to 1x over noise.Options.LockRampS.
	LockTimeS float64

	Eph    ephemeris.Ephemeris
	FcnMap *sid.FcnMap // only consulted for GLONASS FDMA wavelength
}

// Selection chooses which signals feed the solve (spec.md §4.7).
type Selection int

const (
	AllConstellations Selection = iota
	GpsOnly
	// GpsL1caWhenPossible uses every GPS L1CA measurement unconditionally and
	// admits other signals only up to numStates+RaimMaxExclusions, so RAIM
	// can still operate on the core GPS subset (spec.md §4.5). The cap is
	// stateful across one EstimatePosition call and is therefore enforced in
	// resolveGeoms, not in accepts.
	GpsL1caWhenPossible
	L1Only
)

func (s Selection) accepts(m Measurement) bool {
	c := m.Sid.Code.Constellation()
	switch s {
	case GpsOnly:
		return c == sid.GPS
	case L1Only:
		if _, ok := sid.Info(m.Sid.Code); !ok {
			return false
		}
		return m.Sid.Code == sid.GloL1OF || m.Sid.Code == sid.GpsL1CA || m.Sid.Code == sid.GalE1B ||
			m.Sid.Code == sid.BdsB1I || m.Sid.Code == sid.QzsL1CA || m.Sid.Code == sid.SbasL1
	default:
		return true
	}
}

// Options parameterizes the solve (spec.md §4.7).
type Options struct {
	Selection         Selection
	Noise             noise.Options
	Iono              geodesy.IonoCorrector
	Tropo             geodesy.TropoCorrector
	MinElevationRad   float64
	MaxGdop           float64
	MaxIterations     int
	ConvergenceM      float64
	RaimEnabled       bool
	RaimMaxExclusions int
}

// DefaultOptions mirrors RTKLIB's stock point-positioning configuration,
// with MaxGdop at spec.md §4.5's mandated 20 (PDOP_TOO_HIGH threshold).
func DefaultOptions() Options {
	return Options{
		Selection:         AllConstellations,
		Noise:             noise.DefaultOptions(),
		Iono:              geodesy.NoopCorrector{VarianceM2: 25.0},
		Tropo:             geodesy.SaastamoinenCorrector{RelativeHumidity: 0.7},
		MinElevationRad:   5.0 * 3.141592653589793 / 180.0,
		MaxGdop:           20.0,
		MaxIterations:     10,
		ConvergenceM:      1e-4,
		RaimEnabled:       true,
		RaimMaxExclusions: 2,
	}
}

// Code is the solver return-code taxonomy, fixed to spec.md §4.5/§6's
// literal numbering so callers can match on the numeric value directly.
type Code int

const (
	CodeConvergedRaimSkipped  Code = 2  // converged; too few measurements for RAIM, or RAIM disabled
	CodeConvergedRaimRepaired Code = 1  // converged after RAIM excluded one or more satellites
	CodeConvergedRaimPassed   Code = 0  // converged and the RAIM residual test passed outright
	CodePdopTooHigh           Code = -1 // GDOP exceeded Options.MaxGdop
	CodeBadAltitude           Code = -2 // solved altitude outside [-1000m, 1_000_000m]
	CodeVelocityLockout       Code = -3 // |v_ECEF| >= velocityLockoutMps (export-control constraint)
	CodeRaimRepairFailed      Code = -4 // RAIM repair tried and failed to find a passing exclusion
	CodeRaimRepairImpossible  Code = -5 // not enough redundancy to attempt a RAIM exclusion at all
	CodeUnconverged           Code = -6 // Newton iteration did not converge, or the normal matrix was singular
	CodeInsufficientMeas      Code = -7 // fewer than numStates usable satellites
)

func (c Code) String() string {
	switch c {
	case CodeConvergedRaimSkipped:
		return "CONVERGED_RAIM_SKIPPED"
	case CodeConvergedRaimRepaired:
		return "CONVERGED_RAIM_REPAIRED"
	case CodeConvergedRaimPassed:
		return "CONVERGED_RAIM_PASSED"
	case CodePdopTooHigh:
		return "PDOP_TOO_HIGH"
	case CodeBadAltitude:
		return "BAD_ALTITUDE"
	case CodeVelocityLockout:
		return "VELOCITY_LOCKOUT"
	case CodeRaimRepairFailed:
		return "RAIM_REPAIR_FAILED"
	case CodeRaimRepairImpossible:
		return "RAIM_REPAIR_IMPOSSIBLE"
	case CodeUnconverged:
		return "UNCONVERGED"
	case CodeInsufficientMeas:
		return "INSUFFICIENT_MEASUREMENTS"
	default:
		return "UNKNOWN"
	}
}

// clockSlots enumerates the per-constellation clock-offset states solved
// for alongside position, matching the teacher's NXParam=8 (3 position + 5
// clock terms: GPS receiver clock plus GLO/GAL/BDS/QZS offsets from it).
var clockSlots = []sid.Constellation{sid.GPS, sid.GLO, sid.GAL, sid.BDS, sid.QZS}

func clockSlotIndex(c sid.Constellation) int {
	for i, s := range clockSlots {
		if s == c {
			return i
		}
	}
	return 0 // SBAS and anything unlisted rides on the GPS clock term
}

// numStates is the state vector length: 3 position + len(clockSlots) clocks.
const numStates = 3 + len(clockSlots)

// velocityLockoutMps is the US export-control velocity lockout (spec.md
// §4.5, §9 Design Notes): 1000 knots in m/s. A solution whose ECEF speed
// reaches or exceeds this is rejected outright (CodeVelocityLockout),
// regardless of how well it otherwise converged.
const velocityLockoutMps = 514.44

// Solution is the result of one epoch's solve (spec.md §4.7).
type Solution struct {
	ID   uuid.UUID
	Time gtime.GpsTime

	Pos geodesy.Ecef
	LLH geodesy.Llh
	Vel [3]float64 // ECEF m/s
	// VelNED is Vel re-expressed in the local North-East-Down frame at LLH.
	VelNED [3]float64

	ClockBiasS    float64
	ClockDriftSps float64
	ISBSeconds    map[sid.Constellation]float64

	DOPs geodesy.DOPs

	// PosCovECEF is the 3x3 ECEF position covariance (m^2) from the final
	// Newton iteration's inverted normal matrix; nil when the solve never
	// converged.
	PosCovECEF *mat.Dense
	// PosVarianceM2 is PosCovECEF's diagonal, for callers that don't want to
	// pull in gonum/mat.
	PosVarianceM2          [3]float64
	ClockVarianceS2        float64
	ISBVarianceS2          map[sid.Constellation]float64
	VelVarianceM2S2        [3]float64 // ECEF velocity variance diagonal
	ClockDriftVarianceSps2 float64

	NumSatsUsed  int
	ExcludedSats []sid.SID

	Code    Code
	Message string
	// Valid is true for every non-negative Code: the position/velocity
	// fields above are populated and usable.
	Valid bool
}
