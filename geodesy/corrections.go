package geodesy

import (
	"math"

	"github.com/fxbgnss/gnsscore/gtime"
)

// IonoCorrector estimates the L1-equivalent ionospheric delay (m) and its
// variance (m^2) for a line of sight. Implementations include the
// broadcast Klobuchar model (not reproduced here; out of this module's
// scope per spec.md's non-goals) and NoopCorrector for iono-free processing.
type IonoCorrector interface {
	Correct(t gtime.GpsTime, rx Llh, azRad, elRad float64) (delayM, varianceM2 float64)
}

// TropoCorrector estimates the tropospheric delay (m) and its variance
// (m^2) for a line of sight.
type TropoCorrector interface {
	Correct(t gtime.GpsTime, rx Llh, elRad float64) (delayM, varianceM2 float64)
}

// NoopCorrector returns zero delay and a caller-supplied variance budget,
// used when a correction model is unavailable or deliberately disabled
// (IONOOPT_OFF/TROPOPT_OFF in the teacher's option enum).
type NoopCorrector struct {
	VarianceM2 float64
}

func (c NoopCorrector) Correct(gtime.GpsTime, Llh, float64, float64) (float64, float64) {
	return 0.0, c.VarianceM2
}

// SaastamoinenCorrector implements the Saastamoinen tropospheric model with
// a fixed relative-humidity assumption, grounded on
// FengXuebin-gnssgo/src/common.go's TropModel.
type SaastamoinenCorrector struct {
	RelativeHumidity float64 // e.g. 0.7
}

func (c SaastamoinenCorrector) correct(t gtime.GpsTime, rx Llh, elRad float64) float64 {
	if rx.HeightM < -100.0 || rx.HeightM > 1e4 || elRad <= 0 {
		return 0.0
	}
	hgt := rx.HeightM
	if hgt < 0.0 {
		hgt = 0.0
	}
	pres := 1013.25 * math.Pow(1.0-2.2557e-5*hgt, 5.2568)
	temp := 15.0 - 6.5e-3*hgt + 273.16
	e := 6.108 * c.RelativeHumidity * math.Exp((17.15*temp-4684.0)/(temp-38.45))

	z := math.Pi/2.0 - elRad
	trph := 0.0022768 * pres / (1.0 - 0.00266*math.Cos(2.0*rx.LatRad) - 0.00028*hgt/1e3) / math.Cos(z)
	trpw := 0.002277 * (1255.0/temp + 0.05) * e / math.Cos(z)
	return trph + trpw
}

const (
	errSaastamoinenM = 0.3
	errTropOffM      = 3.0
)

// Correct implements TropoCorrector.
func (c SaastamoinenCorrector) Correct(t gtime.GpsTime, rx Llh, elRad float64) (delayM, varianceM2 float64) {
	delayM = c.correct(t, rx, elRad)
	sinEl := math.Sin(elRad)
	varianceM2 = sqr(errSaastamoinenM / (sinEl + 0.1))
	return delayM, varianceM2
}

func sqr(x float64) float64 { return x * x }
