package pvt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/noise"
	"github.com/fxbgnss/gnsscore/sid"
)

const velocityStates = 4 // 3 velocity components + one receiver clock drift term

// SolveVelocity estimates receiver velocity and clock drift from the
// Doppler observations in geoms by weighted least squares, grounded on
// ResidualDop/EstVel. It is run once after newtonSolve has converged, using
// the already-resolved satellite states and the solved receiver position.
// cov is the 4x4 inverted normal matrix ((m/s)^2 units) on success, nil
// otherwise.
func SolveVelocity(geoms []satGeom, rxPos geodesy.Ecef, opt Options, maxIterations int, convergenceMps float64) (vel [3]float64, cov *mat.Dense, clockDriftSps, clockDriftVarianceSps2 float64, ok bool) {
	state := [velocityStates]float64{}

	for iter := 0; iter < maxIterations; iter++ {
		rows := make([]float64, 0, len(geoms)*velocityStates)
		vres := make([]float64, 0, len(geoms))

		for _, g := range geoms {
			if !g.meas.HasDoppler {
				continue
			}
			freqHz, err := sid.CarrierFreqHz(g.meas.Sid, g.meas.FcnMap)
			if err != nil || freqHz <= 0 {
				continue
			}
			wavelengthM := geodesy.LightSpeedMps / freqHz
			e := g.los

			rate := g.rangeRateEcef(rxPos, state[0], state[1], state[2], e)

			dopplerVarHz2 := noise.DopplerVariance(opt.Noise, g.meas.CN0DbHz, g.meas.PLLLocked, g.meas.LockTimeS)
			sigma := math.Sqrt(dopplerVarHz2) * wavelengthM
			observedRate := -g.meas.DopplerHz * wavelengthM
			v := (observedRate - (rate + state[3] - geodesy.LightSpeedMps*g.clockDrift)) / sigma

			row := []float64{-e.X / sigma, -e.Y / sigma, -e.Z / sigma, 1.0 / sigma}
			rows = append(rows, row...)
			vres = append(vres, v)
		}

		nv := len(vres)
		if nv < velocityStates {
			return [3]float64{}, nil, 0, 0, false
		}

		H := mat.NewDense(nv, velocityStates, rows)
		vVec := mat.NewVecDense(nv, vres)

		var Ht mat.Dense
		Ht.CloneFrom(H.T())
		var normal mat.Dense
		normal.Mul(&Ht, H)
		var normalInv mat.Dense
		if err := normalInv.Inverse(&normal); err != nil {
			return [3]float64{}, nil, 0, 0, false
		}

		var Htv mat.VecDense
		Htv.MulVec(&Ht, vVec)
		var dx mat.VecDense
		dx.MulVec(&normalInv, &Htv)

		norm := 0.0
		for k := 0; k < velocityStates; k++ {
			state[k] += dx.AtVec(k)
			norm += dx.AtVec(k) * dx.AtVec(k)
		}
		if math.Sqrt(norm) < convergenceMps {
			covCopy := normalInv
			lightSpeedSqr := geodesy.LightSpeedMps * geodesy.LightSpeedMps
			return [3]float64{state[0], state[1], state[2]}, &covCopy, state[3] / geodesy.LightSpeedMps, covCopy.At(3, 3) / lightSpeedSqr, true
		}
	}
	return [3]float64{}, nil, 0, 0, false
}

// rangeRateEcef computes the Earth-rotation-corrected range rate between the
// satellite (carrying its own velocity from satGeom.vel) and a receiver at
// rxPos moving at (vx,vy,vz), projected onto line-of-sight e.
func (g satGeom) rangeRateEcef(rxPos geodesy.Ecef, vx, vy, vz float64, e geodesy.Ecef) float64 {
	relVel := geodesy.Ecef{X: g.vel.X - vx, Y: g.vel.Y - vy, Z: g.vel.Z - vz}
	rate := relVel.X*e.X + relVel.Y*e.Y + relVel.Z*e.Z
	rate += geodesy.EarthRotationRadPerSec / geodesy.LightSpeedMps *
		(g.vel.Y*rxPos.X + g.pos.Y*vx - g.vel.X*rxPos.Y - g.pos.X*vy)
	return rate
}
