package pvt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/noise"
)

type iterationResult struct {
	state           [numStates]float64
	cov             *mat.Dense
	geoms           []satGeom
	used            []bool
	residuals       []float64 // raw, meters; for reporting and RAIM scoring
	scaledResiduals []float64 // residual/sigma; for the RAIM metric
	azel            [][2]float64
	numUsed         int
}

// newtonSolve runs the weighted Gauss-Newton iteration over position plus
// per-constellation clock offsets, grounded on EstimatePos but expressed
// with gonum/mat instead of the teacher's hand-rolled Mat/LSQ. ok is false
// when the iteration never reached a solution, in which case code/msg
// explain why (CodeInsufficientMeas or CodeUnconverged); callers must not
// read res in that case.
func newtonSolve(geoms []satGeom, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options) (res iterationResult, ok bool, code Code, msg string) {
	n := len(geoms)
	state := [numStates]float64{}
	pos := initialPos

	var used []bool
	var residuals []float64
	var scaledResiduals []float64
	var azel [][2]float64

	for iter := 0; iter < opt.MaxIterations; iter++ {
		rows := make([]float64, 0, n*numStates)
		vres := make([]float64, 0, n)
		used = make([]bool, n)
		residuals = make([]float64, n)
		scaledResiduals = make([]float64, n)
		azel = make([][2]float64, n)
		slotSeen := make([]bool, len(clockSlots))
		nv := 0

		for i, g := range geoms {
			if rg, err := resolveSatellite(g.meas, pos, rxTime); err == nil {
				g = rg
			}
			satPos := g.pos
			rangeM, los := geodesy.GeoDist(satPos, pos)
			if rangeM < 0 {
				continue
			}
			llh := geodesy.Ecef2Llh(pos)
			az, el := geodesy.SatAzEl(llh, los)
			azel[i] = [2]float64{az, el}
			if el < opt.MinElevationRad {
				continue
			}

			var ionoM, ionoVar, tropoM, tropoVar float64
			if opt.Iono != nil {
				ionoM, ionoVar = opt.Iono.Correct(rxTime, llh, az, el)
			}
			if opt.Tropo != nil {
				tropoM, tropoVar = opt.Tropo.Correct(rxTime, llh, el)
			}

			// state[3] is the common receiver clock bias (GPS time scale);
			// state[3+slot] for slot>0 is that constellation's offset from
			// it (ISB), added on top, matching the teacher's x[4..7] terms.
			slot := clockSlotIndex(g.meas.Sid.Code.Constellation())
			predicted := rangeM + state[3] + state[3+slot] - geodesy.LightSpeedMps*g.clockBias + ionoM + tropoM
			v := g.meas.PseudorangeM - predicted
			residuals[i] = v

			variance := noisePseudorangeVariance(opt, g, el) + g.variance + ionoVar + tropoVar
			sigma := math.Sqrt(variance)
			scaledResiduals[i] = v / sigma

			row := make([]float64, numStates)
			row[0], row[1], row[2] = los.X, los.Y, los.Z
			row[3] = -1.0
			if slot > 0 {
				row[3+slot] = -1.0
			}
			for k := range row {
				row[k] /= sigma
			}
			rows = append(rows, row...)
			vres = append(vres, v/sigma)
			used[i] = true
			slotSeen[slot] = true
			nv++
		}

		// Pin any constellation's ISB state that no measurement this epoch
		// touches to zero; otherwise its column in H is all-zero and the
		// normal matrix is singular. Mirrors RaimFde/EstimatePos's
		// "constraint to avoid rank-deficient" pseudo-measurement rows.
		for slot := 1; slot < len(clockSlots); slot++ {
			if slotSeen[slot] {
				continue
			}
			const constraintSigma = 0.1 // variance 0.01, a tight pin toward zero
			row := make([]float64, numStates)
			row[3+slot] = 1.0 / constraintSigma
			rows = append(rows, row...)
			vres = append(vres, 0.0)
			nv++
		}

		if nv < numStates {
			return iterationResult{}, false, CodeInsufficientMeas, fmt.Sprintf("lack of valid measurements nv=%d", nv)
		}

		H := mat.NewDense(nv, numStates, rows)
		v := mat.NewVecDense(nv, vres)

		var Ht mat.Dense
		Ht.CloneFrom(H.T())
		var normalMatrix mat.Dense
		normalMatrix.Mul(&Ht, H)

		var normalInv mat.Dense
		if err := normalInv.Inverse(&normalMatrix); err != nil {
			return iterationResult{}, false, CodeUnconverged, "normal matrix singular"
		}

		var Htv mat.VecDense
		Htv.MulVec(&Ht, v)
		var dx mat.VecDense
		dx.MulVec(&normalInv, &Htv)

		norm := 0.0
		for k := 0; k < numStates; k++ {
			norm += dx.AtVec(k) * dx.AtVec(k)
		}
		for k := 0; k < 3; k++ {
			pos = addComponent(pos, k, dx.AtVec(k))
		}
		for k := 3; k < numStates; k++ {
			state[k] += dx.AtVec(k)
		}
		state[0], state[1], state[2] = pos.X, pos.Y, pos.Z

		if math.Sqrt(norm) < opt.ConvergenceM {
			covCopy := normalInv
			return iterationResult{
				state:           state,
				cov:             &covCopy,
				geoms:           geoms,
				used:            used,
				residuals:       residuals,
				scaledResiduals: scaledResiduals,
				azel:            azel,
				numUsed:         nv,
			}, true, CodeConvergedRaimPassed, ""
		}
	}
	return iterationResult{}, false, CodeUnconverged, fmt.Sprintf("iteration divergent i=%d", opt.MaxIterations)
}

func addComponent(p geodesy.Ecef, k int, d float64) geodesy.Ecef {
	switch k {
	case 0:
		p.X += d
	case 1:
		p.Y += d
	case 2:
		p.Z += d
	}
	return p
}

func noisePseudorangeVariance(opt Options, g satGeom, elRad float64) float64 {
	return noise.PseudorangeVariance(opt.Noise, g.meas.Sid.Code, elRad, g.meas.CN0DbHz, g.meas.PLLLocked, g.meas.LockTimeS)
}

// validateSolution applies the two hard filtering gates of spec.md §4.5
// that are independent of RAIM: GDOP and altitude. Either failure is
// terminal for this epoch; RAIM cannot repair a geometry or altitude fault.
func validateSolution(res iterationResult, opt Options) (geodesy.DOPs, Code, bool) {
	azel := make([][2]float64, 0, len(res.azel))
	for i, u := range res.used {
		if u {
			azel = append(azel, res.azel[i])
		}
	}
	dops := geodesy.ComputeDOPs(azel, opt.MinElevationRad)
	if dops.GDOP <= 0.0 || dops.GDOP > opt.MaxGdop {
		return dops, CodePdopTooHigh, false
	}

	llh := geodesy.Ecef2Llh(geodesy.Ecef{X: res.state[0], Y: res.state[1], Z: res.state[2]})
	if llh.HeightM < -1000.0 || llh.HeightM > 1_000_000.0 {
		return dops, CodeBadAltitude, false
	}
	return dops, CodeConvergedRaimPassed, true
}

// raimThresholdFactor is spec.md §4.5's literal RAIM pass/fail multiplier.
const raimThresholdFactor = 2.5

// raimMetric computes spec.md §4.5's normalized residual test:
// m = ||r/sigma|| / sqrt(n_meas - n_state), with threshold
// 2.5*sqrt(n_meas/(n_meas-n_state)). n_meas doubles when velocity is also
// being solved this epoch. A metric of +Inf (non-positive degrees of
// freedom) always fails.
func raimMetric(res iterationResult, velocityIncluded bool) (m, threshold float64) {
	vv := 0.0
	for i, u := range res.used {
		if !u {
			continue
		}
		vv += res.scaledResiduals[i] * res.scaledResiduals[i]
	}
	nMeas := float64(res.numUsed)
	if velocityIncluded {
		nMeas *= 2
	}
	denom := nMeas - float64(numStates)
	if denom <= 0 {
		return math.MaxFloat64, 0
	}
	m = math.Sqrt(vv) / math.Sqrt(denom)
	threshold = raimThresholdFactor * math.Sqrt(nMeas/denom)
	return m, threshold
}

// solveAndValidate runs newtonSolve then the GDOP/altitude gates in one
// call, for use by both the main solve path and RAIM's per-exclusion trials.
func solveAndValidate(geoms []satGeom, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options) (iterationResult, geodesy.DOPs, Code, string, bool) {
	res, ok, code, msg := newtonSolve(geoms, rxTime, initialPos, opt)
	if !ok {
		return res, geodesy.DOPs{}, code, msg, false
	}
	dops, gateCode, gateOk := validateSolution(res, opt)
	if !gateOk {
		return res, dops, gateCode, "validation gate failed", false
	}
	return res, dops, CodeConvergedRaimPassed, msg, true
}
