package pvt

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/fxbgnss/gnsscore/ephemeris"
	"github.com/fxbgnss/gnsscore/geodesy"
	"github.com/fxbgnss/gnsscore/gtime"
	"github.com/fxbgnss/gnsscore/sid"
)

// resolveGeoms filters measurements by selection policy and ephemeris
// validity, resolving the surviving ones to satellite geometry. It reports
// separately whether anything was rejected purely for ephemeris validity,
// for diagnostic messages. For Selection.GpsL1caWhenPossible it enforces the
// stateful cap of spec.md §4.5: every GPS L1CA measurement is admitted, but
// every other signal only up to numStates+RaimMaxExclusions admissions, so
// RAIM still has a core GPS subset to operate on.
func resolveGeoms(measurements []Measurement, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options) (geoms []satGeom, anyEphemerisValid bool) {
	otherSignalsAdmitted := 0
	otherSignalsCap := numStates + opt.RaimMaxExclusions

	for _, m := range measurements {
		countsAgainstCap := false
		if opt.Selection == GpsL1caWhenPossible {
			isGpsL1CA := m.Sid.Code.Constellation() == sid.GPS && m.Sid.Code == sid.GpsL1CA
			if !isGpsL1CA {
				if otherSignalsAdmitted >= otherSignalsCap {
					continue
				}
				countsAgainstCap = true
			}
		} else if !opt.Selection.accepts(m) {
			continue
		}
		if ephemeris.CalcStatus(m.Eph, rxTime) != ephemeris.StatusValid {
			continue
		}
		anyEphemerisValid = true
		g, err := resolveSatellite(m, initialPos, rxTime)
		if err != nil {
			continue
		}
		geoms = append(geoms, g)
		if countsAgainstCap {
			otherSignalsAdmitted++
		}
	}
	return geoms, anyEphemerisValid
}

// EstimatePosition solves one epoch: filters measurements by selection
// policy and ephemeris validity, resolves satellite geometry, runs the
// weighted Newton iteration, applies the GDOP/altitude gates and the
// velocity lockout, then either skips, passes, or repairs RAIM depending on
// redundancy (spec.md §4.5/§4.7, grounded on EstimatePos/ValSol/RaimFde).
func EstimatePosition(measurements []Measurement, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options) Solution {
	geoms, anyEphemerisValid := resolveGeoms(measurements, rxTime, initialPos, opt)
	sol := Solution{Time: rxTime}

	if len(geoms) < numStates {
		sol.Code = CodeInsufficientMeas
		if !anyEphemerisValid {
			sol.Message = "no satellite passed ephemeris validity check"
		} else {
			sol.Message = fmt.Sprintf("only %d usable measurements, need %d", len(geoms), numStates)
		}
		return sol
	}
	if seeded, ok := bancroftSeed(geoms); ok {
		initialPos = seeded
	}

	res, dops, code, msg, ok := solveAndValidate(geoms, rxTime, initialPos, opt)
	if !ok {
		sol.Code = code
		sol.Message = msg
		return sol
	}

	vel, velCov, drift, driftVar, velOk := solveVelocityFor(res, opt)
	if velOk {
		speed := math.Sqrt(vel[0]*vel[0] + vel[1]*vel[1] + vel[2]*vel[2])
		if speed >= velocityLockoutMps {
			sol.Code = CodeVelocityLockout
			sol.Message = fmt.Sprintf("ECEF speed %.1f m/s at or above the %.2f m/s export-control lockout", speed, velocityLockoutMps)
			return sol
		}
	}

	var excluded []Measurement
	finalCode := CodeConvergedRaimSkipped
	finalMsg := msg

	switch {
	case !opt.RaimEnabled || res.numUsed < numStates+2:
		finalCode = CodeConvergedRaimSkipped
	default:
		m, threshold := raimMetric(res, velOk)
		if m < threshold {
			finalCode = CodeConvergedRaimPassed
		} else {
			var repRes iterationResult
			var repDops geodesy.DOPs
			repRes, repDops, finalCode, finalMsg, excluded = raimRepair(geoms, rxTime, initialPos, opt, velOk)
			if finalCode == CodeConvergedRaimRepaired {
				res, dops = repRes, repDops
				vel, velCov, drift, driftVar, velOk = solveVelocityFor(res, opt)
			}
		}
	}

	return finishSolution(sol, res, dops, finalCode, finalMsg, excluded, vel, velCov, drift, driftVar, velOk, opt)
}

// solveVelocityFor runs SolveVelocity over the measurements newtonSolve
// actually used (post elevation-mask filtering) at the solved position.
func solveVelocityFor(res iterationResult, opt Options) (vel [3]float64, velCov *mat.Dense, drift, driftVar float64, ok bool) {
	usedGeoms := make([]satGeom, 0, len(res.geoms))
	for i, g := range res.geoms {
		if res.used[i] {
			usedGeoms = append(usedGeoms, g)
		}
	}
	rxPos := geodesy.Ecef{X: res.state[0], Y: res.state[1], Z: res.state[2]}
	return SolveVelocity(usedGeoms, rxPos, opt, opt.MaxIterations, 1e-6)
}

// raimRepair implements spec.md §4.5's repair procedure: iteratively try
// excluding each not-yet-excluded signal, retaining the exclusion with the
// best (lowest) RAIM metric. If no single exclusion in a round passes the
// RAIM test outright, the best-metric exclusion is kept and a further round
// is attempted, up to Options.RaimMaxExclusions. If every round still fails
// and the strategy isn't already GPS-only, a GPS-only attempt is made as a
// last resort before reporting CodeRaimRepairFailed.
func raimRepair(geoms []satGeom, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options, velocityIncluded bool) (iterationResult, geodesy.DOPs, Code, string, []Measurement) {
	if len(geoms)-1 < numStates {
		return iterationResult{}, geodesy.DOPs{}, CodeRaimRepairImpossible, "fewer than numStates+1 measurements, cannot attempt any exclusion", nil
	}

	maxRounds := opt.RaimMaxExclusions
	if maxRounds < 1 {
		maxRounds = 1
	}

	working := geoms
	var excluded []Measurement
	var lastRes iterationResult
	var lastDops geodesy.DOPs
	var lastMsg string
	haveResult := false

	for round := 0; round < maxRounds; round++ {
		if len(working)-1 < numStates {
			break
		}
		idx, res, dops, msg, m, threshold, found := bestExclusionRound(working, rxTime, initialPos, opt, velocityIncluded)
		if !found {
			break // no single exclusion even converges and passes GDOP/altitude
		}
		excluded = append(excluded, working[idx].meas)
		working = excludeAt(working, idx)
		lastRes, lastDops, lastMsg, haveResult = res, dops, msg, true

		if m < threshold {
			return res, dops, CodeConvergedRaimRepaired, fmt.Sprintf("RAIM repaired after excluding %d satellite(s): %s", len(excluded), msg), excluded
		}
	}

	if opt.Selection != GpsOnly {
		if res, dops, msg, ok := gpsOnlyFallback(geoms, rxTime, initialPos, opt, velocityIncluded); ok {
			return res, dops, CodeConvergedRaimRepaired, "RAIM repaired via GPS-only fallback: " + msg, nonGpsMeasurements(geoms)
		}
	}

	if haveResult {
		return lastRes, lastDops, CodeRaimRepairFailed, fmt.Sprintf("RAIM exhausted %d exclusion round(s), best metric still failing: %s", len(excluded), lastMsg), excluded
	}
	return iterationResult{}, geodesy.DOPs{}, CodeRaimRepairFailed, "RAIM found no exclusion that converges and passes the GDOP/altitude gates", excluded
}

// bestExclusionRound tries excluding each satellite in working in turn,
// keeping whichever single exclusion yields the lowest RAIM metric among
// those that converge and pass the GDOP/altitude gates.
func bestExclusionRound(working []satGeom, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options, velocityIncluded bool) (idx int, best iterationResult, bestDops geodesy.DOPs, bestMsg string, bestM, bestThreshold float64, found bool) {
	idx = -1
	bestM = math.MaxFloat64

	for i := range working {
		trial := excludeAt(working, i)
		res, dops, _, msg, ok := solveAndValidate(trial, rxTime, initialPos, opt)
		if !ok {
			continue
		}
		m, threshold := raimMetric(res, velocityIncluded)
		if m < bestM {
			idx, best, bestDops, bestMsg, bestM, bestThreshold = i, res, dops, msg, m, threshold
			found = true
		}
	}
	return idx, best, bestDops, bestMsg, bestM, bestThreshold, found
}

// gpsOnlyFallback retries the solve using only GPS measurements, the last
// resort spec.md §4.5 describes when every RAIM exclusion round still fails.
func gpsOnlyFallback(geoms []satGeom, rxTime gtime.GpsTime, initialPos geodesy.Ecef, opt Options, velocityIncluded bool) (iterationResult, geodesy.DOPs, string, bool) {
	gpsOnly := filterGps(geoms)
	if len(gpsOnly) < numStates {
		return iterationResult{}, geodesy.DOPs{}, "", false
	}
	res, dops, _, msg, ok := solveAndValidate(gpsOnly, rxTime, initialPos, opt)
	if !ok {
		return iterationResult{}, geodesy.DOPs{}, "", false
	}
	m, threshold := raimMetric(res, velocityIncluded)
	if m >= threshold && res.numUsed >= numStates+2 {
		return iterationResult{}, geodesy.DOPs{}, "", false
	}
	return res, dops, msg, true
}

func filterGps(geoms []satGeom) []satGeom {
	out := make([]satGeom, 0, len(geoms))
	for _, g := range geoms {
		if g.meas.Sid.Code.Constellation() == sid.GPS {
			out = append(out, g)
		}
	}
	return out
}

func nonGpsMeasurements(geoms []satGeom) []Measurement {
	var out []Measurement
	for _, g := range geoms {
		if g.meas.Sid.Code.Constellation() != sid.GPS {
			out = append(out, g.meas)
		}
	}
	return out
}

func excludeAt(geoms []satGeom, idx int) []satGeom {
	out := make([]satGeom, 0, len(geoms)-1)
	for i, g := range geoms {
		if i == idx {
			continue
		}
		out = append(out, g)
	}
	return out
}

func finishSolution(sol Solution, res iterationResult, dops geodesy.DOPs, code Code, msg string, excluded []Measurement, vel [3]float64, velCov *mat.Dense, drift, driftVar float64, velOk bool, opt Options) Solution {
	sol.Code = code
	sol.Message = msg
	if code < 0 {
		return sol
	}

	sol.ID = uuid.New()
	sol.Pos = geodesy.Ecef{X: res.state[0], Y: res.state[1], Z: res.state[2]}
	sol.LLH = geodesy.Ecef2Llh(sol.Pos)
	sol.ClockBiasS = res.state[3] / geodesy.LightSpeedMps
	sol.ISBSeconds = map[sid.Constellation]float64{}
	sol.ISBVarianceS2 = map[sid.Constellation]float64{}
	lightSpeedSqr := geodesy.LightSpeedMps * geodesy.LightSpeedMps
	for i := 1; i < len(clockSlots); i++ {
		sol.ISBSeconds[clockSlots[i]] = res.state[3+i] / geodesy.LightSpeedMps
		if res.cov != nil {
			sol.ISBVarianceS2[clockSlots[i]] = res.cov.At(3+i, 3+i) / lightSpeedSqr
		}
	}
	sol.DOPs = dops
	for _, u := range res.used {
		if u {
			sol.NumSatsUsed++
		}
	}
	for _, m := range excluded {
		sol.ExcludedSats = append(sol.ExcludedSats, m.Sid)
	}

	if res.cov != nil {
		posCov := mat.NewDense(3, 3, nil)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				posCov.Set(r, c, res.cov.At(r, c))
			}
		}
		sol.PosCovECEF = posCov
		sol.PosVarianceM2 = [3]float64{res.cov.At(0, 0), res.cov.At(1, 1), res.cov.At(2, 2)}
		sol.ClockVarianceS2 = res.cov.At(3, 3) / lightSpeedSqr
	}

	if velOk {
		sol.Vel = vel
		n, e, d := geodesy.Ecef2Ned(sol.LLH, geodesy.Ecef{X: vel[0], Y: vel[1], Z: vel[2]})
		sol.VelNED = [3]float64{n, e, d}
		sol.ClockDriftSps = drift
		sol.ClockDriftVarianceSps2 = driftVar
		if velCov != nil {
			sol.VelVarianceM2S2 = [3]float64{velCov.At(0, 0), velCov.At(1, 1), velCov.At(2, 2)}
		}
	}
	sol.Valid = true
	return sol
}
