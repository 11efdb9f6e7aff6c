package geodesy

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DOPs is the dilution-of-precision bundle returned by ComputeDOPs.
type DOPs struct {
	GDOP, PDOP, HDOP, VDOP float64
}

// ComputeDOPs builds the unweighted geometry matrix from azimuth/elevation
// pairs (skipping anything below minElevationRad) and inverts GᵀG with
// gonum, matching the teacher's hand-rolled DOPs (now expressed as a real
// linear-algebra library call per Design Notes §9's dependency preference).
// Returns the zero value if fewer than 4 satellites pass the elevation mask.
func ComputeDOPs(azelRad [][2]float64, minElevationRad float64) DOPs {
	rows := make([]float64, 0, len(azelRad)*4)
	n := 0
	for _, azel := range azelRad {
		az, el := azel[0], azel[1]
		if el < minElevationRad || el <= 0.0 {
			continue
		}
		cosel, sinel := math.Cos(el), math.Sin(el)
		rows = append(rows, cosel*math.Sin(az), cosel*math.Cos(az), sinel, 1.0)
		n++
	}
	if n < 4 {
		return DOPs{}
	}

	H := mat.NewDense(n, 4, rows)
	var Q mat.Dense
	Q.Mul(H.T(), H)

	var QInv mat.Dense
	if err := QInv.Inverse(&Q); err != nil {
		return DOPs{}
	}

	xx, yy, zz, tt := QInv.At(0, 0), QInv.At(1, 1), QInv.At(2, 2), QInv.At(3, 3)
	return DOPs{
		GDOP: math.Sqrt(xx + yy + zz + tt),
		PDOP: math.Sqrt(xx + yy + zz),
		HDOP: math.Sqrt(xx + yy),
		VDOP: math.Sqrt(zz),
	}
}
