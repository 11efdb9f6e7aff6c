package pvt

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fxbgnss/gnsscore/geodesy"
)

// bancroftSeed computes a closed-form initial receiver position from four or
// more pseudorange measurements using Bancroft's algebraic method, used only
// to seed newtonSolve's first iteration, grounded on the package/API shape of
// satoshi-pes/gnss's bancroft.CalcPos (SatData{X,Y,Z,PR}, solved here with
// gonum/mat instead of hand-rolled linear algebra). Returns ok=false when
// fewer than four usable satellites are available or the normal matrix is
// singular, in which case the caller's own approximate position is kept.
func bancroftSeed(geoms []satGeom) (geodesy.Ecef, bool) {
	n := len(geoms)
	if n < 4 {
		return geodesy.Ecef{}, false
	}

	rows := make([]float64, 0, n*4)
	alpha := make([]float64, n)
	for i, g := range geoms {
		x, y, z := g.pos.X, g.pos.Y, g.pos.Z
		pr := g.meas.PseudorangeM
		rows = append(rows, x, y, z, pr)
		alpha[i] = 0.5 * (x*x + y*y + z*z - pr*pr)
	}

	B := mat.NewDense(n, 4, rows)
	var Bt mat.Dense
	Bt.CloneFrom(B.T())

	var normal mat.Dense
	normal.Mul(&Bt, B)
	var normalInv mat.Dense
	if err := normalInv.Inverse(&normal); err != nil {
		return geodesy.Ecef{}, false
	}

	e := mat.NewVecDense(n, nil)
	for i := range geoms {
		e.SetVec(i, 1.0)
	}
	a := mat.NewVecDense(n, alpha)

	var Bte, Bta mat.VecDense
	Bte.MulVec(&Bt, e)
	Bta.MulVec(&Bt, a)

	var u, v mat.VecDense
	u.MulVec(&normalInv, &Bte)
	v.MulVec(&normalInv, &Bta)

	uu := lorentz(&u, &u)
	uv := lorentz(&u, &v)
	vv := lorentz(&v, &v)

	if math.Abs(uu) < 1e-12 {
		return geodesy.Ecef{}, false
	}
	aCoef, bCoef, cCoef := uu, 2*uv-1, vv
	disc := bCoef*bCoef - 4*aCoef*cCoef
	if disc < 0 {
		return geodesy.Ecef{}, false
	}
	sqrtDisc := math.Sqrt(disc)
	lambda1 := (-bCoef + sqrtDisc) / (2 * aCoef)
	lambda2 := (-bCoef - sqrtDisc) / (2 * aCoef)

	pos1 := bancroftPoint(&u, &v, lambda1)
	pos2 := bancroftPoint(&u, &v, lambda2)
	return pickNearEarth(pos1, pos2), true
}

// lorentz computes the Minkowski inner product u1v1+u2v2+u3v3-u4v4 used by
// Bancroft's algorithm (the 4th component carries the clock-bias term).
func lorentz(u, v *mat.VecDense) float64 {
	s := 0.0
	for i := 0; i < 3; i++ {
		s += u.AtVec(i) * v.AtVec(i)
	}
	return s - u.AtVec(3)*v.AtVec(3)
}

func bancroftPoint(u, v *mat.VecDense, lambda float64) geodesy.Ecef {
	return geodesy.Ecef{
		X: lambda*u.AtVec(0) + v.AtVec(0),
		Y: lambda*u.AtVec(1) + v.AtVec(1),
		Z: lambda*u.AtVec(2) + v.AtVec(2),
	}
}

// pickNearEarth resolves the Bancroft quadratic's two roots by keeping the
// one whose radius is closest to the WGS-84 semi-major axis.
func pickNearEarth(a, b geodesy.Ecef) geodesy.Ecef {
	ra := math.Abs(norm(a) - geodesy.WGS84SemiMajorM)
	rb := math.Abs(norm(b) - geodesy.WGS84SemiMajorM)
	if ra <= rb {
		return a
	}
	return b
}

func norm(p geodesy.Ecef) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}
