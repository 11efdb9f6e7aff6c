// Package geodesy implements WGS-84 coordinate conversions, line-of-sight
// geometry, DOPs and the pluggable ionosphere/troposphere correction hooks
// used by the PVT solver (spec.md §4.6). The only correction models shipped
// are a no-op corrector and a Saastamoinen troposphere; there is no
// ionosphere model.
//
// Grounded on FengXuebin-gnssgo/src/common.go's Ecef2Pos/Pos2Ecef/XYZ2Enu/
// Ecef2Enu/GeoDist/SatAzel/DOPs/TropModel.
package geodesy

import "math"

// WGS-84 ellipsoid and rotation constants.
const (
	WGS84SemiMajorM = 6378137.0
	WGS84Flattening = 1.0 / 298.257223563
	EarthRotationRadPerSec = 7.2921151467e-5
	LightSpeedMps          = 299792458.0
)

// Llh is a geodetic position: latitude/longitude in radians, height in
// meters above the WGS-84 ellipsoid.
type Llh struct {
	LatRad, LonRad, HeightM float64
}

// Ecef is an ECEF position or vector in meters.
type Ecef struct {
	X, Y, Z float64
}

// Ecef2Llh converts an ECEF position to geodetic coordinates by Bowring's
// iterative method, matching the teacher's Ecef2Pos.
func Ecef2Llh(r Ecef) Llh {
	e2 := WGS84Flattening * (2.0 - WGS84Flattening)
	r2 := r.X*r.X + r.Y*r.Y

	v := WGS84SemiMajorM
	z, zk := r.Z, 0.0
	for math.Abs(z-zk) >= 1e-4 {
		zk = z
		sinp := z / math.Sqrt(r2+z*z)
		v = WGS84SemiMajorM / math.Sqrt(1.0-e2*sinp*sinp)
		z = r.Z + v*e2*sinp
	}

	var lat, lon float64
	if r2 > 1e-12 {
		lat = math.Atan(z / math.Sqrt(r2))
		lon = math.Atan2(r.Y, r.X)
	} else if r.Z > 0.0 {
		lat = math.Pi / 2.0
	} else {
		lat = -math.Pi / 2.0
	}
	height := math.Sqrt(r2+z*z) - v
	return Llh{LatRad: lat, LonRad: lon, HeightM: height}
}

// Llh2Ecef is the closed-form inverse of Ecef2Llh, matching Pos2Ecef.
func Llh2Ecef(p Llh) Ecef {
	sinp, cosp := math.Sin(p.LatRad), math.Cos(p.LatRad)
	sinl, cosl := math.Sin(p.LonRad), math.Cos(p.LonRad)
	e2 := WGS84Flattening * (2.0 - WGS84Flattening)
	v := WGS84SemiMajorM / math.Sqrt(1.0-e2*sinp*sinp)

	return Ecef{
		X: (v + p.HeightM) * cosp * cosl,
		Y: (v + p.HeightM) * cosp * sinl,
		Z: (v*(1.0-e2) + p.HeightM) * sinp,
	}
}

// enuRotation returns the 3x3 ECEF->ENU rotation matrix (row-major) at p,
// matching XYZ2Enu.
func enuRotation(p Llh) [3][3]float64 {
	sinp, cosp := math.Sin(p.LatRad), math.Cos(p.LatRad)
	sinl, cosl := math.Sin(p.LonRad), math.Cos(p.LonRad)
	return [3][3]float64{
		{-sinl, cosl, 0.0},
		{-sinp * cosl, -sinp * sinl, cosp},
		{cosp * cosl, cosp * sinl, sinp},
	}
}

// Ecef2Enu rotates an ECEF vector into the local East-North-Up frame at p.
func Ecef2Enu(p Llh, v Ecef) (e, n, u float64) {
	m := enuRotation(p)
	e = m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z
	n = m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z
	u = m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z
	return e, n, u
}

// Ecef2Ned rotates an ECEF vector into the local North-East-Down frame at p,
// the axis order PVT solutions report velocity in.
func Ecef2Ned(p Llh, v Ecef) (n, e, d float64) {
	ee, nn, u := Ecef2Enu(p, v)
	return nn, ee, -u
}

// GeoDist returns the geometric range from satellite position rs to
// receiver position rr, corrected for the Sagnac (Earth-rotation-during-
// flight-time) effect, and the unit line-of-sight vector e (receiver to
// satellite). Matches GeoDist; returns range < 0 if rs looks degenerate
// (inside the Earth).
func GeoDist(rs, rr Ecef) (rangeM float64, los Ecef) {
	norm := math.Sqrt(rs.X*rs.X + rs.Y*rs.Y + rs.Z*rs.Z)
	if norm < WGS84SemiMajorM {
		return -1.0, Ecef{}
	}
	d := Ecef{rs.X - rr.X, rs.Y - rr.Y, rs.Z - rr.Z}
	r := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
	los = Ecef{d.X / r, d.Y / r, d.Z / r}
	sagnac := EarthRotationRadPerSec * (rs.X*rr.Y - rs.Y*rr.X) / LightSpeedMps
	return r + sagnac, los
}

// SatAzEl returns the azimuth and elevation (radians) of the line-of-sight
// vector los, as seen from geodetic position p. Matches SatAzel.
func SatAzEl(p Llh, los Ecef) (azRad, elRad float64) {
	elRad = math.Pi / 2.0
	if p.HeightM <= -WGS84SemiMajorM {
		return 0, elRad
	}
	e, n, u := Ecef2Enu(p, los)
	if e*e+n*n < 1e-12 {
		azRad = 0.0
	} else {
		azRad = math.Atan2(e, n)
	}
	if azRad < 0.0 {
		azRad += 2 * math.Pi
	}
	elRad = math.Asin(u)
	return azRad, elRad
}
