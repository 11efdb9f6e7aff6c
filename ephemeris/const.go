package ephemeris

// Gravitational and rotation constants by constellation, matching
// FengXuebin-gnssgo/src/ephemeris.go's MU_GPS/MU_GLO/MU_GAL/MU_CMP and
// OMGE/OMGE_GLO/OMGE_GAL/OMGE_CMP.
const (
	muGPS = 3.9860050e14
	muGLO = 3.9860044e14
	muGAL = 3.986004418e14
	muBDS = 3.986004418e14

	omegaEarthGPS = 7.2921151467e-5
	omegaEarthGLO = 7.292115e-5
	omegaEarthGAL = 7.2921151467e-5
	omegaEarthBDS = 7.292115e-5

	earthRadiusGLO = 6378136.0
	j2GLO          = 1.0826257e-3

	sin5Deg = -0.0871557427476582
	cos5Deg = 0.9961946980917456

	aRefMEO      = 27906100.0
	aRefIGSOGEO  = 42162200.0

	rtolKepler    = 1e-13
	maxIterKepler = 30

	tstepGLO    = 30.0
	maxStepsGLO = 30
	errEphGLO   = 5.0

	lightSpeedMps = 299792458.0
)

func sqr(x float64) float64 { return x * x }
