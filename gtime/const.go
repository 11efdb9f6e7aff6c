// Package gtime implements the multi-scale GNSS time model: GPS
// week/seconds-of-week, UTC broken-down time, GLONASS calendar time and
// Modified Julian Day, plus the invertible conversions between them across
// week-number rollovers and leap-second events.
//
// Grounded on FengXuebin-gnssgo/src/common.go's Epoch2Time/Time2Epoch/
// GpsT2Time/Time2GpsT/GpsT2Utc/Utc2GpsT family, generalized to the explicit
// GPS/UTC/GLONASS/MJD types spec.md's data model calls for instead of the
// teacher's single internal Gtime(unix-seconds) representation.
package gtime

// Constants fixed by spec.md §6.
const (
	WeekSeconds           = 604800.0
	DaySeconds            = 86400.0
	MinuteSeconds         = 60.0
	GpsEpochUnix          = 315964800 // 1980-01-06T00:00:00Z, Unix seconds
	MjdJan6_1980          = 44244     // Modified Julian Day of the GPS epoch
	GalWeekToGpsWeek      = 1024
	BdsWeekToGpsWeek      = 1356
	BdsSecondToGpsSecond  = 14
	GloEpochWN            = 834
	GloEpochTOW           = 75610.0
	GpsWeekReference      = 1876 // disambiguates 10-bit broadcast week numbers
	unknownWeekNumber     = -1
	moscowUtcOffsetHours  = 3
)

// UnknownWeek is the sentinel week number meaning "week number not known"
// (spec.md §3 Data Model).
const UnknownWeek = unknownWeekNumber
