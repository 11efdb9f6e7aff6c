package gtime

import "math"

// Mjd is a Modified Julian Day expressed as an integer day (the MJD of
// 00:00 UTC on that calendar day) plus the fraction of the day elapsed.
// Splitting integer day from fractional day (rather than one float64 MJD)
// keeps round trips accurate to sub-microsecond precision the way the
// teacher's two-field Gtime{Time uint64; Sec float64} does for Unix time.
type Mjd struct {
	Day  int64
	Frac float64
}

// UtcTime is calendar broken-down time (spec.md §3). Sec may equal 60 during
// a positive leap-second event's extra second.
type UtcTime struct {
	Year, Month, Day   int
	Hour, Minute       int
	Sec                float64 // integer part plus fraction, may reach 60.x
	DayOfYear          int
	DayOfWeek          int // 0=Sunday .. 6=Saturday
}

// Date2Mjd converts a Gregorian calendar date (ignoring time-of-day) to its
// Modified Julian Day number, using the Fliegel & Van Flandern (1968)
// integer Julian Day Number algorithm.
func Date2Mjd(year, month, day int) int64 {
	a := (int64(month) - 14) / 12
	jdn := int64(day) - 32075 +
		1461*(int64(year)+4800+a)/4 +
		367*(int64(month)-2-a*12)/12 -
		3*((int64(year)+4900+a)/100)/4
	return jdn - 2400001
}

// Mjd2Date is the inverse of Date2Mjd (Fliegel & Van Flandern inverse
// algorithm, operating on the noon-referenced Julian Day Number).
func Mjd2Date(mjdDay int64) (year, month, day int) {
	jd := mjdDay + 2400001
	l := jd + 68569
	n := 4 * l / 146097
	l = l - (146097*n+3)/4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	k := l - 2447*j/80
	l = j / 11
	j = j + 2 - 12*l
	i = 100*(n-49) + i + l
	return int(i), int(j), int(k)
}

// Date2Gps converts a full UtcTime (calendar + time-of-day, already in GPS
// time — no leap-second adjustment) to GpsTime via the MJD pivot.
func Date2Gps(u UtcTime) GpsTime {
	return Mjd2Gps(Date2MjdFull(u))
}

// Gps2Date converts a GpsTime (no leap-second adjustment) to a broken-down
// UtcTime via the MJD pivot.
func Gps2Date(t GpsTime) UtcTime {
	return Mjd2DateFull(Gps2Mjd(t))
}

// Date2MjdFull folds time-of-day into the fractional part of the MJD.
func Date2MjdFull(u UtcTime) Mjd {
	day := Date2Mjd(u.Year, u.Month, u.Day)
	secOfDay := float64(u.Hour)*3600 + float64(u.Minute)*60 + u.Sec
	// A Sec of 60.x (leap second) pushes one extra second into the next day;
	// normalize below.
	extraDays := int64(math.Floor(secOfDay / DaySeconds))
	secOfDay -= float64(extraDays) * DaySeconds
	return Mjd{Day: day + extraDays, Frac: secOfDay / DaySeconds}
}

// Mjd2DateFull is the inverse of Date2MjdFull.
func Mjd2DateFull(m Mjd) UtcTime {
	year, month, day := Mjd2Date(m.Day)
	secOfDay := m.Frac * DaySeconds
	hour := int(math.Floor(secOfDay / 3600))
	secOfDay -= float64(hour) * 3600
	minute := int(math.Floor(secOfDay / 60))
	sec := secOfDay - float64(minute)*60
	return UtcTime{
		Year: year, Month: month, Day: day,
		Hour: hour, Minute: minute, Sec: sec,
		DayOfYear: dayOfYear(m.Day, year),
		DayOfWeek: dayOfWeek(m.Day),
	}
}

func dayOfYear(mjdDay int64, year int) int {
	jan1 := Date2Mjd(year, 1, 1)
	return int(mjdDay-jan1) + 1
}

func dayOfWeek(mjdDay int64) int {
	// MJD 0 (1858-11-17) was a Wednesday (weekday index 3).
	return int(((mjdDay % 7) + 7 + 3) % 7)
}

// Gps2Mjd converts GPS week/tow to MJD, the pivot spec.md §4.1 describes all
// UTC conversions as routing through.
func Gps2Mjd(t GpsTime) Mjd {
	totalSec := float64(t.WN)*WeekSeconds + t.TOW
	wholeDays := int64(math.Floor(totalSec / DaySeconds))
	secRemainder := totalSec - float64(wholeDays)*DaySeconds
	return Mjd{Day: MjdJan6_1980 + wholeDays, Frac: secRemainder / DaySeconds}
}

// Mjd2Gps is the inverse of Gps2Mjd.
func Mjd2Gps(m Mjd) GpsTime {
	daysSinceEpoch := m.Day - MjdJan6_1980
	totalSec := float64(daysSinceEpoch)*DaySeconds + m.Frac*DaySeconds
	wn := int(math.Floor(totalSec / WeekSeconds))
	tow := totalSec - float64(wn)*WeekSeconds
	return GpsTime{WN: wn, TOW: tow}
}
