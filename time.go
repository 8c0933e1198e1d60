package zkterm

import "time"

// decodeTime unpacks the device's lossy 32-bit epoch encoding. The
// decomposition below is intentionally not calendar-accurate (months cycle
// through 12 values and days through 31 regardless of the actual month
// length) — that is how the firmware encodes it, and decodeTime must
// reproduce it bit for bit rather than "fix" it. The device has no concept
// of timezone; loc attaches whatever zone the caller configured for it via
// WithTimezone.
func decodeTime(t uint32, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	v := int(t)

	second := v % 60
	v /= 60
	minute := v % 60
	v /= 60
	hour := v % 24
	v /= 24
	day := v%31 + 1
	v /= 31
	month := v%12 + 1
	v /= 12
	year := v + 2000

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
}

// encodeTime is the inverse of decodeTime, used by set_time.
func encodeTime(t time.Time) uint32 {
	year := t.Year() % 100
	month := int(t.Month()) - 1
	day := t.Day() - 1

	v := (year*12*31 + month*31 + day) * (24 * 60 * 60)
	v += t.Hour()*3600 + t.Minute()*60 + t.Second()
	return uint32(v)
}

// decodeTimeHex unpacks the 6-byte plain calendar tuple used by live-capture
// event frames: year-2000, month, day, hour, minute, second — each a single
// byte, not the packed 32-bit form decodeTime reads.
func decodeTimeHex(b []byte, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if len(b) < 6 {
		return time.Date(2000, 1, 1, 0, 0, 0, 0, loc)
	}
	year := int(b[0]) + 2000
	month := int(b[1])
	day := int(b[2])
	hour := int(b[3])
	minute := int(b[4])
	second := int(b[5])

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Date(2000, 1, 1, 0, 0, 0, 0, loc)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
}
