package domain

import "time"

const (
	// ticksPerSecond is the number of 100ns ticks in one second.
	ticksPerSecond = int64(time.Second / 100)

	// unixEpochTicks is the tick count of 1970-01-01T00:00:00Z counted from 0001-01-01T00:00:00Z.
	unixEpochTicks = int64(621355968000000000)
)

// Ticks converts t to 100ns intervals since 0001-01-01 UTC.
func Ticks(t time.Time) int64 {
	t = t.UTC()
	return unixEpochTicks + t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100
}

// FromTicks converts a tick count produced by Ticks back to a UTC time.
func FromTicks(ticks int64) time.Time {
	rel := ticks - unixEpochTicks
	sec := rel / ticksPerSecond
	rem := rel % ticksPerSecond
	if rem < 0 {
		sec--
		rem += ticksPerSecond
	}
	return time.Unix(sec, rem*100).UTC()
}
