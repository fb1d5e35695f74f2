package progress

import "time"

// NextStreak returns the streak after reading at now, given the previous
// reading date. Days are UTC calendar days: reading the day after extends
// the streak, a longer gap restarts it at 1, the same day leaves it alone.
func NextStreak(last *time.Time, streak int, now time.Time) int {
	if last == nil {
		return 1
	}
	switch days := daysBetween(*last, now); {
	case days == 1:
		return streak + 1
	case days > 1:
		return 1
	default:
		return streak
	}
}

func daysBetween(from, to time.Time) int {
	return int(utcDate(to).Sub(utcDate(from)).Hours() / 24)
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
