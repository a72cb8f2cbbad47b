package game

import "time"

// pointsUnit is the countdown time worth one point at multiplier 1
// (100 points per second).
const pointsUnit = 10 * time.Millisecond

// Multiplier returns the score multiplier for a streak: +1 every three
// consecutive correct answers.
func Multiplier(streak int) int {
	if streak < 0 {
		streak = 0
	}
	return streak/3 + 1
}

// Points returns floor(remainingSeconds * 100 * Multiplier(streakBefore)).
//
// streakBefore is the streak before the current answer is counted. The
// arithmetic is done on integer nanoseconds so values like 7.3s score exactly.
func Points(remaining time.Duration, streakBefore int) int {
	if remaining <= 0 {
		return 0
	}
	return int(int64(remaining) * int64(Multiplier(streakBefore)) / int64(pointsUnit))
}
