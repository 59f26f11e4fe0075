package comments

import "math"

// Average returns the arithmetic mean of ratings rounded half-up to one
// decimal place. An accommodation without comments averages to 0.0 rather
// than erroring.
func Average(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0.0
	}
	var total int
	for _, r := range ratings {
		total += r
	}
	mean := float64(total) / float64(len(ratings))
	return RoundHalfUp(mean)
}

// RoundHalfUp rounds to one decimal, ties away from zero (4.25 -> 4.3).
func RoundHalfUp(value float64) float64 {
	return math.Floor(value*10+0.5) / 10
}
