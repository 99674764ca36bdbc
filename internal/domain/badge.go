package domain

import "math"

// Badge is the qualitative grade shown next to a result.
type Badge string

const (
	BadgeExcellent        Badge = "Excellent"
	BadgeGood             Badge = "Good"
	BadgeAverage          Badge = "Average"
	BadgeNeedsImprovement Badge = "Needs Improvement"
)

var badgeThresholds = []struct {
	minPercent int
	badge      Badge
}{
	{90, BadgeExcellent},
	{70, BadgeGood},
	{50, BadgeAverage},
}

// ClassifyBadge grades score out of total. Thresholds are inclusive lower
// bounds checked from the highest down; comparison is done on integers so
// that exactly 90% stays Excellent.
func ClassifyBadge(score, total int) Badge {
	if total <= 0 {
		return BadgeNeedsImprovement
	}
	for _, t := range badgeThresholds {
		if score*100 >= t.minPercent*total {
			return t.badge
		}
	}
	return BadgeNeedsImprovement
}

// RoundPercent returns round(part/whole*100), or 0 when whole is not positive.
func RoundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
