package normalize

import "time"

// Schedule maps evidence age to a confidence penalty. Ages at or below
// Thresholds[0] months take Penalties[0], ages in (Thresholds[0],
// Thresholds[1]] take Penalties[1], and so on; anything older than the last
// threshold takes the final penalty.
type Schedule struct {
	Thresholds [3]int
	Penalties  [4]float64
}

// DefaultSchedule is the standard aging table: no penalty up to 24 months,
// then 0.1 / 0.2 / 0.3 for the 25-36, 37-48 and >48 month buckets.
func DefaultSchedule() Schedule {
	return Schedule{
		Thresholds: [3]int{24, 36, 48},
		Penalties:  [4]float64{0.0, 0.1, 0.2, 0.3},
	}
}

// Penalty returns the freshness penalty for an age in months.
func (s Schedule) Penalty(ageMonths int) float64 {
	for i, threshold := range s.Thresholds {
		if ageMonths <= threshold {
			return s.Penalties[i]
		}
	}
	return s.Penalties[len(s.Penalties)-1]
}

// AdjustedConfidence applies the penalty for the given age, clamped at zero.
func (s Schedule) AdjustedConfidence(confidence float64, ageMonths int) float64 {
	adjusted := confidence - s.Penalty(ageMonths)
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// MonthsBetween returns the number of whole calendar months from ts to asOf.
// Partial months round down; a ts at or after asOf is zero months old.
func MonthsBetween(asOf, ts time.Time) int {
	asOf, ts = asOf.UTC(), ts.UTC()
	if !ts.Before(asOf) {
		return 0
	}

	years := asOf.Year() - ts.Year()
	months := int(asOf.Month()) - int(ts.Month())
	total := years*12 + months
	if asOf.Day() < ts.Day() {
		total--
	}
	if total < 0 {
		return 0
	}
	return total
}
