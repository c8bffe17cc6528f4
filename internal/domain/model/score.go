//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// ScoreBand buckets a 0-100 score for display.
type ScoreBand string

const (
	BandExcellent ScoreBand = "excellent"
	BandGood      ScoreBand = "good"
	BandFair      ScoreBand = "fair"
	BandPoor      ScoreBand = "poor"
)

// BandFor returns the band a score falls into.
func BandFor(score float64) ScoreBand {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandPoor
	}
}

// Class is the CSS class used to colour the band.
func (b ScoreBand) Class() string { return "score-" + string(b) }
