package baseline

// DriftScore computes a 0-100 stability score from comparisons.
// Starts at 100, -15 per major drift or regression, -5 per moderate, -2 per minor.
func DriftScore(comparisons []Comparison) int {
	score := 100
	for _, c := range comparisons {
		switch c.Severity {
		case SeverityRegress, SeverityMajor:
			score -= 15
		case SeverityModerate:
			score -= 5
		case SeverityMinor:
			score -= 2
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ScoreLabel returns a human-readable label for a drift score.
func ScoreLabel(score int) string {
	if score >= 80 {
		return "Stable"
	}
	if score >= 50 {
		return "Drifting"
	}
	return "Unstable"
}
