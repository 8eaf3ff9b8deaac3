package output

import "strings"

// sparkline block characters from lowest to highest
var sparkBlocks = []rune{
	'\u2581', // ▁
	'\u2582', // ▂
	'\u2583', // ▃
	'\u2584', // ▄
	'\u2585', // ▅
	'\u2586', // ▆
	'\u2587', // ▇
	'\u2588', // █
}

// Sparkline renders values as a row of Unicode blocks scaled between their
// minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	rng := hi - lo
	for _, v := range values {
		idx := 0
		if rng > 0 {
			idx = int((v - lo) / rng * float64(len(sparkBlocks)-1))
		}
		idx = max(0, min(idx, len(sparkBlocks)-1))
		b.WriteRune(sparkBlocks[idx])
	}

	return b.String()
}

// Distribution counts values into buckets of equal width between their minimum
// and maximum.
func Distribution(values []float64, buckets int) []float64 {
	if len(values) == 0 || buckets < 1 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	counts := make([]float64, buckets)
	width := (hi - lo) / float64(buckets)
	for _, v := range values {
		idx := 0
		if width > 0 {
			idx = int((v - lo) / width)
		}
		counts[min(idx, buckets-1)]++
	}
	return counts
}
