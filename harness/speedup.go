package harness

// Speedup returns baseline / mean. A non-positive mean yields 0.
func Speedup(baselineSeconds, meanSeconds float64) float64 {
	if meanSeconds <= 0 {
		return 0
	}
	return baselineSeconds / meanSeconds
}

// Efficiency returns speedup divided by the number of workers.
func Efficiency(speedup float64, workers int) float64 {
	if workers <= 0 {
		return 0
	}
	return speedup / float64(workers)
}
