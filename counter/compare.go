package counter

// epsilon is the float64 machine epsilon.
const epsilon = 0x1p-52

// PercentChange returns the relative change from one mean to another, in
// percent. A baseline at or below machine epsilon yields 0.
func PercentChange(from, to float64) float64 {
	if from <= epsilon {
		return 0
	}
	return (to - from) / from * 100
}

// Loss describes how far a counter fell short of the expected total.
type Loss struct {
	Expected uint64
	Obtained uint64
	Lost     uint64
	Percent  float64
}

// ComputeLoss compares an obtained count to the expected one.
func ComputeLoss(expected, obtained uint64) Loss {
	l := Loss{Expected: expected, Obtained: obtained}
	if obtained < expected {
		l.Lost = expected - obtained
	}
	if expected > 0 {
		l.Percent = float64(l.Lost) / float64(expected) * 100
	}
	return l
}

// Comparison is one pairwise percentage between two strategy means.
type Comparison struct {
	From, To string
	Percent  float64
}

// Compare returns PercentChange for every ordered pair (i < j) of means,
// keyed by strategy name, in input order.
func Compare(names []string, means []float64) []Comparison {
	var out []Comparison
	for i := 0; i < len(names) && i < len(means); i++ {
		for j := i + 1; j < len(names) && j < len(means); j++ {
			out = append(out, Comparison{
				From:    names[i],
				To:      names[j],
				Percent: PercentChange(means[i], means[j]),
			})
		}
	}
	return out
}
