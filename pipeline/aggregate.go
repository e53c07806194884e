package pipeline

// Fold combines two partial results. It must be associative and
// commutative, because results arrive in no particular order.
type Fold[R any] func(acc, r R) R

// Aggregation is the folded result of one run.
type Aggregation[R any] struct {
	Value    R
	Received int
	Complete bool
}

// Aggregate drains results until the channel is closed, folding each value
// into zero. Complete is set when exactly expected results arrived; a short
// count is reported, not corrected.
func Aggregate[R any](results <-chan R, zero R, fold Fold[R], expected int) Aggregation[R] {
	agg := Aggregation[R]{Value: zero}
	for r := range results {
		agg.Value = fold(agg.Value, r)
		agg.Received++
	}
	agg.Complete = agg.Received == expected
	return agg
}

// Sum is the Fold for numeric results.
func Sum[R ~int | ~int64 | ~uint64 | ~float64](acc, r R) R {
	return acc + r
}
