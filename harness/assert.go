package harness

import "fmt"

// AssertionError reports a correctness check that did not hold: an oracle
// mismatch or an incomplete aggregation.
type AssertionError struct {
	Scenario string
	Check    string
	Expected interface{}
	Obtained interface{}
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %v, obtained %v", e.Scenario, e.Check, e.Expected, e.Obtained)
}

// Check returns an *AssertionError unless expected == obtained.
func Check[T comparable](scenario, check string, expected, obtained T) error {
	if expected == obtained {
		return nil
	}
	return &AssertionError{
		Scenario: scenario,
		Check:    check,
		Expected: expected,
		Obtained: obtained,
	}
}

// CheckAll applies Check to every output, returning the first failure.
func CheckAll[T comparable](scenario, check string, expected T, outputs []T) error {
	for i, out := range outputs {
		if err := Check(scenario, fmt.Sprintf("%s (run %d)", check, i+1), expected, out); err != nil {
			return err
		}
	}
	return nil
}
