package util

import "fmt"

// FormatSeconds formats a duration in seconds as m:ss. Negative and NaN
// inputs render as 0:00.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	if total < 0 || seconds != seconds {
		total = 0
	}
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
