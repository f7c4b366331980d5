package order

import (
	"log"
	"strconv"
)

// Total computes the order total from raw quantity strings.
//
// Any quantity that fails to parse as an integer collapses the WHOLE total
// to 0.0 rather than skipping that item. A zero total in a summary is the
// signal that something in the order needs human eyes; a silently partial
// sum is not.
func Total(quantities []string, unitPrice float64) float64 {
	total := 0.0
	for _, q := range quantities {
		n, err := strconv.Atoi(q)
		if err != nil {
			log.Printf("⚠️ Unparsable quantity %q, zeroing order total", q)
			return 0.0
		}
		total += float64(n) * unitPrice
	}
	return total
}
