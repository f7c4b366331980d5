package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	assert.InDelta(t, 29.95, Total([]string{"2", "3"}, 5.99), 0.001)
}

func TestTotalSingleQuantity(t *testing.T) {
	assert.InDelta(t, 5.99, Total([]string{"1"}, 5.99), 0.001)
}

func TestTotalFailToZero(t *testing.T) {
	// One bad quantity zeroes the whole total, it does not skip the item.
	assert.Zero(t, Total([]string{"2", "x"}, 5.99))
	assert.Zero(t, Total([]string{"x", "2"}, 5.99))
}

func TestTotalEmpty(t *testing.T) {
	assert.Zero(t, Total(nil, 5.99))
}
