package carousel

import (
	"strconv"
	"time"
)

// AutoAdvance is how long the hero shows a slide before moving on.
const AutoAdvance = 5 * time.Second

// Wrap maps any index onto [0, n). n == 0 yields 0.
func Wrap(index, n int) int {
	if n <= 0 {
		return 0
	}
	index %= n
	if index < 0 {
		index += n
	}
	return index
}

func Next(index, n int) int { return Wrap(index+1, n) }

func Prev(index, n int) int { return Wrap(index-1, n) }

// Parse reads an index from a query value, defaulting to 0.
func Parse(s string, n int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return Wrap(i, n)
}
