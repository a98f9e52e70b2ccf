package portal

import (
	"fmt"
	"math/rand/v2"
)

const tokenPrefix = "ghostty_"

// NewToken returns a fresh handle token: the fixed prefix followed by
// exactly seven lowercase hex digits from a random 28-bit integer.
// Uniqueness within one process run is all that matters here, so plain
// math/rand is enough.
func NewToken() string {
	return fmt.Sprintf("%s%07x", tokenPrefix, rand.Uint32N(1<<28))
}
