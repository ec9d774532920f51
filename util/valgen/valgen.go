// Package valgen provides closure-based stimulus generators.
package valgen

import (
	"math/big"
	"math/rand"
)

// MakeConstGen returns a generator that always yields constant.
func MakeConstGen(constant uint32) func() uint32 {
	return func() uint32 {
		return constant
	}
}

// MakeIncreasingGen returns a generator that yields start+1, start+2, ...
func MakeIncreasingGen(start uint32) func() uint32 {
	current := start
	return func() uint32 {
		current++
		return current
	}
}

// MakeRandomGen returns a generator of uniformly random values of the given
// width, drawn from rng. Width must be in [1, 32].
func MakeRandomGen(rng *rand.Rand, width int) func() uint32 {
	if width < 1 || width > 32 {
		panic("width must be in [1, 32]")
	}

	mask := uint32(1<<width - 1)
	if width == 32 {
		mask = ^uint32(0)
	}

	return func() uint32 {
		return rng.Uint32() & mask
	}
}

// MakeRandomWideGen returns a generator of uniformly random values of any
// positive width, drawn from rng.
func MakeRandomWideGen(rng *rand.Rand, width int) func() *big.Int {
	if width < 1 {
		panic("width must be positive")
	}

	return func() *big.Int {
		v := new(big.Int)
		for bits := 0; bits < width; bits += 64 {
			v.Lsh(v, 64)
			v.Or(v, new(big.Int).SetUint64(rng.Uint64()))
		}

		mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
		mask.Sub(mask, big.NewInt(1))

		return v.And(v, mask)
	}
}
