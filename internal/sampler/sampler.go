// Package sampler draws random portfolio weight vectors on the probability simplex.
package sampler

import (
	"encoding/binary"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distmv"

	"github.com/wonny/pfopt/internal/contracts"
)

// Sample draws one weight vector from a symmetric Dirichlet(1, ..., 1).
// Every component is non-negative and the vector sums to 1.
func Sample(nAssets int, src rand.Source) contracts.WeightVector {
	if nAssets < 1 {
		return nil
	}

	alpha := make([]float64, nAssets)
	for i := range alpha {
		alpha[i] = 1
	}

	w := distmv.NewDirichlet(alpha, src).Rand(nil)

	// Gamma 정규화 후 잔여 오차 보정
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
	}
	return contracts.WeightVector(w)
}

// NewSource returns a deterministic stream keyed by (seed, stream).
// Distinct streams of the same seed are independent, so trial i can use
// stream i regardless of which worker runs it.
func NewSource(seed, stream uint64) rand.Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], stream)
	return rand.NewChaCha8(key)
}

// RandomSeed returns a non-zero seed from the runtime generator
func RandomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
