package datatype

import (
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

const (
	hllPrecision = 14
	hllRegisters = 1 << hllPrecision
)

// HyperLogLogStdError is the relative standard error of the estimate, 1.04/sqrt(m)
var HyperLogLogStdError = 1.04 / math.Sqrt(hllRegisters)

// HyperLogLog is a dense cardinality sketch with 2^14 registers
type HyperLogLog struct {
	registers [hllRegisters]uint8
}

// NewHyperLogLog creates an empty sketch
func NewHyperLogLog() *HyperLogLog {
	return &HyperLogLog{}
}

// Add merges items into the sketch. Returns true if any register was changed
func (h *HyperLogLog) Add(items ...string) bool {
	changed := false
	for _, item := range items {
		hash := xxhash.Sum64String(item)

		idx := hash >> (64 - hllPrecision)
		// sentinel bit caps the rank when the remaining bits are all zero
		w := hash<<hllPrecision | 1<<(hllPrecision-1)
		rank := uint8(bits.LeadingZeros64(w)) + 1

		if rank > h.registers[idx] {
			h.registers[idx] = rank
			changed = true
		}
	}
	return changed
}

// Merge folds other into h by keeping the maximum of every register
func (h *HyperLogLog) Merge(other *HyperLogLog) {
	for i, r := range other.registers {
		if r > h.registers[i] {
			h.registers[i] = r
		}
	}
}

// Clone returns an independent copy of the sketch
func (h *HyperLogLog) Clone() *HyperLogLog {
	c := *h
	return &c
}

// Count returns the estimated number of distinct items added
func (h *HyperLogLog) Count() uint64 {
	const m = float64(hllRegisters)
	alpha := 0.7213 / (1 + 1.079/m)

	sum := 0.0
	zeros := 0
	for _, r := range h.registers {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}

	estimate := alpha * m * m / sum

	// small range correction
	if estimate <= 2.5*m && zeros != 0 {
		estimate = m * math.Log(m/float64(zeros))
	}

	return uint64(estimate + 0.5)
}
