package crate

import (
	"errors"
	"fmt"
	"math"
)

// Source is the randomness an AliasTable samples from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Int64N(n int64) int64
}

// AliasTable is a Vose alias table over integer weights. Column i is kept
// with probability prob[i]/total and otherwise redirected to alias[i].
// Construction uses exact integer arithmetic so the table reproduces the
// configured weights with no rounding.
type AliasTable struct {
	prob  []int64
	alias []int
	total int64
}

// NewAliasTable builds a table from positive weights.
func NewAliasTable(weights []int64) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errors.New("alias table: no weights")
	}
	var total int64
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("alias table: weight %d at index %d must be positive", w, i)
		}
		if total > math.MaxInt64/int64(n)-w {
			return nil, errors.New("alias table: weights too large")
		}
		total += w
	}

	scaled := make([]int64, n)
	var small, large []int
	for i, w := range weights {
		scaled[i] = w * int64(n)
		if scaled[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	t := &AliasTable{
		prob:  make([]int64, n),
		alias: make([]int, n),
		total: total,
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		t.prob[s] = scaled[s]
		t.alias[s] = l
		scaled[l] -= total - scaled[s]
		if scaled[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for _, i := range large {
		t.prob[i] = total
		t.alias[i] = i
	}
	for _, i := range small {
		t.prob[i] = total
		t.alias[i] = i
	}
	return t, nil
}

// Len returns the number of columns.
func (t *AliasTable) Len() int { return len(t.prob) }

// Total returns the weight sum the table was built from.
func (t *AliasTable) Total() int64 { return t.total }

// Columns returns copies of the acceptance thresholds (out of Total) and
// alias indexes.
func (t *AliasTable) Columns() (prob []int64, alias []int) {
	return append([]int64(nil), t.prob...), append([]int(nil), t.alias...)
}

// Sample draws one index in O(1).
func (t *AliasTable) Sample(src Source) int {
	col := src.IntN(len(t.prob))
	if src.Int64N(t.total) < t.prob[col] {
		return col
	}
	return t.alias[col]
}

// mass returns, per index, the probability mass the table assigns scaled by
// n*total. It equals weight*n for a correctly built table.
func (t *AliasTable) mass() []int64 {
	m := make([]int64, len(t.prob))
	for i, p := range t.prob {
		m[i] += p
		m[t.alias[i]] += t.total - p
	}
	return m
}

// Probabilities re-derives the per-index probability from the table.
func (t *AliasTable) Probabilities() []float64 {
	denom := float64(t.total) * float64(len(t.prob))
	out := make([]float64, len(t.prob))
	for i, m := range t.mass() {
		out[i] = float64(m) / denom
	}
	return out
}
