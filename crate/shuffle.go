package crate

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/holiman/uint256"
)

// ErrMissingRandomness is returned when a reveal has no usable seed.
var ErrMissingRandomness = errors.New("missing randomness")

// ParseSeed parses the randomness value of a crate-opening event, given as
// base-10 or 0x-prefixed hex.
func ParseSeed(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrMissingRandomness
	}
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-_") {
		return nil, fmt.Errorf("%w: malformed seed %q", ErrMissingRandomness, s)
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: malformed seed %q", ErrMissingRandomness, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: seed %q exceeds 256 bits", ErrMissingRandomness, s)
	}
	return v, nil
}

// Shuffler permutes n elements through swap.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// SeededShuffler is the reproducible permutation used for reveals.
//
// The stream is ChaCha8 (math/rand/v2) keyed with the seed's 32 big-endian
// bytes. Fisher-Yates runs from the last index down; each bound is drawn by
// rejection sampling on Uint64 so the result depends only on the ChaCha8
// output, never on library shuffle internals. Changing any of this changes
// every published reveal order.
//
// Seed must be non-nil; use NewSeededShuffler to validate it.
type SeededShuffler struct {
	Seed *uint256.Int
}

// NewSeededShuffler returns a shuffler for seed, or ErrMissingRandomness
// when seed is nil.
func NewSeededShuffler(seed *uint256.Int) (SeededShuffler, error) {
	if seed == nil {
		return SeededShuffler{}, ErrMissingRandomness
	}
	return SeededShuffler{Seed: seed}, nil
}

func (s SeededShuffler) Shuffle(n int, swap func(i, j int)) {
	permute(rand.NewChaCha8(s.Seed.Bytes32()), n, swap)
}

// RandomShuffler is a non-reproducible shuffle for cosmetic orderings.
type RandomShuffler struct{}

func (RandomShuffler) Shuffle(n int, swap func(i, j int)) {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		rand.Shuffle(n, swap)
		return
	}
	permute(rand.NewChaCha8(key), n, swap)
}

func permute(src *rand.ChaCha8, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(uniform(src, uint64(i+1)))
		swap(i, j)
	}
}

// uniform returns an unbiased value in [0, n).
func uniform(src *rand.ChaCha8, n uint64) uint64 {
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		if x := src.Uint64(); x < limit {
			return x % n
		}
	}
}

// ReconstructDrops reorders already-drawn item ids into the reveal order
// determined by seed. Ids are sorted ascending before shuffling, so the
// result depends only on the seed and the multiset of ids, not on the order
// they were reported in. The input slice is not modified.
func ReconstructDrops(seed *uint256.Int, droppedItemIDs []uint64) ([]uint64, error) {
	sh, err := NewSeededShuffler(seed)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(droppedItemIDs)
	slices.Sort(out)
	sh.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out, nil
}

// SameDrops reports whether a and b hold the same ids with the same counts.
func SameDrops(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
