// Package balancer produces sequences of signed transaction amounts that
// drive an account from an opening balance to a target closing balance
// exactly, while keeping every amount inside the requested magnitude bounds.
package balancer

import (
	"errors"
	"math/rand"

	"github.com/shopspring/decimal"
)

// ErrInvalidRequest is returned when no combination of count amounts within
// the magnitude bounds can sum to target - opening.
var ErrInvalidRequest = errors.New("balancer: bounds cannot satisfy requested delta")

// maxSampleAttempts bounds the random sampling phase before falling back to
// the deterministic redistribution pass.
const maxSampleAttempts = 50

// Balance returns count signed amounts summing exactly to target - opening.
// Every amount is non-zero with absolute value in [minAmount, maxAmount].
// All randomness comes from rng, so a fixed seed reproduces the output.
func Balance(opening, target decimal.Decimal, count int, minAmount, maxAmount decimal.Decimal, rng *rand.Rand) ([]decimal.Decimal, error) {
	delta := target.Sub(opening)

	lo, hi, err := centBounds(delta, count, minAmount, maxAmount)
	if err != nil {
		return nil, err
	}

	if count == 1 {
		mag := delta.Abs().Shift(2).IntPart()
		if mag < lo || mag > hi {
			return nil, ErrInvalidRequest
		}
		return []decimal.Decimal{delta}, nil
	}

	for attempt := 0; attempt < maxSampleAttempts; attempt++ {
		if amounts, ok := sample(delta, count, lo, hi, rng); ok {
			return amounts, nil
		}
	}

	return Redistribute(delta, count, minAmount, maxAmount)
}

// sample draws count-1 signed magnitudes and forces the final entry to the
// remaining residual. It reports false when the forced entry falls outside
// the bounds, in which case the caller resamples the whole batch.
func sample(delta decimal.Decimal, count int, lo, hi int64, rng *rand.Rand) ([]decimal.Decimal, bool) {
	amounts := make([]decimal.Decimal, 0, count)
	partial := decimal.Zero
	maxAbs := decimal.New(hi, -2)

	for i := 0; i < count-1; i++ {
		mag := decimal.New(lo+rng.Int63n(hi-lo+1), -2)

		rem := delta.Sub(partial)
		switch {
		case rem.Abs().GreaterThan(maxAbs):
			// The final forced entry could no longer absorb the residual on
			// its own, so pull the running sum back toward the target.
			if rem.IsNegative() {
				mag = mag.Neg()
			}
		case rng.Intn(2) == 0:
			mag = mag.Neg()
		}

		amounts = append(amounts, mag)
		partial = partial.Add(mag)
	}

	final := delta.Sub(partial)
	abs := final.Abs().Shift(2).IntPart()
	if final.IsZero() || abs < lo || abs > hi {
		return nil, false
	}
	return append(amounts, final), true
}

// Redistribute deterministically partitions target-opening into count signed
// amounts within the bounds, without randomness. It is the fallback after
// sampling exhausts its attempts and is exercised directly in tests.
func Redistribute(delta decimal.Decimal, count int, minAmount, maxAmount decimal.Decimal) ([]decimal.Decimal, error) {
	lo, hi, err := centBounds(delta, count, minAmount, maxAmount)
	if err != nil {
		return nil, err
	}
	d := delta.Shift(2).IntPart()

	if count == 1 {
		abs := d
		if abs < 0 {
			abs = -abs
		}
		if abs < lo || abs > hi {
			return nil, ErrInvalidRequest
		}
		return []decimal.Decimal{delta}, nil
	}

	// Pick the split between credit and debit entries: the first (largest)
	// credit count whose reachable sum range contains the delta.
	for pos := count; pos >= 0; pos-- {
		neg := int64(count - pos)
		p := int64(pos)
		if d < p*lo-neg*hi || d > p*hi-neg*lo {
			continue
		}

		// Debit magnitudes total: smallest value consistent with both sides'
		// per-entry bounds.
		sn := neg * lo
		if floor := p*lo - d; floor > sn {
			sn = floor
		}
		sp := d + sn

		amounts := make([]decimal.Decimal, 0, count)
		for _, c := range spread(sp, pos, hi) {
			amounts = append(amounts, decimal.New(c, -2))
		}
		for _, c := range spread(sn, count-pos, hi) {
			amounts = append(amounts, decimal.New(-c, -2))
		}
		return amounts, nil
	}

	return nil, ErrInvalidRequest
}

// spread divides total cents into n magnitudes no larger than hi, as evenly
// as possible. The caller guarantees n*lo <= total <= n*hi.
func spread(total int64, n int, hi int64) []int64 {
	if n == 0 {
		return nil
	}
	base := total / int64(n)
	rem := total % int64(n)
	out := make([]int64, n)
	for i := range out {
		out[i] = base
		if int64(i) < rem {
			out[i]++
		}
	}
	return out
}

// centBounds validates the request and converts the magnitude bounds to
// whole cents, the granularity every generated amount is denominated in.
func centBounds(delta decimal.Decimal, count int, minAmount, maxAmount decimal.Decimal) (int64, int64, error) {
	if count < 1 {
		return 0, 0, ErrInvalidRequest
	}
	if minAmount.GreaterThan(maxAmount) {
		return 0, 0, ErrInvalidRequest
	}
	if !delta.Shift(2).IsInteger() {
		// Sub-cent deltas cannot be represented by cent-granular amounts.
		return 0, 0, ErrInvalidRequest
	}

	lo := minAmount.Shift(2).Ceil().IntPart()
	hi := maxAmount.Shift(2).Floor().IntPart()
	if lo < 1 {
		lo = 1 // amounts of exactly zero are rejected
	}
	if hi < lo {
		return 0, 0, ErrInvalidRequest
	}
	return lo, hi, nil
}
