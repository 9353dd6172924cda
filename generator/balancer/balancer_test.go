package balancer

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	out, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return out
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func TestBalance_ConcreteScenario(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	amounts, err := Balance(d("5000.00"), d("7500.00"), 3, d("100"), d("2000"), rng)
	require.NoError(t, err)
	require.Len(t, amounts, 3)

	assert.True(t, sum(amounts).Equal(d("2500.00")), "sum = %s", sum(amounts))
	for _, a := range amounts {
		assert.False(t, a.IsZero())
		assert.True(t, a.Abs().GreaterThanOrEqual(d("100")), "amount %s below minimum", a)
		assert.True(t, a.Abs().LessThanOrEqual(d("2000")), "amount %s above maximum", a)
	}
}

func TestBalance_ExactSumAcrossSeeds(t *testing.T) {
	cases := []struct {
		opening, target string
		count           int
		min, max        string
	}{
		{"5000.00", "7500.00", 3, "100", "2000"},
		{"0", "0", 4, "50", "500"},
		{"10000.00", "9000.00", 5, "10", "1000"},
		{"250.75", "1250.75", 2, "100", "2000"},
		{"0", "-3000.00", 6, "1", "5000"},
		{"1.00", "1.01", 3, "0.01", "10"},
	}

	for _, tc := range cases {
		for seed := int64(0); seed < 25; seed++ {
			rng := rand.New(rand.NewSource(seed))
			amounts, err := Balance(d(tc.opening), d(tc.target), tc.count, d(tc.min), d(tc.max), rng)
			require.NoError(t, err, "case %+v seed %d", tc, seed)
			require.Len(t, amounts, tc.count)

			delta := d(tc.target).Sub(d(tc.opening))
			assert.True(t, sum(amounts).Equal(delta), "case %+v seed %d: sum %s != %s", tc, seed, sum(amounts), delta)
			for _, a := range amounts {
				assert.False(t, a.IsZero(), "case %+v seed %d emitted zero amount", tc, seed)
				assert.True(t, a.Abs().GreaterThanOrEqual(d(tc.min)))
				assert.True(t, a.Abs().LessThanOrEqual(d(tc.max)))
			}
		}
	}
}

func TestBalance_SingleTransactionIsDelta(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	amounts, err := Balance(d("100.00"), d("350.50"), 1, d("10"), d("1000"), rng)
	require.NoError(t, err)
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Equal(d("250.50")))
}

func TestBalance_SingleTransactionOutOfBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Balance(d("0"), d("5000.00"), 1, d("10"), d("1000"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// Zero delta with a single entry would require a zero amount.
	_, err = Balance(d("100"), d("100"), 1, d("10"), d("1000"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBalance_FixedSeedIsReproducible(t *testing.T) {
	first, err := Balance(d("5000"), d("7500"), 8, d("100"), d("2000"), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	second, err := Balance(d("5000"), d("7500"), 8, d("100"), d("2000"), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "index %d: %s != %s", i, first[i], second[i])
	}
}

func TestBalance_DeltaTooLarge(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Balance(d("0"), d("10000.00"), 3, d("100"), d("2000"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBalance_InvalidInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Balance(d("0"), d("100"), 0, d("10"), d("100"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = Balance(d("0"), d("100"), 2, d("500"), d("100"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// Sub-cent delta cannot be represented by cent-granular amounts.
	_, err = Balance(d("0"), d("100.005"), 2, d("10"), d("100"), rng)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRedistribute_EvenSplit(t *testing.T) {
	amounts, err := Redistribute(d("2500.00"), 3, d("100"), d("2000"))
	require.NoError(t, err)
	require.Len(t, amounts, 3)

	assert.True(t, amounts[0].Equal(d("833.34")))
	assert.True(t, amounts[1].Equal(d("833.33")))
	assert.True(t, amounts[2].Equal(d("833.33")))
	assert.True(t, sum(amounts).Equal(d("2500.00")))
}

func TestRedistribute_ZeroDeltaUsesOffsettingPair(t *testing.T) {
	amounts, err := Redistribute(d("0"), 2, d("100"), d("2000"))
	require.NoError(t, err)
	require.Len(t, amounts, 2)

	assert.True(t, amounts[0].Equal(d("100.00")))
	assert.True(t, amounts[1].Equal(d("-100.00")))
}

func TestRedistribute_MixedSigns(t *testing.T) {
	// Delta below count*min forces debit entries into the partition.
	amounts, err := Redistribute(d("50.00"), 4, d("100"), d("2000"))
	require.NoError(t, err)
	require.Len(t, amounts, 4)

	assert.True(t, sum(amounts).Equal(d("50.00")))
	for _, a := range amounts {
		assert.True(t, a.Abs().GreaterThanOrEqual(d("100")))
		assert.True(t, a.Abs().LessThanOrEqual(d("2000")))
	}
}

func TestRedistribute_Deterministic(t *testing.T) {
	first, err := Redistribute(d("-1234.56"), 5, d("10"), d("900"))
	require.NoError(t, err)
	second, err := Redistribute(d("-1234.56"), 5, d("10"), d("900"))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]))
	}
}

func TestRedistribute_Infeasible(t *testing.T) {
	// Fixed magnitude of 100 can only reach multiples of 100.
	_, err := Redistribute(d("50.00"), 2, d("100"), d("100"))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = Redistribute(d("10000.00"), 2, d("100"), d("2000"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
