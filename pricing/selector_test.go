package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdCandidate(amount float64) Candidate {
	return Candidate{
		Native: NewMoney(amount, "USD"),
		NUC:    decimal.NewFromFloat(amount),
	}
}

func TestSelector_MinimumNotFirstMatch(t *testing.T) {
	// GIVEN two valid candidates offered in descending amount order
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxAdult)

	// WHEN offering 90.00 then 50.00
	assert.True(t, sel.Keep(usdCandidate(90)))
	assert.True(t, sel.Keep(usdCandidate(50)))

	// THEN the kept candidate is the minimum, not the first
	native, _, _ := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(50)))
}

func TestSelector_HigherAmountNotKept(t *testing.T) {
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxAdult)

	require.True(t, sel.Keep(usdCandidate(50)))

	// An equal or higher amount never displaces the kept one.
	assert.False(t, sel.Keep(usdCandidate(50)))
	assert.False(t, sel.Keep(usdCandidate(90)))

	native, _, _ := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(50)))
}

func TestSelector_NegativeNeverKept(t *testing.T) {
	// GIVEN an empty scope
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxAdult)

	// WHEN offering a negative amount
	kept := sel.Keep(usdCandidate(-10))

	// THEN nothing is kept, even into an empty slot
	assert.False(t, kept)
	assert.False(t, sel.HasCandidate())
}

func TestSelector_HierarchyOverride(t *testing.T) {
	// GIVEN a base fare whose passenger type participates in the
	// hierarchy, with a cheap NEG candidate already kept
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxNeg)

	a := usdCandidate(50)
	a.PaxType = PaxNeg
	require.True(t, sel.Keep(a))

	// WHEN a more expensive but narrower JCB candidate arrives
	b := usdCandidate(80)
	b.PaxType = PaxJCB
	kept := sel.Keep(b)

	// THEN the narrower type displaces regardless of amount
	assert.True(t, kept)
	native, _, rd := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, PaxJCB, rd.PaxType)

	// AND the broader type can never take the slot back, however cheap
	c := usdCandidate(10)
	c.PaxType = PaxNeg
	assert.False(t, sel.Keep(c))
}

func TestSelector_HierarchyEqualRankComparesAmount(t *testing.T) {
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxNeg)

	a := usdCandidate(80)
	a.PaxType = PaxNeg
	require.True(t, sel.Keep(a))

	// Same rank: the lower amount still wins.
	b := usdCandidate(60)
	b.PaxType = PaxNeg
	assert.True(t, sel.Keep(b))

	native, _, _ := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(60)))
}

func TestSelector_MinimumBothRequiresBothSides(t *testing.T) {
	// GIVEN the fare-retailer selection mode
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimumBoth, PaxAdult)

	first := Candidate{Native: NewMoney(90, "USD"), NUC: decimal.NewFromInt(90)}
	require.True(t, sel.Keep(first))

	// WHEN the native side improves but the neutral side does not
	mixed := Candidate{Native: NewMoney(80, "USD"), NUC: decimal.NewFromInt(95)}
	assert.False(t, sel.Keep(mixed))

	// THEN only a candidate improving BOTH sides is kept
	both := Candidate{Native: NewMoney(80, "USD"), NUC: decimal.NewFromInt(80)}
	assert.True(t, sel.Keep(both))
}

func TestSelector_RetailerCandidateNeedsBothSidesLower(t *testing.T) {
	// GIVEN the plain minimum mode with a retailer-sourced candidate kept
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxAdult)

	first := usdCandidate(80)
	first.Provenance.FromRetailer = true
	require.True(t, sel.Keep(first))

	// WHEN a retailer candidate lowers the native side but raises the
	// neutral side
	mixed := Candidate{Native: NewMoney(70, "USD"), NUC: decimal.NewFromInt(95)}
	mixed.Provenance.FromRetailer = true
	assert.False(t, sel.Keep(mixed))

	// THEN the kept amounts are untouched
	native, nuc, _ := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(80)))
	assert.True(t, nuc.Equal(decimal.NewFromInt(80)))

	// AND a retailer candidate improving both sides still displaces
	both := usdCandidate(70)
	both.Provenance.FromRetailer = true
	assert.True(t, sel.Keep(both))
}

func TestSelector_SelectAllKeepsEverything(t *testing.T) {
	// GIVEN fare-display mode
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectAll, PaxAdult)

	// WHEN offering several valid candidates and one negative
	assert.True(t, sel.Keep(usdCandidate(90)))
	assert.True(t, sel.Keep(usdCandidate(50)))
	assert.True(t, sel.Keep(usdCandidate(70)))
	assert.False(t, sel.Keep(usdCandidate(-5)))

	// THEN every valid candidate is retained and the minimum tracked
	assert.Len(t, sel.All(), 3)
	native, _, _ := sel.Best()
	assert.True(t, native.Equal(decimal.NewFromInt(50)))
}

func TestSelector_ResetClearsScope(t *testing.T) {
	sel := NewCandidateSelector(DefaultPaxHierarchy(), SelectMinimum, PaxAdult)
	require.True(t, sel.Keep(usdCandidate(50)))
	_, _, firstData := sel.Best()

	sel.Reset()

	assert.False(t, sel.HasCandidate())

	// The next scope gets a fresh rule-data record, never the old one.
	require.True(t, sel.Keep(usdCandidate(60)))
	_, _, secondData := sel.Best()
	assert.NotSame(t, firstData, secondData)
}

func TestHierarchy_Narrower(t *testing.T) {
	h := DefaultPaxHierarchy()

	assert.True(t, h.Narrower(PaxJCB, PaxNeg))
	assert.False(t, h.Narrower(PaxNeg, PaxJCB))
	assert.False(t, h.Narrower(PaxNeg, PaxNeg))

	// Types outside the table never rank.
	assert.False(t, h.Narrower(PaxAdult, PaxNeg))
	assert.False(t, h.Narrower(PaxNeg, PaxAdult))

	assert.True(t, h.Applies(PaxNeg))
	assert.False(t, h.Applies(PaxAdult))
}
