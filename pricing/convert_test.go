package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRateConverter_CrossRate(t *testing.T) {
	conv := testConverter()

	// 80 GBP at 0.8/NUC = 100 NUC = 100 USD at 1.0/NUC.
	out, err := conv.Convert(NewMoney(80, "GBP"), "USD")
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(100)), "got %s", out.Amount)
	assert.Equal(t, Currency("USD"), out.Currency)
}

func TestFixedRateConverter_UnknownCurrency(t *testing.T) {
	conv := testConverter()

	_, err := conv.Convert(NewMoney(10, "XXX"), "USD")
	assert.ErrorIs(t, err, ErrUnknownCurrency)

	_, err = conv.Convert(NewMoney(10, "USD"), "XXX")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestRoundingPolicy_Directions(t *testing.T) {
	amount := MustParseDecimal("123.456")

	tests := []struct {
		name   string
		policy RoundingPolicy
		want   string
	}{
		{"nearest two decimals", RoundingPolicy{Decimals: 2, Direction: RoundNearest}, "123.46"},
		{"up two decimals", RoundingPolicy{Decimals: 2, Direction: RoundUp}, "123.46"},
		{"down two decimals", RoundingPolicy{Decimals: 2, Direction: RoundDown}, "123.45"},
		{"no rounding", RoundingPolicy{Decimals: 2, Direction: RoundNone}, "123.456"},
		{"unit 100 up", RoundingPolicy{Unit: decimal.NewFromInt(100), Direction: RoundUp}, "200"},
		{"unit 100 down", RoundingPolicy{Unit: decimal.NewFromInt(100), Direction: RoundDown}, "100"},
		{"unit 5 nearest", RoundingPolicy{Unit: decimal.NewFromInt(5), Direction: RoundNearest}, "125"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Apply(amount)
			assert.True(t, got.Equal(MustParseDecimal(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestFixedRateConverter_InternationalDirection(t *testing.T) {
	// GIVEN a currency whose international fares round up to whole units
	conv := NewFixedRateConverter().
		WithRate("JPY", 147).
		WithMeta("JPY", CurrencyMeta{Decimals: 0, Direction: RoundNearest, IntlDirection: RoundUp})

	m := Money{Amount: MustParseDecimal("100.2"), Currency: "JPY"}

	// THEN domestic and international roundings differ
	domestic := conv.Round(m, false)
	intl := conv.Round(m, true)
	assert.True(t, domestic.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, intl.Amount.Equal(decimal.NewFromInt(101)))
}
