package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceExpression_Apply(t *testing.T) {
	conv := testConverter()

	tests := []struct {
		name       string
		expr       PriceExpression
		wantNative string
	}{
		{
			name: "percent of running amount",
			expr: PriceExpression{
				Indicator: CalcPercent,
				Percent:   decimal.NewFromInt(80),
			},
			wantNative: "80",
		},
		{
			name: "specified amount replaces",
			expr: PriceExpression{
				Indicator: CalcSpecified,
				Amount1:   NewMoney(42.50, "USD"),
			},
			wantNative: "42.5",
		},
		{
			name: "percent then add",
			expr: PriceExpression{
				Indicator: CalcPercentPlus,
				Percent:   decimal.NewFromInt(100),
				Amount1:   NewMoney(25, "USD"),
			},
			wantNative: "125",
		},
		{
			name: "percent then subtract",
			expr: PriceExpression{
				Indicator: CalcPercentMinus,
				Percent:   decimal.NewFromInt(90),
				Amount1:   NewMoney(15, "USD"),
			},
			wantNative: "75",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a 100 USD running state
			st := NewMoneyState(NewMoney(100, "USD"), decimal.NewFromInt(100), false, conv)

			// WHEN applying the expression
			err := tt.expr.Apply(st)

			// THEN the native amount matches
			require.NoError(t, err)
			assert.True(t, st.Native().Amount.Equal(MustParseDecimal(tt.wantNative)),
				"native = %s, want %s", st.Native().Amount, tt.wantNative)
		})
	}
}

func TestPriceExpression_UnknownIndicator(t *testing.T) {
	// GIVEN an expression with an indicator the engine does not support
	expr := PriceExpression{Indicator: 'Z'}
	st := NewMoneyState(NewMoney(100, "USD"), decimal.NewFromInt(100), false, testConverter())

	// WHEN applying it
	err := expr.Apply(st)

	// THEN the sentinel is reported and wrapped
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedIndicator)
}

func TestAmountRange_Contains(t *testing.T) {
	conv := testConverter()

	// GIVEN a 50-150 USD range
	r := AmountRange{Min: NewMoney(50, "USD"), Max: NewMoney(150, "USD")}

	assert.True(t, r.Contains(NewMoney(100, "USD"), conv))
	assert.False(t, r.Contains(NewMoney(30, "USD"), conv))
	assert.False(t, r.Contains(NewMoney(200, "USD"), conv))
}

func TestAmountRange_ZeroBoundDoesNotConstrain(t *testing.T) {
	conv := testConverter()

	// GIVEN a range with only a minimum coded
	r := AmountRange{Min: NewMoney(50, "USD")}

	// THEN any amount above the minimum passes
	assert.True(t, r.Contains(NewMoney(1000000, "USD"), conv))
	assert.False(t, r.Contains(NewMoney(10, "USD"), conv))
}

func TestAmountRange_CrossCurrencyBounds(t *testing.T) {
	conv := testConverter()

	// GIVEN bounds coded in GBP against a USD amount (0.8 GBP per USD)
	r := AmountRange{Min: NewMoney(40, "GBP"), Max: NewMoney(120, "GBP")}

	// THEN bounds convert before comparing: 40 GBP = 50 USD, 120 GBP = 150 USD
	assert.True(t, r.Contains(NewMoney(100, "USD"), conv))
	assert.False(t, r.Contains(NewMoney(45, "USD"), conv))
	assert.False(t, r.Contains(NewMoney(155, "USD"), conv))
}
