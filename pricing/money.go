/*
money.go - Dual-currency running amount

PURPOSE:
  MoneyState is the calculation state machine a price expression evaluates
  against: a native-currency running amount plus its NUC (neutral unit)
  shadow. Percent, add, subtract and set-specified operations keep both
  amounts in step, each rounded under its OWN currency policy.

SIDE SELECTION:
  Specified/add/subtract operations carry up to two (amount, currency)
  pairs. The pair whose currency matches the running native currency wins.
  If neither matches, both amounts are converted and the conversion with
  the LOWER neutral-unit result wins - a minimum policy, not a first-value
  policy. Callers can query which side was used because the displayed
  currency and no-decimal precision downstream depend on it.

INVARIANT:
  Native and NUC roundings are computed independently, never derived from
  each other. They may diverge by up to one rounding unit.

FAILURE:
  A failed currency conversion yields zero for both the native and neutral
  sides. It is not surfaced as an error.

SEE ALSO:
  - expression.go: PriceExpression drives these operations
  - convert.go: the Converter collaborator
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// Side identifies which of an expression's two amount slots fed the state.
type Side int

const (
	SideNone Side = iota
	SideFirst
	SideSecond
)

// MoneyState is the running dual-currency amount for one calculation.
// Constructed fresh per rule-item evaluated; not reused across items.
type MoneyState struct {
	native        Money
	nuc           decimal.Decimal
	international bool
	conv          Converter
	sideUsed      Side
}

// NewMoneyState starts a calculation from a base fare's native amount and
// its NUC shadow.
func NewMoneyState(native Money, nuc decimal.Decimal, international bool, conv Converter) *MoneyState {
	return &MoneyState{native: native, nuc: nuc, international: international, conv: conv}
}

func (s *MoneyState) Native() Money        { return s.native }
func (s *MoneyState) NUC() decimal.Decimal { return s.nuc }
func (s *MoneyState) SideUsed() Side       { return s.sideUsed }

// ApplyPercent scales both amounts by p/100. The native amount rounds
// under the native currency policy (international vs domestic), the NUC
// shadow under the NUC policy - independently.
func (s *MoneyState) ApplyPercent(p decimal.Decimal) {
	factor := p.Div(decimal.NewFromInt(100))

	scaledNative := Money{Amount: s.native.Amount.Mul(factor), Currency: s.native.Currency}
	s.native = s.conv.Round(scaledNative, s.international)

	scaledNUC := Money{Amount: s.nuc.Mul(factor), Currency: CurrencyNUC}
	s.nuc = s.conv.Round(scaledNUC, s.international).Amount
}

// SetFromSpecified replaces the running amounts with a specified amount,
// using side selection. amt2 may be nil when only one amount is coded.
func (s *MoneyState) SetFromSpecified(amt1 Money, amt2 *Money) {
	native, nuc, side := s.resolve(amt1, amt2)
	s.native = native
	s.nuc = nuc
	s.sideUsed = side
}

// ApplyAdd adds a specified amount, using side selection.
func (s *MoneyState) ApplyAdd(amt1 Money, amt2 *Money) {
	native, nuc, side := s.resolve(amt1, amt2)
	s.native = s.conv.Round(s.native.Add(native), s.international)
	s.nuc = s.conv.Round(Money{Amount: s.nuc.Add(nuc), Currency: CurrencyNUC}, s.international).Amount
	s.sideUsed = side
}

// ApplySubtract subtracts a specified amount, using side selection.
// The result may go negative; negative amounts are discarded by the
// candidate selector, not here.
func (s *MoneyState) ApplySubtract(amt1 Money, amt2 *Money) {
	native, nuc, side := s.resolve(amt1, amt2)
	s.native = s.conv.Round(s.native.Sub(native), s.international)
	s.nuc = s.conv.Round(Money{Amount: s.nuc.Sub(nuc), Currency: CurrencyNUC}, s.international).Amount
	s.sideUsed = side
}

// resolve performs side selection: prefer the amount whose currency
// already matches the running native currency; otherwise convert both and
// keep whichever conversion yields the lower NUC amount. Conversion
// failure yields zero for both sides.
func (s *MoneyState) resolve(amt1 Money, amt2 *Money) (Money, decimal.Decimal, Side) {
	if amt1.Currency == s.native.Currency {
		return amt1, s.toNUC(amt1), SideFirst
	}
	if amt2 != nil && amt2.Currency == s.native.Currency {
		return *amt2, s.toNUC(*amt2), SideSecond
	}

	native1, nuc1, ok1 := s.convertBoth(amt1)
	if amt2 == nil {
		if !ok1 {
			return s.native.Zero(), decimal.Zero, SideFirst
		}
		return native1, nuc1, SideFirst
	}

	native2, nuc2, ok2 := s.convertBoth(*amt2)
	switch {
	case ok1 && ok2:
		// Minimum policy: keep the side with the lower neutral amount.
		if nuc2.LessThan(nuc1) {
			return native2, nuc2, SideSecond
		}
		return native1, nuc1, SideFirst
	case ok1:
		return native1, nuc1, SideFirst
	case ok2:
		return native2, nuc2, SideSecond
	default:
		return s.native.Zero(), decimal.Zero, SideFirst
	}
}

// convertBoth converts an amount to the native currency and to NUC.
func (s *MoneyState) convertBoth(m Money) (Money, decimal.Decimal, bool) {
	native, err := s.conv.Convert(m, s.native.Currency)
	if err != nil {
		return s.native.Zero(), decimal.Zero, false
	}
	nuc, err := s.conv.Convert(m, CurrencyNUC)
	if err != nil {
		return s.native.Zero(), decimal.Zero, false
	}
	return native, nuc.Amount, true
}

// toNUC converts an amount to NUC, treating failure as zero.
func (s *MoneyState) toNUC(m Money) decimal.Decimal {
	nuc, err := s.conv.Convert(m, CurrencyNUC)
	if err != nil {
		return decimal.Zero
	}
	return nuc.Amount
}
