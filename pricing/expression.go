/*
expression.go - Tagged calculation descriptors

PURPOSE:
  A PriceExpression is one normalized calculation instruction from a rule
  table: percent-of, specified-amount, percent-then-add, or
  percent-then-subtract, over up to two currency amounts. Evaluating an
  expression drives the MoneyState operations; the optional AmountRange
  validates the result afterwards.

PROVENANCE:
  CalcRecord pairs an expression with its range and the identity of the
  row it came from (creator PCC, view-net indicator, sequence number).
  Both legacy markup rows and fare-retailer calculation details normalize
  into CalcRecord, so the selector downstream does not care which rule
  system produced a candidate.

SEE ALSO:
  - money.go: the state the expression evaluates against
  - negotiated/markup.go, retailer/calc.go: the two loaders
*/
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CalcIndicator tags which calculation an expression performs.
type CalcIndicator byte

const (
	CalcSpecified    CalcIndicator = 'S' // replace with a specified amount
	CalcPercent      CalcIndicator = 'P' // percent of the running amount
	CalcPercentPlus  CalcIndicator = 'A' // percent, then add an amount
	CalcPercentMinus CalcIndicator = 'M' // percent, then subtract an amount
)

// PriceExpression is one tagged calculation over up to two currency
// amounts. NoDecimals carries the displayed precision per side; which one
// applies depends on the side the evaluation selected.
type PriceExpression struct {
	Indicator   CalcIndicator
	Percent     decimal.Decimal
	Amount1     Money
	Amount2     *Money
	NoDecimals1 int32
	NoDecimals2 int32
}

// Apply evaluates the expression against a running money state.
func (e PriceExpression) Apply(st *MoneyState) error {
	switch e.Indicator {
	case CalcPercent:
		st.ApplyPercent(e.Percent)
	case CalcSpecified:
		st.SetFromSpecified(e.Amount1, e.Amount2)
	case CalcPercentPlus:
		st.ApplyPercent(e.Percent)
		st.ApplyAdd(e.Amount1, e.Amount2)
	case CalcPercentMinus:
		st.ApplyPercent(e.Percent)
		st.ApplySubtract(e.Amount1, e.Amount2)
	default:
		return fmt.Errorf("calc indicator %q: %w", e.Indicator, ErrUnsupportedIndicator)
	}
	return nil
}

// Decimals returns the displayed precision for the side the evaluation
// selected.
func (e PriceExpression) Decimals(side Side) int32 {
	if side == SideSecond {
		return e.NoDecimals2
	}
	return e.NoDecimals1
}

// =============================================================================
// RANGE VALIDATION
// =============================================================================

// AmountRange is an optional min/max validation pair for a calculation.
type AmountRange struct {
	Min Money
	Max Money
}

// Contains reports whether an amount falls inside the range, converting
// the bounds when they are coded in a different currency. A bound that
// fails to convert does not constrain.
func (r AmountRange) Contains(m Money, conv Converter) bool {
	min := r.Min
	if min.Currency != m.Currency {
		converted, err := conv.Convert(min, m.Currency)
		if err == nil {
			min = converted
		} else {
			min = Money{Amount: decimal.Zero, Currency: m.Currency}
		}
	}
	if !min.IsZero() && m.LessThan(min) {
		return false
	}

	max := r.Max
	if max.Currency != m.Currency {
		converted, err := conv.Convert(max, m.Currency)
		if err == nil {
			max = converted
		} else {
			max = Money{Amount: decimal.Zero, Currency: m.Currency}
		}
	}
	if !max.IsZero() && m.GreaterThan(max) {
		return false
	}
	return true
}

// =============================================================================
// NORMALIZED CALCULATION RECORD
// =============================================================================

// NetSellIndicator marks whether a calculation row produces a net or a
// selling level.
type NetSellIndicator byte

const (
	LevelSelling NetSellIndicator = 'S'
	LevelNet     NetSellIndicator = 'N'
)

// CalcRecord is a normalized calculation: expression, optional range and
// provenance. Constructed fresh per rule-item evaluated; discarded after
// use.
type CalcRecord struct {
	Expr  PriceExpression
	Range *AmountRange
	Level NetSellIndicator

	// Wholesale marks a row that prices the explicit wholesale amount
	// for its scope instead of competing for selection.
	Wholesale  bool
	Provenance Provenance
}
