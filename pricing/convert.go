/*
convert.go - Currency conversion and rounding boundary

PURPOSE:
  The engine treats currency conversion as a black-box collaborator:
  "convert amount X in currency A to currency B under this rounding
  policy". The Converter interface is that boundary. FixedRateConverter
  is the in-process implementation used for tests, dev servers and demo
  scenarios; production deployments inject their own.

ROUNDING:
  Each currency carries its own rounding rule (decimals, rounding unit,
  direction), and international fares may round differently from domestic
  ones. The native amount and its NUC shadow are ALWAYS rounded
  independently under their own policies; the two can diverge by up to
  one rounding unit and that divergence is intentional.

FAILURE:
  A failed conversion is not an error to the pricing logic: the caller
  treats the amount as zero (see money.go). Convert still returns an
  error so the failure can be traced.

SEE ALSO:
  - money.go: MoneyState, the consumer of this interface
*/
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned by converters for a currency they have
// no rate or rounding metadata for.
var ErrUnknownCurrency = errors.New("unknown currency")

// RoundingDirection controls how an amount lands on its rounding unit.
type RoundingDirection int

const (
	RoundNearest RoundingDirection = iota
	RoundUp
	RoundDown // truncation
	RoundNone
)

// RoundingPolicy is a per-currency rounding rule.
type RoundingPolicy struct {
	Decimals  int32
	Unit      decimal.Decimal // zero unit means "round to Decimals only"
	Direction RoundingDirection
}

// Apply rounds an amount under the policy.
func (p RoundingPolicy) Apply(amount decimal.Decimal) decimal.Decimal {
	if p.Direction == RoundNone {
		return amount
	}
	if !p.Unit.IsZero() {
		q := amount.Div(p.Unit)
		switch p.Direction {
		case RoundUp:
			q = q.Ceil()
		case RoundDown:
			q = q.Floor()
		default:
			q = q.Round(0)
		}
		return q.Mul(p.Unit)
	}
	switch p.Direction {
	case RoundUp:
		return amount.RoundCeil(p.Decimals)
	case RoundDown:
		return amount.RoundFloor(p.Decimals)
	default:
		return amount.Round(p.Decimals)
	}
}

// Converter is the currency conversion collaborator.
type Converter interface {
	// Convert converts an amount into the target currency. The result is
	// rounded under the target currency's policy.
	Convert(m Money, to Currency) (Money, error)

	// Round rounds an amount under its own currency's policy. The
	// international flag selects between international and domestic
	// rounding rules where they differ.
	Round(m Money, international bool) Money
}

// =============================================================================
// FIXED-RATE CONVERTER - In-process implementation
// =============================================================================

// CurrencyMeta describes one currency's rounding behavior.
type CurrencyMeta struct {
	Decimals      int32
	Unit          decimal.Decimal
	Direction     RoundingDirection
	IntlDirection RoundingDirection // used when rounding international fares
}

// FixedRateConverter converts through NUC cross rates. Rates are
// "currency units per 1 NUC". Read-only after construction.
type FixedRateConverter struct {
	rates map[Currency]decimal.Decimal
	meta  map[Currency]CurrencyMeta
}

// NewFixedRateConverter creates a converter with NUC registered at 1:1
// and 2-decimal nearest rounding as the default metadata.
func NewFixedRateConverter() *FixedRateConverter {
	c := &FixedRateConverter{
		rates: make(map[Currency]decimal.Decimal),
		meta:  make(map[Currency]CurrencyMeta),
	}
	c.rates[CurrencyNUC] = decimal.NewFromInt(1)
	c.meta[CurrencyNUC] = CurrencyMeta{Decimals: 2, Direction: RoundNearest, IntlDirection: RoundNearest}
	return c
}

// WithRate registers a currency at the given units-per-NUC rate with
// default 2-decimal nearest rounding. Returns the converter for chaining.
func (c *FixedRateConverter) WithRate(cur Currency, perNUC float64) *FixedRateConverter {
	c.rates[cur] = decimal.NewFromFloat(perNUC)
	if _, ok := c.meta[cur]; !ok {
		c.meta[cur] = CurrencyMeta{Decimals: 2, Direction: RoundNearest, IntlDirection: RoundNearest}
	}
	return c
}

// WithMeta overrides a currency's rounding metadata.
func (c *FixedRateConverter) WithMeta(cur Currency, meta CurrencyMeta) *FixedRateConverter {
	c.meta[cur] = meta
	return c
}

func (c *FixedRateConverter) policy(cur Currency, international bool) RoundingPolicy {
	m, ok := c.meta[cur]
	if !ok {
		return RoundingPolicy{Decimals: 2, Direction: RoundNearest}
	}
	dir := m.Direction
	if international {
		dir = m.IntlDirection
	}
	return RoundingPolicy{Decimals: m.Decimals, Unit: m.Unit, Direction: dir}
}

// Convert converts through the NUC cross rate.
func (c *FixedRateConverter) Convert(m Money, to Currency) (Money, error) {
	if m.Currency == to {
		return c.Round(m, false), nil
	}
	fromRate, ok := c.rates[m.Currency]
	if !ok || fromRate.IsZero() {
		return Money{}, fmt.Errorf("convert %s: %w", m.Currency, ErrUnknownCurrency)
	}
	toRate, ok := c.rates[to]
	if !ok {
		return Money{}, fmt.Errorf("convert to %s: %w", to, ErrUnknownCurrency)
	}
	nuc := m.Amount.Div(fromRate)
	out := Money{Amount: nuc.Mul(toRate), Currency: to}
	return c.Round(out, false), nil
}

// Round rounds under the amount's own currency policy.
func (c *FixedRateConverter) Round(m Money, international bool) Money {
	p := c.policy(m.Currency, international)
	return Money{Amount: p.Apply(m.Amount), Currency: m.Currency}
}

var _ Converter = (*FixedRateConverter)(nil)
