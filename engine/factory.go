/*
factory.go - Derived fare construction

PURPOSE:
  Given a base fare, an accepted calculation result and its kept rule
  data, produce the new derived fare record: deep-cloned base, displayed
  amount (halved for round-trip display unless the transaction is
  round-the-world), neutral-unit bookkeeping with the original-amount
  epsilon check, provenance tags and the wholesale fallback chain.

INVARIANT:
  The base fare is never mutated. Every derived fare owns its clone.
*/
package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/fare-engine/pricing"
)

// originalNUCEpsilon is the divergence above which the base fare's
// neutral amount is preserved on the derived fare for historical and
// exchanged bases.
var originalNUCEpsilon = pricing.MustParseDecimal("0.0001")

var two = decimal.NewFromInt(2)

// VariantFactory builds derived fare records.
type VariantFactory struct {
	conv pricing.Converter
}

func NewVariantFactory(conv pricing.Converter) *VariantFactory {
	return &VariantFactory{conv: conv}
}

// Create builds one derived fare from an accepted candidate amount.
func (f *VariantFactory) Create(base pricing.BaseFare, txn pricing.TxnContext, native, nuc decimal.Decimal, rd *pricing.RuleData, kind pricing.VariantKind, softPass bool) pricing.DerivedFare {
	clone := base.Clone()

	amount := pricing.Money{Amount: native, Currency: base.Amount.Currency}
	if base.RoundTrip && !txn.RoundTheWorld {
		// Round-trip fares display the one-way half; round-the-world
		// keeps the full round-trip amount.
		amount = f.conv.Round(amount.Div(two), base.International)
		nuc = f.conv.Round(pricing.Money{Amount: nuc.Div(two), Currency: pricing.CurrencyNUC}, base.International).Amount
	}

	fare := pricing.DerivedFare{
		ID:              uuid.NewString(),
		Base:            clone,
		Kind:            kind,
		Amount:          amount,
		NUCAmount:       nuc,
		SoftPassed:      softPass,
		Cat25Responsive: rd.Calculated,
		Provenance:      rd.Provenance,
		RuleData:        *rd,
	}

	if nuc.Sub(base.NUCAmount).Abs().GreaterThan(originalNUCEpsilon) {
		orig := base.NUCAmount
		fare.OriginalNUC = &orig
	}
	return fare
}

// Wholesale builds the wholesale variant. When no explicit wholesale
// amount exists the amount falls back to the selling variant's (if the
// base was a selling fare) or the original base amount.
func (f *VariantFactory) Wholesale(base pricing.BaseFare, txn pricing.TxnContext, selling *pricing.DerivedFare, explicit *pricing.Money, rd *pricing.RuleData, softPass bool) pricing.DerivedFare {
	var native, nuc decimal.Decimal
	switch {
	case explicit != nil:
		native = explicit.Amount
		if n, err := f.conv.Convert(*explicit, pricing.CurrencyNUC); err == nil {
			nuc = n.Amount
		}
		fare := f.Create(base, txn, native, nuc, rd, pricing.VariantWholesale, softPass)
		return fare
	case base.DisplayCategory == pricing.DisplaySelling && selling != nil:
		// Reuse the selling variant's already-displayed amounts.
		fare := selling.Base.Clone()
		out := pricing.DerivedFare{
			ID:              uuid.NewString(),
			Base:            fare,
			Kind:            pricing.VariantWholesale,
			Amount:          selling.Amount,
			NUCAmount:       selling.NUCAmount,
			SoftPassed:      softPass,
			Cat25Responsive: rd.Calculated,
			Provenance:      rd.Provenance,
			RuleData:        *rd,
		}
		out.OriginalNUC = selling.OriginalNUC
		return out
	default:
		return f.Create(base, txn, base.Amount.Amount, base.NUCAmount, rd, pricing.VariantWholesale, softPass)
	}
}
