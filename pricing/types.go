/*
Package pricing provides the core fare derivation engine.

PURPOSE:
  This package contains the domain-agnostic building blocks for deriving
  new priced fare variants from a base published fare: dual-currency money
  arithmetic, tagged price expressions, minimum-candidate selection with
  passenger-type hierarchy precedence, and permission reconciliation.
  The rule-source specifics (legacy negotiated markup tables, fare-retailer
  rules) live in their own packages and feed normalized records into this one.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An amount with a currency, backed by decimal.Decimal
  - BaseFare: An existing priced fare, read-only input to derivation
  - DerivedFare: A new fare variant produced by the engine
  - Provenance: Audit trail linking a derived fare to the rule data
    that produced it

DESIGN PRINCIPLES:
  1. Immutability: BaseFare is never mutated, only read and cloned
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Value semantics: Candidate/rule data are threaded through the
     pipeline as values, never shared via aliased pointers
  4. Auditability: Every derived fare carries full provenance

SEE ALSO:
  - money.go: Dual-currency running amount (MoneyState)
  - expression.go: Tagged calculation descriptors (PriceExpression)
  - selector.go: Minimum-candidate tracking (CandidateSelector)
  - permissions.go: Permission tuple reconciliation
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Amount with currency
// =============================================================================

// Currency is an ISO 4217 code, or the neutral unit "NUC".
type Currency string

// CurrencyNUC is the Neutral Unit of Construction, the currency-agnostic
// unit fares are internationally compared in.
const CurrencyNUC Currency = "NUC"

type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func NewMoney(amount float64, cur Currency) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: cur}
}

func NewMoneyFromDecimal(amount decimal.Decimal, cur Currency) Money {
	return Money{Amount: amount, Currency: cur}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Zero() Money       { return Money{Amount: decimal.Zero, Currency: m.Currency} }
func (m Money) IsZero() bool      { return m.Amount.IsZero() }
func (m Money) IsNegative() bool  { return m.Amount.IsNegative() }
func (m Money) Add(b Money) Money { return Money{Amount: m.Amount.Add(b.Amount), Currency: m.Currency} }
func (m Money) Sub(b Money) Money { return Money{Amount: m.Amount.Sub(b.Amount), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(s), Currency: m.Currency}
}
func (m Money) Div(s decimal.Decimal) Money {
	return Money{Amount: m.Amount.Div(s), Currency: m.Currency}
}
func (m Money) LessThan(b Money) bool    { return m.Amount.LessThan(b.Amount) }
func (m Money) GreaterThan(b Money) bool { return m.Amount.GreaterThan(b.Amount) }

// InvalidAmount marks "no candidate kept yet" in selector state.
// A real computed fare amount is never negative; negative results are
// discarded before selection.
var InvalidAmount = decimal.NewFromInt(-1)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type VendorCode string
type CarrierCode string
type PseudoCityCode string
type PaxTypeCode string

// Common passenger type codes. The hierarchy groups (see hierarchy.go)
// use the negotiated, JCB and PFA families.
const (
	PaxAdult PaxTypeCode = "ADT"
	PaxNeg   PaxTypeCode = "NEG"
	PaxCNE   PaxTypeCode = "CNE"
	PaxINE   PaxTypeCode = "INE"
	PaxJCB   PaxTypeCode = "JCB"
	PaxJNN   PaxTypeCode = "JNN"
	PaxJNF   PaxTypeCode = "JNF"
	PaxPFA   PaxTypeCode = "PFA"
	PaxCBC   PaxTypeCode = "CBC"
	PaxCBI   PaxTypeCode = "CBI"
)

// DisplayCategory is the Cat 35 fare display category type.
type DisplayCategory byte

const (
	DisplaySelling   DisplayCategory = 'L' // selling fare, no net levels
	DisplayNetTicket DisplayCategory = 'T' // net fare with ticketing data
	DisplayNet       DisplayCategory = 'C' // net fare
)

// =============================================================================
// BASE FARE - Immutable input to derivation
// =============================================================================

// BaseFare is an existing priced fare. The derivation engine never mutates
// a BaseFare; derived variants are built from a clone.
type BaseFare struct {
	FareClass  string
	Vendor     VendorCode
	Carrier    CarrierCode
	Tariff     int
	RuleNumber string
	PaxType    PaxTypeCode

	Amount    Money           // native currency amount
	NUCAmount decimal.Decimal // neutral-unit shadow amount

	RoundTrip       bool
	International   bool
	DisplayCategory DisplayCategory
}

// Clone returns an independent copy. BaseFare is a value type today, but
// callers go through Clone so deep-copy semantics survive future fields.
func (f BaseFare) Clone() BaseFare { return f }

// =============================================================================
// DERIVED FARE - Output of the derivation pipeline
// =============================================================================

// VariantKind identifies which priced variant a derived fare represents.
type VariantKind string

const (
	VariantSelling       VariantKind = "selling"
	VariantNet           VariantKind = "net"
	VariantWholesale     VariantKind = "wholesale"
	VariantRedistributed VariantKind = "redistributed"
)

// Provenance links a derived fare back to the rule data that accepted it.
type Provenance struct {
	Vendor       VendorCode
	RuleItemNo   int
	CalcSeqNo    int
	SourcePCC    PseudoCityCode
	CreatorPCC   PseudoCityCode // abacus/infini-type vendor bookkeeping
	ViewNet      bool
	FromRetailer bool
}

// DerivedFare is a new fare variant cloned from a BaseFare with a
// recomputed amount. Ownership transfers to the fare market it is
// appended to once emitted.
type DerivedFare struct {
	ID   string
	Base BaseFare
	Kind VariantKind

	Amount    Money           // displayed amount (halved for round-trip display)
	NUCAmount decimal.Decimal

	// OriginalNUC is set when the derived neutral amount diverges from the
	// base fare's neutral amount by more than a fixed epsilon. Used for
	// historical/exchanged bases.
	OriginalNUC *decimal.Decimal

	// SoftPassed marks a fare created from a conditionally qualified item;
	// later re-validation stages must re-check it rather than trusting the
	// earlier pass.
	SoftPassed bool

	// Cat25Responsive records whether the fare passed fare-by-rule
	// calculated validation.
	Cat25Responsive bool

	Provenance Provenance
	RuleData   RuleData
}

// =============================================================================
// FARE MARKET - Output collection
// =============================================================================

// FareMarket holds the base fares for one origin/destination market and
// collects derived variants as they are emitted.
type FareMarket struct {
	Origin      string
	Destination string
	Carrier     CarrierCode
	Fares       []BaseFare
	Derived     []DerivedFare
}
