/*
Package rules defines the database-resident rule records the derivation
engine matches against, and the read-only store interface they are
looked up through.

PURPOSE:
  Two parallel rule systems feed fare derivation:
  - Legacy negotiated-fare records: per-carrier/per-tariff restrictions
    with ticketing data, security record lists and markup calculation
    tables (the Table 979/980/983 family).
  - Fare-retailer rules: agency-defined adjustment rules with their own
    calculation details, resulting-fare attributes and permission flags.
  Both normalize into the same pricing.CalcRecord shape before selection,
  so the selector never cares which system a candidate came from.

STRUCTURE:
  Rule -> ordered RuleSets -> ordered RuleItems. Leading items tagged
  IF/AND form a qualifier (precondition) block; the remaining THEN/OR/
  ELSE items are the payload the engine prices.

LIFECYCLE:
  All records here are read-only lookups. Stores return empty collections
  (not errors) when no rows match a key.

SEE ALSO:
  - store.go: the lookup interface
  - negotiated/: legacy-side matching and validation
  - retailer/: fare-retailer-side matching and reconciliation
*/
package rules

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fare-engine/pricing"
)

// =============================================================================
// RULE / RULE SET / RULE ITEM
// =============================================================================

// Relational is the conditional tag linking rule items into IF/THEN
// structures.
type Relational string

const (
	RelNone Relational = ""
	RelIf   Relational = "IF"
	RelThen Relational = "THEN"
	RelOr   Relational = "OR"
	RelAnd  Relational = "AND"
	RelElse Relational = "ELSE"
)

// IsQualifier reports whether the tag marks a precondition item.
func (r Relational) IsQualifier() bool { return r == RelIf || r == RelAnd }

// RuleKey identifies one carrier rule.
type RuleKey struct {
	Vendor     pricing.VendorCode
	Carrier    pricing.CarrierCode
	Tariff     int
	RuleNumber string
}

// Rule is one negotiated-fare rule: an ordered list of rule sets.
type Rule struct {
	Key  RuleKey
	Sets []RuleSet
}

// RuleSet is one ordered block of rule items, possibly led by an
// IF/AND qualifier block.
type RuleSet struct {
	Items []RuleItem
}

// Indicator default: blank means "always applies".
const IndicatorBlank byte = ' '

// RuleItem is one restriction row: the unit of matching, validation and
// calculation.
type RuleItem struct {
	ItemNo   int
	Relation Relational

	PaxType pricing.PaxTypeCode // blank matches any

	// Directionality / in-out: blank means always applies. A non-default
	// value forces immediate fare emission for the single item.
	Directionality byte
	InOutInd       byte

	// UnavailTag: 'X' = unavailable (fail), 'Y' = text only (skip).
	UnavailTag byte

	// RestrictionCarrier constrains the governing carrier; blank means
	// all carriers.
	RestrictionCarrier pricing.CarrierCode

	// Date override window. Zero times leave the side open.
	EffectiveFrom time.Time
	DiscontinueAt time.Time

	DisplayCategory pricing.DisplayCategory

	SecurityItemNo int // link to the security record list
	CalcItemNo     int // link to the legacy calculation table

	Ticketing *TicketingData
}

// =============================================================================
// TICKETING DATA
// =============================================================================

// Method types for net-remit ticketing.
const (
	MethodBlank byte = ' '
	Method1     byte = '1'
	Method2     byte = '2'
	Method3     byte = '3'
	Method4     byte = '4'
	Method5     byte = '5'
)

// TicketingData is the net-remit ticketing block attached to a rule item.
type TicketingData struct {
	Method byte

	CommissionAmount  *pricing.Money
	CommissionPercent *decimal.Decimal

	// Segments is the recurring-segment data block.
	Segments []SegmentData

	// TicketAppl is the byte-101 ticket application indicator.
	TicketAppl byte
}

// SegmentData is one recurring ticketing segment.
type SegmentData struct {
	Carrier   pricing.CarrierCode
	FareBasis string
}

// =============================================================================
// SECURITY RECORDS
// =============================================================================

// Applicability of a security record.
type Applicability string

const (
	ApplRequired   Applicability = "Y" // positive: allowed
	ApplNotAllowed Applicability = "N" // negative: hard constraint
	ApplBlank      Applicability = ""
)

// LocaleType selects how the "who" side of a security record matches.
type LocaleType byte

const (
	LocaleAny    LocaleType = ' '
	LocalePCC    LocaleType = 'T' // match the agency pseudo-city
	LocaleHome   LocaleType = 'H' // match the home agency pseudo-city
	LocaleNation LocaleType = 'N' // match the agency nation
)

// GeoRestriction is the "where" side of a security record. A blank type
// matches everywhere.
type GeoRestriction struct {
	Type byte   // 'N' nation, blank none
	Code string // nation code when Type == 'N'
}

// SecurityRecord is one who/what/where authorization row. One ordered
// list per rule; first positive match wins, but redistribution continues
// past it.
type SecurityRecord struct {
	SeqNo         int
	Applicability Applicability

	LocaleType LocaleType
	LocaleCode string
	AgencyPCC  pricing.PseudoCityCode

	Geo GeoRestriction

	SellInd         bool
	TicketInd       bool
	UpdateInd       bool
	RedistributeInd bool

	// CalcItemNo optionally overrides the rule item's calculation link
	// for this record.
	CalcItemNo int
}

// Permissions returns the record's flag tuple.
func (r SecurityRecord) Permissions() pricing.PermissionTuple {
	return pricing.PermissionTuple{
		Update:       r.UpdateInd,
		Redistribute: r.RedistributeInd,
		Sell:         r.SellInd,
		Ticket:       r.TicketInd,
	}
}

// =============================================================================
// LEGACY MARKUP TABLES
// =============================================================================

// MarkupStatus of a markup control record.
type MarkupStatus byte

const (
	MarkupApproved MarkupStatus = 'A'
	MarkupPending  MarkupStatus = 'P'
	MarkupDeclined MarkupStatus = 'D'
)

// MarkupControl is a legacy markup/redistribution control record owned
// by an agency.
type MarkupControl struct {
	OwnerPCC   pricing.PseudoCityCode
	Vendor     pricing.VendorCode
	Carrier    pricing.CarrierCode
	Tariff     int
	RuleNumber string
	SeqNo      int

	Status     MarkupStatus
	ViewNetInd byte // 'B' = net levels viewable

	Calcs []MarkupCalculate
}

// MarkupCalculate is one legacy markup-calculate row.
type MarkupCalculate struct {
	SeqNo int

	Level     pricing.NetSellIndicator
	Indicator pricing.CalcIndicator
	Percent   decimal.Decimal

	Amount1 pricing.Money
	NoDec1  int32
	Amount2 *pricing.Money
	NoDec2  int32

	Min *pricing.Money
	Max *pricing.Money

	CreatorPCC pricing.PseudoCityCode

	// Wholesale marks a row that prices the wholesale level.
	Wholesale bool
}

// =============================================================================
// FARE RETAILER RULES
// =============================================================================

// RetailerApplicability selects what a fare-retailer rule adjusts.
type RetailerApplicability byte

const (
	RetailerNet       RetailerApplicability = 'N'
	RetailerSelling   RetailerApplicability = 'S'
	RetailerRedistrib RetailerApplicability = 'R'
)

// FareRetailerRule is one agency-defined fare adjustment rule.
type FareRetailerRule struct {
	RuleID    int64
	SourcePCC pricing.PseudoCityCode // agency the rule prices on behalf of
	OwnerPCC  pricing.PseudoCityCode // agency that authored the rule
	SeqNo     int

	Applicability RetailerApplicability
	Active        bool

	EffectiveFrom time.Time
	DiscontinueAt time.Time

	// Inclusion/exclusion item numbers constrain which rule items the
	// retailer rule may price. Empty include list means all.
	IncludeItemNos []int
	ExcludeItemNos []int

	CalcDetails []RetailerCalcDetail
	Resulting   ResultingFareAttr
}

// AppliesTo reports whether the retailer rule may price a rule item.
func (r FareRetailerRule) AppliesTo(itemNo int) bool {
	for _, n := range r.ExcludeItemNos {
		if n == itemNo {
			return false
		}
	}
	if len(r.IncludeItemNos) == 0 {
		return true
	}
	for _, n := range r.IncludeItemNos {
		if n == itemNo {
			return true
		}
	}
	return false
}

// RetailerCalcDetail is one fare-retailer calculation-detail row.
type RetailerCalcDetail struct {
	SeqNo int

	Level     pricing.NetSellIndicator
	Indicator pricing.CalcIndicator
	Percent   decimal.Decimal

	Amount1 pricing.Money
	NoDec1  int32
	Amount2 *pricing.Money
	NoDec2  int32

	Min *pricing.Money
	Max *pricing.Money

	ViewNetInd byte
}

// ResultingFareAttr is the rule-owner-side attribute record reconciled
// against a security record's permissions.
type ResultingFareAttr struct {
	UpdateInd       bool
	RedistributeInd bool
	SellInd         bool
	TicketInd       bool

	AccountCode      string
	TicketDesignator string
}

// Permissions returns the owner-side flag tuple.
func (a ResultingFareAttr) Permissions() pricing.PermissionTuple {
	return pricing.PermissionTuple{
		Update:       a.UpdateInd,
		Redistribute: a.RedistributeInd,
		Sell:         a.SellInd,
		Ticket:       a.TicketInd,
	}
}
