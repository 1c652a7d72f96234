/*
selector.go - Minimum-candidate tracking across a selection scope

PURPOSE:
  CandidateSelector tracks the running best candidate over an arbitrarily
  ordered stream of calculation candidates (legacy markup, fare-retailer,
  wholesale). A scope is one contiguous qualifier-free block of rule
  items, or one IF-guarded set; the walker resets the selector at scope
  boundaries and emits at most one fare per scope from the kept state.

SELECTION RULES (in order):
  1. A negative amount is never kept - no valid price was produced.
  2. An empty slot always keeps the first candidate.
  3. If the base fare's passenger type participates in the hierarchy,
     a strictly NARROWER candidate passenger type displaces the kept one
     regardless of amount.
  4. Otherwise the strictly lower native amount wins. A fare-retailer
     candidate additionally requires the NUC amount to strictly improve
     at the same time; SelectMinimumBoth extends that rule to every
     candidate.
  5. Fare-display transactions keep EVERY valid candidate, because the
     display must show multiple price points (SelectAll).

STATE:
  bestNative == InvalidAmount means "no candidate kept yet". Reset()
  restores that state and allocates a fresh rule-data record for the next
  scope; kept rule data is never aliased across scopes.
*/
package pricing

import "github.com/shopspring/decimal"

// RuleData is the auxiliary data copied from a kept candidate. One fresh
// record per scope; the emitted fare takes ownership of it.
type RuleData struct {
	Provenance         Provenance
	PaxType            PaxTypeCode
	Level              NetSellIndicator
	NationFrance       bool
	AccountCode        string
	TicketingInd       byte
	FromRedistribution bool
	FromUpdate         bool

	// Calculated marks a percent-derived (fare-by-rule calculated)
	// amount, as opposed to a specified one.
	Calculated bool
}

// Candidate is one priced calculation result offered to the selector.
type Candidate struct {
	Native Money
	NUC    decimal.Decimal

	PaxType            PaxTypeCode
	Level              NetSellIndicator
	Provenance         Provenance
	NationFrance       bool
	AccountCode        string
	TicketingInd       byte
	FromRedistribution bool
	FromUpdate         bool
	Calculated         bool
}

// SelectionMode picks the keep rule for amount comparison.
type SelectionMode int

const (
	// SelectMinimum keeps the strictly lower native amount.
	SelectMinimum SelectionMode = iota
	// SelectMinimumBoth requires native AND neutral amounts to strictly
	// improve together (fare-retailer validation path).
	SelectMinimumBoth
	// SelectAll keeps every valid candidate (fare-display transactions).
	SelectAll
)

// CandidateSelector tracks the best candidate within one scope. Not safe
// for concurrent use; each walker owns its own instance.
type CandidateSelector struct {
	hierarchy        *PaxHierarchy
	mode             SelectionMode
	hierarchyApplies bool

	bestNative decimal.Decimal
	bestNUC    decimal.Decimal
	best       *RuleData

	all []Candidate // SelectAll mode only
}

// NewCandidateSelector creates a selector for one base fare. The
// hierarchy precedence applies only when the base fare's passenger type
// is a member of a hierarchy group.
func NewCandidateSelector(h *PaxHierarchy, mode SelectionMode, basePax PaxTypeCode) *CandidateSelector {
	s := &CandidateSelector{
		hierarchy:        h,
		mode:             mode,
		hierarchyApplies: h != nil && h.Applies(basePax),
	}
	s.Reset()
	return s
}

// HasCandidate reports whether the scope slot holds a kept candidate.
func (s *CandidateSelector) HasCandidate() bool {
	return !s.bestNative.Equal(InvalidAmount)
}

// Best returns the kept amounts and rule data. Only meaningful when
// HasCandidate() is true.
func (s *CandidateSelector) Best() (decimal.Decimal, decimal.Decimal, *RuleData) {
	return s.bestNative, s.bestNUC, s.best
}

// All returns every kept candidate (SelectAll mode).
func (s *CandidateSelector) All() []Candidate { return s.all }

// Keep offers a candidate and reports whether it was kept.
func (s *CandidateSelector) Keep(c Candidate) bool {
	if c.Native.IsNegative() {
		return false
	}

	if s.mode == SelectAll {
		s.all = append(s.all, c)
		if !s.HasCandidate() || c.Native.Amount.LessThan(s.bestNative) {
			s.take(c)
		}
		return true
	}

	if !s.HasCandidate() {
		s.take(c)
		return true
	}

	if s.hierarchyApplies {
		// A narrower passenger-type group displaces a broader one
		// regardless of amount ordering, and a broader one never
		// displaces a narrower one. Equal ranks compare by amount.
		if s.hierarchy.Narrower(c.PaxType, s.best.PaxType) {
			s.take(c)
			return true
		}
		if s.hierarchy.Narrower(s.best.PaxType, c.PaxType) {
			return false
		}
	}

	if s.mode == SelectMinimumBoth || c.Provenance.FromRetailer {
		// Fare-retailer candidates must improve the native AND neutral
		// amounts together to displace the kept one.
		if c.Native.Amount.LessThan(s.bestNative) && c.NUC.LessThan(s.bestNUC) {
			s.take(c)
			return true
		}
		return false
	}
	if c.Native.Amount.LessThan(s.bestNative) {
		s.take(c)
		return true
	}
	return false
}

// take overwrites the kept state and copies the candidate's auxiliary
// tags into the kept rule data.
func (s *CandidateSelector) take(c Candidate) {
	s.bestNative = c.Native.Amount
	s.bestNUC = c.NUC
	s.best = &RuleData{
		Provenance:         c.Provenance,
		PaxType:            c.PaxType,
		Level:              c.Level,
		NationFrance:       c.NationFrance,
		AccountCode:        c.AccountCode,
		TicketingInd:       c.TicketingInd,
		FromRedistribution: c.FromRedistribution,
		FromUpdate:         c.FromUpdate,
		Calculated:         c.Calculated,
	}
}

// Reset clears the scope: invalid amounts, cleared tags, and a fresh
// rule-data record for the next scope.
func (s *CandidateSelector) Reset() {
	s.bestNative = InvalidAmount
	s.bestNUC = InvalidAmount
	s.best = &RuleData{}
	s.all = nil
}
