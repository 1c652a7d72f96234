/*
errors.go - Centralized error types for the pricing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Rule-source packages wrap these with additional context.

ERROR CATEGORIES:
  1. Denial errors - a rule cannot be processed for this requester
  2. Data errors - malformed or missing rule data
  3. RuleError - the only error that crosses a component boundary in the
     core: it abandons ONE rule at the walker boundary while the fare
     market walk continues

NOT ERRORS:
  Validation failures (gate checks, security non-matches) are encoded as
  value results, and a failed currency conversion silently yields a zero
  amount. Neither travels as an error.

USAGE:
  if errors.Is(err, pricing.ErrSecurityDenied) { ... }
*/
package pricing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSecurityDenied is returned when the first matching security
	// record is a hard negative: the whole rule fails immediately.
	ErrSecurityDenied = errors.New("security record denies this agency")

	// ErrRedistributionDenied is returned when the source agency differs
	// from the requester and the source denies redistribution. The fare
	// cannot be processed for this requester at all.
	ErrRedistributionDenied = errors.New("redistribution denied by source agency")

	// ErrTicketingDenied is returned in ticketing/exchange context when
	// either side of a permission reconciliation denies ticketing.
	ErrTicketingDenied = errors.New("ticketing denied")

	// ErrUnsupportedIndicator is returned for a calculation indicator the
	// engine does not implement.
	ErrUnsupportedIndicator = errors.New("unsupported calculation indicator")

	// ErrNoCalculation is returned when a matched rule item links to no
	// usable calculation rows.
	ErrNoCalculation = errors.New("no calculation data")

	// ErrRuleDataMissing is returned for a null/blank rule record where
	// one was expected. Treated as a skip of the single item, never
	// propagated.
	ErrRuleDataMissing = errors.New("rule data missing")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RuleError abandons processing of one rule. The walker's outer loop
// matches on it explicitly; it never unwinds past the per-rule boundary.
type RuleError struct {
	Vendor VendorCode
	Rule   string
	Stage  string // e.g. "security", "qualifier", "calculation"
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s/%s failed at %s: %v", e.Vendor, e.Rule, e.Stage, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// FareFailure records a base fare that could not complete negotiated
// processing. The fare simply gets no derived variant; invalidating the
// base fare itself is an external concern.
type FareFailure struct {
	FareClass string
	Reason    string
}
