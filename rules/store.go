/*
store.go - Read-only lookup interface for rule records

PURPOSE:
  Defines the boundary between the derivation engine and the rule-record
  database. The engine consumes keyed lookups only; it never writes rule
  records.

CONTRACT:
  - All lookups are synchronous and read-only.
  - A key with no matching rows returns an EMPTY collection, not an
    error. Errors are reserved for the store itself failing.
  - Returned slices are owned by the caller; implementations must not
    retain or mutate them after returning.

IMPLEMENTATIONS:
  - rules/store: in-memory, fixture-backed (tests, dev, demo scenarios)
  - store/sqlite: sqlite-backed with JSON config columns

SEE ALSO:
  - factory/: parses JSON rule definitions into these record types
*/
package rules

import (
	"context"
	"time"

	"github.com/warp/fare-engine/pricing"
)

// Store is the read-only rule-record lookup boundary.
type Store interface {
	// GetRules returns the rules matching a key that are effective at
	// the given date, ordered as stored.
	GetRules(ctx context.Context, key RuleKey, at time.Time) ([]Rule, error)

	// GetSecurity returns the ordered security record list for an item
	// number, sorted by sequence number.
	GetSecurity(ctx context.Context, vendor pricing.VendorCode, itemNo int) ([]SecurityRecord, error)

	// GetCalculation returns the legacy calculation rows for an item
	// number.
	GetCalculation(ctx context.Context, vendor pricing.VendorCode, itemNo int) ([]MarkupCalculate, error)

	// GetMarkupControl returns the markup control records an agency owns
	// for a rule, effective at the given date.
	GetMarkupControl(ctx context.Context, pcc pricing.PseudoCityCode, key RuleKey, at time.Time) ([]MarkupControl, error)

	// GetFareRetailerRules returns the fare-retailer rules priced on
	// behalf of an agency, sorted by sequence number.
	GetFareRetailerRules(ctx context.Context, sourcePCC pricing.PseudoCityCode, at time.Time) ([]FareRetailerRule, error)
}
