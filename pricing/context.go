/*
context.go - Resolved per-transaction policy configuration

PURPOSE:
  TxnContext carries every transaction-level flag the derivation pipeline
  branches on, resolved ONCE at the top of the pipeline and passed down.
  No component re-checks feature flags mid-algorithm; if a behavior depends
  on the transaction, it reads it from here.

WHY RESOLVED UP FRONT?
  Scattered flag checks make the algorithm's behavior depend on call order
  and hide which paths a given request can take. A single immutable value
  makes the strategy selection explicit and testable.

SEE ALSO:
  - engine/: constructs one TxnContext per pricing request
  - selector.go: FareDisplay switches the keep-all selection mode
*/
package pricing

import "time"

// Intent distinguishes a selling request from a ticketing request when
// matching security records.
type Intent int

const (
	IntentSell Intent = iota
	IntentTicket
)

// Agent identifies the requesting agency.
type Agent struct {
	PCC     PseudoCityCode
	HomePCC PseudoCityCode
	Nation  string // ISO country code, e.g. "KR"
}

// TxnContext is the resolved per-request policy configuration.
// Immutable once constructed; safe to copy.
type TxnContext struct {
	Date  time.Time
	Agent Agent

	// FareDisplay keeps every valid candidate instead of only the minimum,
	// because a display transaction must show multiple price points.
	FareDisplay bool

	// RoundTheWorld keeps the full round-trip amount instead of halving
	// for display.
	RoundTheWorld bool

	// Ticketing marks a ticketing/exchange context: a denied ticket
	// permission on either side of a reconciliation is an immediate deny.
	Ticketing bool

	// BypassNegotiated short-circuits negotiated-fare creation for the
	// whole request. Checked once, up front.
	BypassNegotiated bool
}

// Intent returns the security-matching intent for this transaction.
func (c TxnContext) Intent() Intent {
	if c.Ticketing {
		return IntentTicket
	}
	return IntentSell
}
