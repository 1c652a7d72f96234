/*
permissions.go - Permission tuple reconciliation

PURPOSE:
  A security record (source-agency side) and a resulting-fare attribute
  record (rule-owner side) each carry four independent permission flags:
  update, redistribute, sell, ticket. When both rule systems apply to one
  request the two tuples must be reconciled into one effective tuple.

CASE TABLE:
  - Sell and ticket require BOTH sides to grant: a deny on either side
    denies the reconciled flag.
  - Update is likewise downgraded wherever the owner side denies it.
  - Redistribute is only overridden by the owner side when the source
    agency is NOT the requester itself.
  - If the source agency differs from the requester AND the source denies
    redistribution, the fare cannot be processed for this requester at
    all (ErrRedistributionDenied).
  - In ticketing/exchange context, a reconciled ticket deny is an
    immediate deny (ErrTicketingDenied).
*/
package pricing

// PermissionTuple is the {update, redistribute, sell, ticket} flag set.
type PermissionTuple struct {
	Update       bool
	Redistribute bool
	Sell         bool
	Ticket       bool
}

// ReconcilePermissions computes the effective tuple from the source
// (security record) side and the owner (resulting-fare attribute) side.
// sameAgency reports whether the source agency is the requester's own
// agency; ticketingTxn marks a ticketing/exchange context.
func ReconcilePermissions(source, owner PermissionTuple, sameAgency, ticketingTxn bool) (PermissionTuple, error) {
	if !sameAgency && !source.Redistribute {
		return PermissionTuple{}, ErrRedistributionDenied
	}

	out := source
	out.Sell = source.Sell && owner.Sell
	out.Ticket = source.Ticket && owner.Ticket
	out.Update = source.Update && owner.Update
	if !sameAgency && !owner.Redistribute {
		out.Redistribute = false
	}

	if ticketingTxn && !out.Ticket {
		return PermissionTuple{}, ErrTicketingDenied
	}
	return out, nil
}
