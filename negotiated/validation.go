/*
validation.go - Pre-calculation validation gate

PURPOSE:
  The battery of checks a rule item must pass before any security or
  calculation matching happens. First failure short-circuits, each with a
  distinct reason. Every sub-check is a pure predicate over already-loaded
  records; none perform I/O.

CHECK ORDER:
  passenger-type match
  -> date-override window
  -> unavailable/text-only tag
  -> all-carriers restriction
  -> ticketing-data consistency (method vs commission vs segments, per
     display category L/T/C)
  -> Korea locale for method 3
  -> byte-101 indicator support

TICKETING CONSISTENCY MATRIX:
  - Commission amount and commission percent are mutually exclusive.
  - Commission data and recurring segment data are mutually exclusive.
  - Method 1 (sell net, no adjustment) carries no commission data.
  - Methods 2 and 5 require exactly one commission field.
  - Method 3 requires recurring segment data, and methods other than 3
    may not carry it.
  - Display category L (selling) may not carry a net method (2/3/5).
  - Display category T requires a method.
*/
package negotiated

import (
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// GateStatus is the tri-state outcome of the validation gate.
type GateStatus int

const (
	GatePass GateStatus = iota
	GateFail
	GateSkip // item is valid to ignore (e.g. text-only), not a failure
)

// GateResult carries the status and a diagnostic reason.
type GateResult struct {
	Status GateStatus
	Reason string
}

func pass() GateResult                { return GateResult{Status: GatePass} }
func fail(reason string) GateResult   { return GateResult{Status: GateFail, Reason: reason} }
func skip(reason string) GateResult   { return GateResult{Status: GateSkip, Reason: reason} }

// ValidateItem runs the gate for one rule item against a base fare and
// the resolved transaction context.
func ValidateItem(item rules.RuleItem, base pricing.BaseFare, ctx pricing.TxnContext) GateResult {
	if item.PaxType != "" && item.PaxType != base.PaxType {
		return fail("passenger type mismatch")
	}

	if !item.EffectiveFrom.IsZero() && ctx.Date.Before(item.EffectiveFrom) {
		return fail("not yet effective")
	}
	if !item.DiscontinueAt.IsZero() && ctx.Date.After(item.DiscontinueAt) {
		return fail("discontinued")
	}

	switch item.UnavailTag {
	case 'X':
		return fail("unavailable")
	case 'Y':
		return skip("text only")
	}

	if item.RestrictionCarrier != "" && item.RestrictionCarrier != base.Carrier {
		return fail("carrier restriction")
	}

	if item.Ticketing != nil {
		if r := validateTicketing(item, ctx); r.Status != GatePass {
			return r
		}
	} else if item.DisplayCategory == pricing.DisplayNetTicket {
		return fail("net/ticket category without ticketing data")
	}

	return pass()
}

// validateTicketing applies the ticketing-data consistency matrix.
func validateTicketing(item rules.RuleItem, ctx pricing.TxnContext) GateResult {
	t := item.Ticketing

	hasCommission := t.CommissionAmount != nil || t.CommissionPercent != nil
	if t.CommissionAmount != nil && t.CommissionPercent != nil {
		return fail("commission amount and percent are exclusive")
	}
	if hasCommission && len(t.Segments) > 0 {
		return fail("commission data and segment data are exclusive")
	}

	switch t.Method {
	case rules.Method1:
		if hasCommission {
			return fail("method 1 carries no commission data")
		}
	case rules.Method2, rules.Method5:
		if !hasCommission {
			return fail("commission data required for method")
		}
	case rules.Method3:
		if len(t.Segments) == 0 {
			return fail("recurring segment data required for method 3")
		}
		if ctx.Agent.Nation != "KR" {
			return fail("method 3 restricted to Korea locale")
		}
	}
	if t.Method != rules.Method3 && len(t.Segments) > 0 {
		return fail("segment data only valid for method 3")
	}

	switch item.DisplayCategory {
	case pricing.DisplaySelling:
		if t.Method == rules.Method2 || t.Method == rules.Method3 || t.Method == rules.Method5 {
			return fail("selling category with net method")
		}
	case pricing.DisplayNetTicket:
		if t.Method == rules.MethodBlank || t.Method == 0 {
			return fail("net/ticket category requires a method")
		}
	}

	switch t.TicketAppl {
	case 0, rules.IndicatorBlank, 'A', 'B':
		// supported
	default:
		return fail("unsupported ticket application indicator")
	}

	return pass()
}
