/*
walker.go - Rule set walker

PURPOSE:
  Drives the outer nested loop over rule -> rule set -> qualifier block ->
  rule item, invoking validation, security matching, permission
  reconciliation, calculation and candidate selection at the correct
  points, and emitting derived fares at scope boundaries.

SCOPE PROTOCOL:
  A scope is one contiguous qualifier-free block of rule items, or one
  IF-guarded set. At most one fare is emitted per scope (fare-display
  transactions aside), chosen as the minimum-amount candidate observed
  within it.
  - A qualifier boundary always flushes the prior pending candidate
    before the qualifier is evaluated.
  - A qualifier failure skips the rest of its rule set, payload included.
  - An item with a non-default directionality or in/out indicator, or
    the first matched item for a non-adult passenger type, forces
    immediate emission for that single item.
  - A trailing unconditional block emits its pending candidate after the
    last rule set.

SOURCE ORDERING:
  Fare-retailer calculation data is attempted first; legacy markup data
  is consulted only when the retailer pass produced zero successes in
  the scope. Redistribution data from eligible lower-sequence security
  records is tried on both paths. A wholesale-tagged calculation row
  prices the scope's explicit wholesale amount instead of competing for
  selection.

SOFT PASS:
  A fare created from a conditionally qualified item, or from an item
  with non-default directionality/in-out, is marked soft-passed: later
  re-validation stages must re-check it.

ERRORS:
  A store failure or a qualifier collaborator failure abandons the
  CURRENT rule only, reported as a *pricing.RuleError; the caller's fare
  walk continues. A hard negative security match fails the rule with
  zero derived fares and no error.
*/
package engine

import (
	"context"

	"github.com/warp/fare-engine/negotiated"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/retailer"
	"github.com/warp/fare-engine/rules"
)

// QualifierValidator evaluates an IF/AND qualifier block. External
// collaborator; the production implementation runs the full rule-category
// validation framework, tests inject fixtures.
type QualifierValidator interface {
	Validate(ctx context.Context, base pricing.BaseFare, quals []rules.RuleItem, txn pricing.TxnContext) (bool, error)
}

// AlwaysPassQualifiers accepts every qualifier block.
type AlwaysPassQualifiers struct{}

func (AlwaysPassQualifiers) Validate(context.Context, pricing.BaseFare, []rules.RuleItem, pricing.TxnContext) (bool, error) {
	return true, nil
}

// Walker processes one rule at a time for one base fare. Each pricing
// request owns its own instance; no state is shared across requests.
type Walker struct {
	store    rules.Store
	conv     pricing.Converter
	hier     *pricing.PaxHierarchy
	diag     pricing.DiagSink
	qualify  QualifierValidator
	variants *VariantFactory
}

// NewWalker wires a walker from its collaborators.
func NewWalker(store rules.Store, conv pricing.Converter, hier *pricing.PaxHierarchy, diag pricing.DiagSink, qualify QualifierValidator) *Walker {
	return &Walker{
		store:    store,
		conv:     conv,
		hier:     hier,
		diag:     diag,
		qualify:  qualify,
		variants: NewVariantFactory(conv),
	}
}

// scopeState is the per-scope bookkeeping the walker threads through
// item evaluation. Reset together with the selector.
type scopeState struct {
	retailerSuccess int
	markupSuccess   int

	// wholesale holds the explicit wholesale amount priced by a
	// wholesale-tagged calculation row within the scope, if any.
	wholesale *pricing.Money
}

// ProcessRule walks one rule for one base fare. Returns the derived
// fares emitted, or a RuleError when the rule had to be abandoned.
func (w *Walker) ProcessRule(ctx context.Context, base pricing.BaseFare, rule rules.Rule, txn pricing.TxnContext) ([]pricing.DerivedFare, *pricing.RuleError) {
	mode := pricing.SelectMinimum
	if txn.FareDisplay {
		mode = pricing.SelectAll
	}
	sel := pricing.NewCandidateSelector(w.hier, mode, base.PaxType)
	scope := &scopeState{}

	var out []pricing.DerivedFare
	firstMatchEmitted := false

	for _, set := range rule.Sets {
		quals, payload := splitQualifiers(set.Items)

		qualified := len(quals) > 0
		if qualified {
			// A qualifier boundary flushes the prior contiguous block.
			w.emitScope(base, txn, sel, scope, false, &out)

			ok, err := w.qualify.Validate(ctx, base, quals, txn)
			if err != nil {
				return nil, &pricing.RuleError{
					Vendor: rule.Key.Vendor, Rule: rule.Key.RuleNumber,
					Stage: "qualifier", Err: err,
				}
			}
			if !ok {
				w.tracef("rule %s set skipped: qualifier failed", rule.Key.RuleNumber)
				continue
			}
		}

		forced := false
		for _, item := range payload {
			itemForces := item.Directionality != 0 && item.Directionality != rules.IndicatorBlank ||
				item.InOutInd != 0 && item.InOutInd != rules.IndicatorBlank

			if itemForces {
				// The single item gets its own scope.
				w.emitScope(base, txn, sel, scope, qualified, &out)
			}

			kept, hardDeny, err := w.evaluateItem(ctx, base, rule.Key, item, txn, sel, scope)
			if err != nil {
				return nil, &pricing.RuleError{
					Vendor: rule.Key.Vendor, Rule: rule.Key.RuleNumber,
					Stage: "calculation", Err: err,
				}
			}
			if hardDeny {
				// Hard negative security match: the whole rule fails
				// with zero derived fares.
				w.tracef("rule %s: %v", rule.Key.RuleNumber, pricing.ErrSecurityDenied)
				return nil, nil
			}

			if itemForces {
				w.emitScope(base, txn, sel, scope, true, &out)
				forced = true
				continue
			}

			if kept && !firstMatchEmitted && base.PaxType != pricing.PaxAdult {
				// Non-adult passenger types emit on the first matched
				// item rather than waiting for end of set.
				w.emitScope(base, txn, sel, scope, qualified, &out)
				firstMatchEmitted = true
				forced = true
			}
		}

		if qualified || forced {
			w.emitScope(base, txn, sel, scope, qualified, &out)
		}
	}

	// Unconditional trailing block.
	w.emitScope(base, txn, sel, scope, false, &out)
	return out, nil
}

// splitQualifiers separates the leading IF/AND block from the payload
// items. Qualifier-tagged markers inside the payload are skipped too.
func splitQualifiers(items []rules.RuleItem) (quals, payload []rules.RuleItem) {
	i := 0
	for ; i < len(items) && items[i].Relation.IsQualifier(); i++ {
		quals = append(quals, items[i])
	}
	for ; i < len(items); i++ {
		if items[i].Relation.IsQualifier() {
			continue
		}
		payload = append(payload, items[i])
	}
	return quals, payload
}

// evaluateItem runs the gate, security matching and calculation for one
// payload item, feeding candidates to the selector.
func (w *Walker) evaluateItem(ctx context.Context, base pricing.BaseFare, key rules.RuleKey, item rules.RuleItem, txn pricing.TxnContext, sel *pricing.CandidateSelector, scope *scopeState) (kept, hardDeny bool, err error) {
	gate := negotiated.ValidateItem(item, base, txn)
	if gate.Status != negotiated.GatePass {
		w.tracef("item %d gated: %s", item.ItemNo, gate.Reason)
		return false, false, nil
	}

	secList, err := w.store.GetSecurity(ctx, key.Vendor, item.SecurityItemNo)
	if err != nil {
		return false, false, err
	}
	match := negotiated.MatchSecurity(secList, txn.Agent, txn.Intent())
	if match.Status == negotiated.MatchDeniedFirst {
		return false, true, nil
	}

	if match.Status == negotiated.MatchFound {
		if txn.Ticketing && !match.TicketingAuthorized {
			w.tracef("item %d: matched record does not authorize ticketing", item.ItemNo)
		} else {
			k, err := w.primaryCandidates(ctx, base, key, item, txn, match, sel, scope)
			if err != nil {
				return false, false, err
			}
			kept = kept || k
		}
	}

	// Redistribution data from eligible lower-sequence records is tried
	// even when the primary decision was no-match.
	k, err := w.redistributionCandidates(ctx, base, key, item, txn, secList, match, sel, scope)
	if err != nil {
		return false, false, err
	}
	kept = kept || k

	return kept, false, nil
}

// primaryCandidates prices the matched security record's calculation
// data: fare-retailer rules first, legacy markup rows only when the
// retailer pass produced zero successes in the scope.
func (w *Walker) primaryCandidates(ctx context.Context, base pricing.BaseFare, key rules.RuleKey, item rules.RuleItem, txn pricing.TxnContext, match negotiated.MatchResult, sel *pricing.CandidateSelector, scope *scopeState) (bool, error) {
	kept := false

	retailerRules, err := w.store.GetFareRetailerRules(ctx, txn.Agent.PCC, txn.Date)
	if err != nil {
		return false, err
	}
	for _, rr := range retailer.MatchRules(retailerRules, item.ItemNo, 0) {
		perm, rerr := retailer.Reconcile(match.Record, rr, txn.Agent, txn.Ticketing)
		if rerr != nil {
			w.tracef("item %d retailer rule %d: %v", item.ItemNo, rr.RuleID, rerr)
			continue
		}
		for _, rec := range retailer.LoadCalcRecords(rr) {
			cand, ok := w.price(base, rec, item, match)
			if !ok {
				continue
			}
			cand.AccountCode = rr.Resulting.AccountCode
			cand.FromUpdate = perm.Update
			scope.retailerSuccess++
			if sel.Keep(cand) {
				kept = true
			}
		}
	}

	if scope.retailerSuccess > 0 {
		return kept, nil
	}
	if match.Record == nil {
		// Blank record where one was expected: skip the single item.
		w.tracef("item %d: %v", item.ItemNo, pricing.ErrRuleDataMissing)
		return kept, nil
	}

	calcItem := item.CalcItemNo
	if match.Record.CalcItemNo != 0 {
		calcItem = match.Record.CalcItemNo
	}
	rows, err := w.store.GetCalculation(ctx, key.Vendor, calcItem)
	if err != nil {
		return kept, err
	}
	if len(rows) == 0 {
		w.tracef("item %d: %v", item.ItemNo, pricing.ErrNoCalculation)
	}
	for _, rec := range negotiated.LoadCalcRecords(rows, key.Vendor, item.ItemNo, match.Record.AgencyPCC) {
		cand, ok := w.price(base, rec, item, match)
		if !ok {
			continue
		}
		if rec.Wholesale {
			n := cand.Native
			scope.wholesale = &n
			continue
		}
		scope.markupSuccess++
		if sel.Keep(cand) {
			kept = true
		}
	}
	return kept, nil
}

// redistributionCandidates prices markup controls owned by security
// records below the boundary that explicitly allow redistribution.
func (w *Walker) redistributionCandidates(ctx context.Context, base pricing.BaseFare, key rules.RuleKey, item rules.RuleItem, txn pricing.TxnContext, secList []rules.SecurityRecord, match negotiated.MatchResult, sel *pricing.CandidateSelector, scope *scopeState) (bool, error) {
	kept := false
	for _, rec := range negotiated.EligibleRedistributions(secList, match) {
		controls, err := w.store.GetMarkupControl(ctx, rec.AgencyPCC, key, txn.Date)
		if err != nil {
			return kept, err
		}
		for _, cr := range negotiated.LoadMarkupControls(controls, item.ItemNo) {
			cand, ok := w.price(base, cr, item, match)
			if !ok {
				continue
			}
			if cr.Wholesale {
				n := cand.Native
				scope.wholesale = &n
				continue
			}
			cand.FromRedistribution = true
			if sel.Keep(cand) {
				kept = true
			}
		}
	}
	return kept, nil
}

// price evaluates one normalized calculation record against the base
// fare. Returns false when no valid price was produced (negative result,
// range violation, unsupported indicator).
func (w *Walker) price(base pricing.BaseFare, rec pricing.CalcRecord, item rules.RuleItem, match negotiated.MatchResult) (pricing.Candidate, bool) {
	st := pricing.NewMoneyState(base.Amount, base.NUCAmount, base.International, w.conv)
	if err := rec.Expr.Apply(st); err != nil {
		w.tracef("item %d calc %d: %v", item.ItemNo, rec.Provenance.CalcSeqNo, err)
		return pricing.Candidate{}, false
	}

	native := st.Native()
	if native.IsNegative() {
		return pricing.Candidate{}, false
	}
	if rec.Range != nil && !rec.Range.Contains(native, w.conv) {
		w.tracef("item %d calc %d: out of range", item.ItemNo, rec.Provenance.CalcSeqNo)
		return pricing.Candidate{}, false
	}

	paxType := base.PaxType
	if item.PaxType != "" {
		paxType = item.PaxType
	}

	cand := pricing.Candidate{
		Native:     native,
		NUC:        st.NUC(),
		PaxType:    paxType,
		Level:      rec.Level,
		Provenance: rec.Provenance,
		Calculated: rec.Expr.Indicator != pricing.CalcSpecified,
	}
	if item.Ticketing != nil {
		cand.TicketingInd = item.Ticketing.Method
	}
	if match.Record != nil && match.Record.Geo.Type == 'N' && match.Record.Geo.Code == "FR" {
		cand.NationFrance = true
	}
	return cand, true
}

// emitScope flushes the selector's pending state into derived fares and
// resets the scope. No-op when nothing is pending.
func (w *Walker) emitScope(base pricing.BaseFare, txn pricing.TxnContext, sel *pricing.CandidateSelector, scope *scopeState, softPass bool, out *[]pricing.DerivedFare) {
	if !sel.HasCandidate() {
		return
	}

	if all := sel.All(); all != nil {
		// Fare display keeps every price point.
		for _, c := range all {
			rd := ruleDataOf(c)
			*out = append(*out, w.variants.Create(base, txn, c.Native.Amount, c.NUC, &rd, kindOf(&rd), softPass))
		}
	} else {
		native, nuc, rd := sel.Best()
		fare := w.variants.Create(base, txn, native, nuc, rd, kindOf(rd), softPass)
		*out = append(*out, fare)
		if rd.Provenance.ViewNet && rd.Level == pricing.LevelNet {
			*out = append(*out, w.variants.Wholesale(base, txn, &fare, scope.wholesale, rd, softPass))
		}
	}

	sel.Reset()
	scope.retailerSuccess = 0
	scope.markupSuccess = 0
	scope.wholesale = nil
}

// kindOf derives the variant kind from kept rule data.
func kindOf(rd *pricing.RuleData) pricing.VariantKind {
	switch {
	case rd.FromRedistribution:
		return pricing.VariantRedistributed
	case rd.Level == pricing.LevelNet:
		return pricing.VariantNet
	default:
		return pricing.VariantSelling
	}
}

// ruleDataOf builds rule data from one kept candidate (fare-display
// emission path).
func ruleDataOf(c pricing.Candidate) pricing.RuleData {
	return pricing.RuleData{
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

func (w *Walker) tracef(format string, args ...any) {
	if w.diag != nil && w.diag.Active() {
		w.diag.Printf(format, args...)
	}
}
