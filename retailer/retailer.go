/*
Package retailer provides the fare-retailer rule-source domain: matching
agency-defined adjustment rules, normalizing their calculation details,
and reconciling permissions against resulting-fare attributes.

PURPOSE:
  The fare-retailer system is the newer parallel to the legacy markup
  tables: agencies define their own fare adjustment rules with explicit
  calculation details and a resulting-fare attribute record carrying the
  owner-side permission flags. When both a security record and a
  retailer rule apply to one request, their permission tuples must be
  reconciled (pricing.ReconcilePermissions).

ORDERING:
  The walker tries fare-retailer calculation data FIRST for each rule
  item; legacy markup data is consulted only when the retailer pass
  produced zero successes in the scope.

SEE ALSO:
  - negotiated/: the legacy rule-source sibling
  - pricing/permissions.go: the reconciliation case table
*/
package retailer

import (
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// MatchRules filters retailer rules down to those that may price a rule
// item for the given applicability. Input must be sorted by sequence
// number; order is preserved.
func MatchRules(list []rules.FareRetailerRule, itemNo int, appl rules.RetailerApplicability) []rules.FareRetailerRule {
	var out []rules.FareRetailerRule
	for _, r := range list {
		if !r.Active {
			continue
		}
		if appl != 0 && r.Applicability != appl {
			continue
		}
		if !r.AppliesTo(itemNo) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Reconcile computes the effective permission tuple for one retailer
// rule admitted by a security record. The source agency is the retailer
// rule's source pseudo-city; it is "same" when it is the requester's own
// agency (or its home).
func Reconcile(sec *rules.SecurityRecord, r rules.FareRetailerRule, agent pricing.Agent, ticketingTxn bool) (pricing.PermissionTuple, error) {
	sameAgency := r.SourcePCC == agent.PCC || r.SourcePCC == agent.HomePCC

	source := r.Resulting.Permissions()
	owner := source
	if sec != nil {
		source = sec.Permissions()
	}
	return pricing.ReconcilePermissions(source, owner, sameAgency, ticketingTxn)
}

// LoadCalcRecords normalizes a retailer rule's calculation details.
func LoadCalcRecords(r rules.FareRetailerRule) []pricing.CalcRecord {
	out := make([]pricing.CalcRecord, 0, len(r.CalcDetails))
	for _, d := range r.CalcDetails {
		rec := pricing.CalcRecord{
			Expr: pricing.PriceExpression{
				Indicator:   d.Indicator,
				Percent:     d.Percent,
				Amount1:     d.Amount1,
				Amount2:     d.Amount2,
				NoDecimals1: d.NoDec1,
				NoDecimals2: d.NoDec2,
			},
			Level: d.Level,
			Provenance: pricing.Provenance{
				CalcSeqNo:    d.SeqNo,
				SourcePCC:    r.SourcePCC,
				CreatorPCC:   r.OwnerPCC,
				ViewNet:      d.ViewNetInd == 'B',
				FromRetailer: true,
			},
		}
		if d.Min != nil || d.Max != nil {
			rng := pricing.AmountRange{}
			if d.Min != nil {
				rng.Min = *d.Min
			}
			if d.Max != nil {
				rng.Max = *d.Max
			}
			rec.Range = &rng
		}
		out = append(out, rec)
	}
	return out
}
