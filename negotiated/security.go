/*
Package negotiated provides the legacy Cat 35 rule-source domain:
security/authorization matching, the pre-calculation validation gate,
and normalization of legacy markup calculation rows.

PURPOSE:
  Before a rule item's calculation data may be considered, the requesting
  agency must pass the rule's ordered security record list, and the item
  itself must pass a battery of ticketing-data and consistency checks.
  This package owns both gates plus the translation of legacy markup rows
  into the normalized pricing.CalcRecord shape.

SECURITY SEMANTICS (this file):
  Records are walked in sequence order. Who (locale/agency) and where
  (geography) must both match; what (sell-vs-ticket intent) is evaluated
  only for positive records.
  - First who/where-matching record positive: authoritative match. Stop
    scanning for the primary decision, remember the sequence number.
  - First who/where-matching record negative: hard deny. The whole rule
    fails immediately; no redistribution is attempted.
  - Negative match that is NOT the first match: constrains only.
    Redistribution data in lower-numbered records with an explicit
    redistribute flag may still be tried.

SEE ALSO:
  - validation.go: the rule-item validation gate
  - markup.go: legacy calculation-row normalization
*/
package negotiated

import (
	"math"

	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// MatchStatus is the outcome of walking one security record list.
type MatchStatus int

const (
	// MatchNone: no positive record matched; the item yields no primary
	// calculation, though redistribution may still apply.
	MatchNone MatchStatus = iota
	// MatchFound: a positive record authorizes the agency.
	MatchFound
	// MatchDeniedFirst: the first who/where match was a hard negative.
	MatchDeniedFirst
)

// MatchResult carries the authoritative record, the sequence boundary
// for redistribution filtering, and the ticketing authorization of the
// matched record.
type MatchResult struct {
	Status     MatchStatus
	Record     *rules.SecurityRecord
	MatchedSeq int

	// BoundarySeq is the sequence number of the negative/no-match
	// boundary: only lower-numbered records are eligible to contribute
	// redistribution data.
	BoundarySeq int

	// TicketingAuthorized reports whether the matched positive record
	// authorizes ticketing (vs selling only).
	TicketingAuthorized bool
}

// MatchSecurity walks an ordered security record list for one agent and
// intent. The list must already be sorted by sequence number.
func MatchSecurity(list []rules.SecurityRecord, agent pricing.Agent, intent pricing.Intent) MatchResult {
	res := MatchResult{Status: MatchNone, BoundarySeq: math.MaxInt}

	matchedBefore := false
	for i := range list {
		rec := &list[i]
		if !whoWhereMatch(rec, agent) {
			continue
		}

		if rec.Applicability == rules.ApplNotAllowed {
			if !matchedBefore {
				res.Status = MatchDeniedFirst
				res.Record = rec
				res.MatchedSeq = rec.SeqNo
				res.BoundarySeq = rec.SeqNo
				return res
			}
			// Non-first negative: constrains redistribution only.
			res.BoundarySeq = rec.SeqNo
			return res
		}

		matchedBefore = true

		// "What" is evaluated only for positive records: a record that
		// does not cover the caller's intent is skipped, not a denial.
		if !whatMatch(rec, intent) {
			continue
		}

		res.Status = MatchFound
		res.Record = rec
		res.MatchedSeq = rec.SeqNo
		res.TicketingAuthorized = rec.TicketInd
		return res
	}

	return res
}

// EligibleRedistributions returns the records below the boundary that
// explicitly allow redistribution, excluding the matched record itself.
func EligibleRedistributions(list []rules.SecurityRecord, res MatchResult) []rules.SecurityRecord {
	var out []rules.SecurityRecord
	for _, rec := range list {
		if rec.SeqNo >= res.BoundarySeq {
			continue
		}
		if res.Record != nil && rec.SeqNo == res.MatchedSeq {
			continue
		}
		if !rec.RedistributeInd {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// whoWhereMatch checks the locale/agency side and the geographic side.
func whoWhereMatch(rec *rules.SecurityRecord, agent pricing.Agent) bool {
	switch rec.LocaleType {
	case rules.LocalePCC:
		if rec.AgencyPCC != agent.PCC {
			return false
		}
	case rules.LocaleHome:
		if rec.AgencyPCC != agent.HomePCC {
			return false
		}
	case rules.LocaleNation:
		if rec.LocaleCode != agent.Nation {
			return false
		}
	}

	if rec.Geo.Type == 'N' && rec.Geo.Code != agent.Nation {
		return false
	}
	return true
}

// whatMatch checks the sell/ticket intent against a positive record.
func whatMatch(rec *rules.SecurityRecord, intent pricing.Intent) bool {
	if intent == pricing.IntentTicket {
		return rec.TicketInd
	}
	return rec.SellInd
}
