/*
markup.go - Legacy markup calculation-row normalization

PURPOSE:
  Translates legacy markup-calculate rows (the Table 979/980 family) into
  normalized pricing.CalcRecord values, tagging provenance: the creator
  pseudo-city, the source pseudo-city whose security record admitted the
  data, the view-net indicator and whether the record arrived through
  redistribution.

LIFECYCLE:
  Records are constructed fresh per rule-item evaluated and discarded
  after use; nothing here is cached across items.
*/
package negotiated

import (
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// LoadCalcRecords normalizes legacy calculation rows admitted by a
// security record.
func LoadCalcRecords(rows []rules.MarkupCalculate, vendor pricing.VendorCode, itemNo int, sourcePCC pricing.PseudoCityCode) []pricing.CalcRecord {
	out := make([]pricing.CalcRecord, 0, len(rows))
	for _, row := range rows {
		rec := pricing.CalcRecord{
			Expr: pricing.PriceExpression{
				Indicator:   row.Indicator,
				Percent:     row.Percent,
				Amount1:     row.Amount1,
				Amount2:     row.Amount2,
				NoDecimals1: row.NoDec1,
				NoDecimals2: row.NoDec2,
			},
			Level:     row.Level,
			Wholesale: row.Wholesale,
			Provenance: pricing.Provenance{
				Vendor:       vendor,
				RuleItemNo:   itemNo,
				CalcSeqNo:    row.SeqNo,
				SourcePCC:    sourcePCC,
				CreatorPCC:   row.CreatorPCC,
				FromRetailer: false,
			},
		}
		if row.Min != nil || row.Max != nil {
			r := pricing.AmountRange{}
			if row.Min != nil {
				r.Min = *row.Min
			}
			if row.Max != nil {
				r.Max = *row.Max
			}
			rec.Range = &r
		}
		out = append(out, rec)
	}
	return out
}

// LoadMarkupControls normalizes the approved calculation rows of an
// agency's markup control records. Used on the redistribution path, so
// every record is tagged accordingly.
func LoadMarkupControls(controls []rules.MarkupControl, itemNo int) []pricing.CalcRecord {
	var out []pricing.CalcRecord
	for _, mc := range controls {
		if mc.Status != rules.MarkupApproved {
			continue
		}
		recs := LoadCalcRecords(mc.Calcs, mc.Vendor, itemNo, mc.OwnerPCC)
		for i := range recs {
			recs[i].Provenance.ViewNet = mc.ViewNetInd == 'B'
		}
		out = append(out, recs...)
	}
	return out
}
