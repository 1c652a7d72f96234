package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

func TestParseRule(t *testing.T) {
	f := NewRuleFactory()

	r, err := f.ParseRule(`{
		"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
		"sets": [{"items": [
			{"item_no": 1, "relation": "IF", "pax_type": "NEG"},
			{"item_no": 2, "relation": "THEN", "display_category": "T",
			 "security_item_no": 100, "calc_item_no": 200,
			 "effective_from": "2026-01-01", "discontinue_at": "2026-12-31",
			 "ticketing": {"method": "2", "commission_percent": 5.0, "ticket_appl": "A"}}
		]}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, pricing.VendorCode("ATP"), r.Key.Vendor)
	assert.Equal(t, "5000", r.Key.RuleNumber)
	require.Len(t, r.Sets, 1)
	require.Len(t, r.Sets[0].Items, 2)

	qual := r.Sets[0].Items[0]
	assert.True(t, qual.Relation.IsQualifier())
	assert.Equal(t, pricing.PaxNeg, qual.PaxType)

	item := r.Sets[0].Items[1]
	assert.Equal(t, pricing.DisplayNetTicket, item.DisplayCategory)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), item.EffectiveFrom)
	require.NotNil(t, item.Ticketing)
	assert.Equal(t, rules.Method2, item.Ticketing.Method)
	require.NotNil(t, item.Ticketing.CommissionPercent)
	assert.Equal(t, byte('A'), item.Ticketing.TicketAppl)
}

func TestParseRule_Defaults(t *testing.T) {
	f := NewRuleFactory()

	r, err := f.ParseRule(`{
		"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
		"sets": [{"items": [{"item_no": 1, "relation": "THEN"}]}]
	}`)
	require.NoError(t, err)

	item := r.Sets[0].Items[0]
	assert.Equal(t, rules.IndicatorBlank, item.Directionality)
	assert.Equal(t, rules.IndicatorBlank, item.InOutInd)
	assert.True(t, item.EffectiveFrom.IsZero())
	assert.Nil(t, item.Ticketing)
	assert.Empty(t, item.PaxType)
}

func TestParseRule_BadDate(t *testing.T) {
	f := NewRuleFactory()

	_, err := f.ParseRule(`{
		"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
		"sets": [{"items": [{"item_no": 1, "effective_from": "01/02/2026"}]}]
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestParseSecurityList(t *testing.T) {
	f := NewRuleFactory()

	out, err := f.ParseSecurityList(`[
		{"seq_no": 1, "applicability": "Y", "locale_type": "H", "agency_pcc": "HDQ1",
		 "geo_type": "N", "geo_code": "FR", "sell": true, "redistribute": true},
		{"seq_no": 2, "locale_type": "N", "locale_code": "GB"}
	]`)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, rules.LocaleHome, out[0].LocaleType)
	assert.Equal(t, byte('N'), out[0].Geo.Type)
	assert.Equal(t, "FR", out[0].Geo.Code)
	assert.True(t, out[0].RedistributeInd)
	assert.False(t, out[0].TicketInd)

	assert.Equal(t, rules.LocaleNation, out[1].LocaleType)
	assert.Equal(t, "GB", out[1].LocaleCode)
}

func TestParseCalculation(t *testing.T) {
	f := NewRuleFactory()

	out, err := f.ParseCalculation(`[
		{"seq_no": 1, "level": "N", "indicator": "A", "percent": 100,
		 "amount1": {"amount": 20, "currency": "GBP"},
		 "min": {"amount": 10, "currency": "GBP"},
		 "max": {"amount": 500, "currency": "GBP"},
		 "creator_pcc": "A1B2", "wholesale": true}
	]`)
	require.NoError(t, err)
	require.Len(t, out, 1)

	row := out[0]
	assert.Equal(t, pricing.LevelNet, row.Level)
	assert.Equal(t, pricing.CalcPercentPlus, row.Indicator)
	assert.True(t, row.Amount1.Amount.Equal(pricing.MustParseDecimal("20")))
	assert.Equal(t, pricing.Currency("GBP"), row.Amount1.Currency)
	require.NotNil(t, row.Min)
	require.NotNil(t, row.Max)
	assert.Equal(t, pricing.PseudoCityCode("A1B2"), row.CreatorPCC)
	assert.True(t, row.Wholesale)
}

func TestParseMarkupControl(t *testing.T) {
	f := NewRuleFactory()

	mc, err := f.ParseMarkupControl(`{
		"owner_pcc": "A1B2", "vendor": "ATP", "carrier": "BA",
		"tariff": 1, "rule_number": "5000", "seq_no": 3,
		"status": "P", "view_net": "B",
		"calcs": [{"seq_no": 1, "indicator": "P", "percent": 108}]
	}`)
	require.NoError(t, err)

	assert.Equal(t, pricing.PseudoCityCode("A1B2"), mc.OwnerPCC)
	assert.Equal(t, rules.MarkupPending, mc.Status)
	assert.Equal(t, byte('B'), mc.ViewNetInd)
	assert.Len(t, mc.Calcs, 1)
}

func TestParseFareRetailerRule(t *testing.T) {
	f := NewRuleFactory()

	r, err := f.ParseFareRetailerRule(`{
		"rule_id": 9001, "source_pcc": "W0H3", "owner_pcc": "A1B2", "seq_no": 2,
		"applicability": "R", "active": true,
		"include_items": [1, 2], "exclude_items": [3],
		"calcs": [{"seq_no": 1, "level": "N", "indicator": "M", "percent": 100,
		           "amount1": {"amount": 15, "currency": "GBP"}, "view_net": "B"}],
		"resulting": {"update": true, "sell": true, "account_code": "CORP01"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, int64(9001), r.RuleID)
	assert.Equal(t, rules.RetailerRedistrib, r.Applicability)
	assert.Equal(t, []int{1, 2}, r.IncludeItemNos)
	assert.Equal(t, []int{3}, r.ExcludeItemNos)
	require.Len(t, r.CalcDetails, 1)
	assert.Equal(t, pricing.CalcPercentMinus, r.CalcDetails[0].Indicator)
	assert.Equal(t, byte('B'), r.CalcDetails[0].ViewNetInd)
	assert.Equal(t, "CORP01", r.Resulting.AccountCode)
	assert.False(t, r.Resulting.RedistributeInd)
}
