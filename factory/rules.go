/*
Package factory provides JSON to Go rule-record conversion.

PURPOSE:
  Converts JSON rule definitions into rules package records. This enables
  rule configuration without code changes - rule content can be seeded
  from fixture files, admin tooling, or database JSON columns, and the
  sqlite store parses its config columns through this package.

JSON SCHEMA (rule):
  {
    "vendor": "ATP",
    "carrier": "BA",
    "tariff": 1,
    "rule_number": "5000",
    "sets": [
      {
        "items": [
          {"item_no": 1, "relation": "IF", "pax_type": "NEG"},
          {"item_no": 2, "relation": "THEN", "security_item_no": 100,
           "calc_item_no": 200, "display_category": "C"}
        ]
      }
    ]
  }

KEY FEATURES:
  - Validates JSON structure and date formats
  - Sets sensible defaults (blank indicators, open date windows)
  - Amounts parse from {amount, currency} pairs into decimal money

SEE ALSO:
  - rules/types.go: the record types produced here
  - store/sqlite: parses its JSON config columns with this package
  - api/scenarios.go: seeds demo rule sets through this package
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/rules"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type MoneyJSON struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type RuleJSON struct {
	Vendor     string        `json:"vendor"`
	Carrier    string        `json:"carrier"`
	Tariff     int           `json:"tariff"`
	RuleNumber string        `json:"rule_number"`
	Sets       []RuleSetJSON `json:"sets"`
}

type RuleSetJSON struct {
	Items []RuleItemJSON `json:"items"`
}

type RuleItemJSON struct {
	ItemNo          int            `json:"item_no"`
	Relation        string         `json:"relation,omitempty"`
	PaxType         string         `json:"pax_type,omitempty"`
	Directionality  string         `json:"directionality,omitempty"`
	InOut           string         `json:"in_out,omitempty"`
	UnavailTag      string         `json:"unavail_tag,omitempty"`
	Carrier         string         `json:"carrier,omitempty"`
	EffectiveFrom   string         `json:"effective_from,omitempty"`
	DiscontinueAt   string         `json:"discontinue_at,omitempty"`
	DisplayCategory string         `json:"display_category,omitempty"`
	SecurityItemNo  int            `json:"security_item_no,omitempty"`
	CalcItemNo      int            `json:"calc_item_no,omitempty"`
	Ticketing       *TicketingJSON `json:"ticketing,omitempty"`
}

type TicketingJSON struct {
	Method            string        `json:"method,omitempty"`
	CommissionAmount  *MoneyJSON    `json:"commission_amount,omitempty"`
	CommissionPercent *float64      `json:"commission_percent,omitempty"`
	Segments          []SegmentJSON `json:"segments,omitempty"`
	TicketAppl        string        `json:"ticket_appl,omitempty"`
}

type SegmentJSON struct {
	Carrier   string `json:"carrier"`
	FareBasis string `json:"fare_basis,omitempty"`
}

type SecurityRecordJSON struct {
	SeqNo         int    `json:"seq_no"`
	Applicability string `json:"applicability,omitempty"` // "Y", "N", ""
	LocaleType    string `json:"locale_type,omitempty"`   // "T", "H", "N"
	LocaleCode    string `json:"locale_code,omitempty"`
	AgencyPCC     string `json:"agency_pcc,omitempty"`
	GeoType       string `json:"geo_type,omitempty"`
	GeoCode       string `json:"geo_code,omitempty"`
	Sell          bool   `json:"sell"`
	Ticket        bool   `json:"ticket"`
	Update        bool   `json:"update"`
	Redistribute  bool   `json:"redistribute"`
	CalcItemNo    int    `json:"calc_item_no,omitempty"`
}

type CalcRowJSON struct {
	SeqNo     int        `json:"seq_no"`
	Level     string     `json:"level,omitempty"`     // "S" selling, "N" net
	Indicator string     `json:"indicator"`           // "P", "S", "A", "M"
	Percent   float64    `json:"percent,omitempty"`
	Amount1   *MoneyJSON `json:"amount1,omitempty"`
	NoDec1    int32      `json:"no_dec1,omitempty"`
	Amount2   *MoneyJSON `json:"amount2,omitempty"`
	NoDec2    int32      `json:"no_dec2,omitempty"`
	Min       *MoneyJSON `json:"min,omitempty"`
	Max       *MoneyJSON `json:"max,omitempty"`
	Creator   string     `json:"creator_pcc,omitempty"`
	Wholesale bool       `json:"wholesale,omitempty"`
	ViewNet   string     `json:"view_net,omitempty"`
}

type MarkupControlJSON struct {
	OwnerPCC   string        `json:"owner_pcc"`
	Vendor     string        `json:"vendor"`
	Carrier    string        `json:"carrier"`
	Tariff     int           `json:"tariff"`
	RuleNumber string        `json:"rule_number"`
	SeqNo      int           `json:"seq_no"`
	Status     string        `json:"status,omitempty"` // "A", "P", "D"
	ViewNet    string        `json:"view_net,omitempty"`
	Calcs      []CalcRowJSON `json:"calcs"`
}

type RetailerRuleJSON struct {
	RuleID        int64              `json:"rule_id"`
	SourcePCC     string             `json:"source_pcc"`
	OwnerPCC      string             `json:"owner_pcc"`
	SeqNo         int                `json:"seq_no"`
	Applicability string             `json:"applicability,omitempty"` // "N", "S", "R"
	Active        bool               `json:"active"`
	EffectiveFrom string             `json:"effective_from,omitempty"`
	DiscontinueAt string             `json:"discontinue_at,omitempty"`
	IncludeItems  []int              `json:"include_items,omitempty"`
	ExcludeItems  []int              `json:"exclude_items,omitempty"`
	Calcs         []CalcRowJSON      `json:"calcs"`
	Resulting     *ResultingAttrJSON `json:"resulting,omitempty"`
}

type ResultingAttrJSON struct {
	Update           bool   `json:"update"`
	Redistribute     bool   `json:"redistribute"`
	Sell             bool   `json:"sell"`
	Ticket           bool   `json:"ticket"`
	AccountCode      string `json:"account_code,omitempty"`
	TicketDesignator string `json:"ticket_designator,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts JSON rule definitions to record structs.
type RuleFactory struct{}

func NewRuleFactory() *RuleFactory { return &RuleFactory{} }

// ParseRule parses a JSON string into a Rule.
func (f *RuleFactory) ParseRule(jsonStr string) (*rules.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.RuleFromJSON(rj)
}

// RuleFromJSON converts a RuleJSON into a Rule.
func (f *RuleFactory) RuleFromJSON(rj RuleJSON) (*rules.Rule, error) {
	r := &rules.Rule{
		Key: rules.RuleKey{
			Vendor:     pricing.VendorCode(rj.Vendor),
			Carrier:    pricing.CarrierCode(rj.Carrier),
			Tariff:     rj.Tariff,
			RuleNumber: rj.RuleNumber,
		},
	}
	for _, sj := range rj.Sets {
		var set rules.RuleSet
		for _, ij := range sj.Items {
			item, err := parseRuleItem(ij)
			if err != nil {
				return nil, err
			}
			set.Items = append(set.Items, item)
		}
		r.Sets = append(r.Sets, set)
	}
	return r, nil
}

// ParseSecurityList parses a JSON array of security records.
func (f *RuleFactory) ParseSecurityList(jsonStr string) ([]rules.SecurityRecord, error) {
	var sjs []SecurityRecordJSON
	if err := json.Unmarshal([]byte(jsonStr), &sjs); err != nil {
		return nil, fmt.Errorf("failed to parse security JSON: %w", err)
	}
	out := make([]rules.SecurityRecord, 0, len(sjs))
	for _, sj := range sjs {
		out = append(out, rules.SecurityRecord{
			SeqNo:           sj.SeqNo,
			Applicability:   rules.Applicability(sj.Applicability),
			LocaleType:      localeType(sj.LocaleType),
			LocaleCode:      sj.LocaleCode,
			AgencyPCC:       pricing.PseudoCityCode(sj.AgencyPCC),
			Geo:             rules.GeoRestriction{Type: firstByte(sj.GeoType), Code: sj.GeoCode},
			SellInd:         sj.Sell,
			TicketInd:       sj.Ticket,
			UpdateInd:       sj.Update,
			RedistributeInd: sj.Redistribute,
			CalcItemNo:      sj.CalcItemNo,
		})
	}
	return out, nil
}

// ParseCalculation parses a JSON array of legacy calculation rows.
func (f *RuleFactory) ParseCalculation(jsonStr string) ([]rules.MarkupCalculate, error) {
	var cjs []CalcRowJSON
	if err := json.Unmarshal([]byte(jsonStr), &cjs); err != nil {
		return nil, fmt.Errorf("failed to parse calculation JSON: %w", err)
	}
	out := make([]rules.MarkupCalculate, 0, len(cjs))
	for _, cj := range cjs {
		out = append(out, parseCalcRow(cj))
	}
	return out, nil
}

// ParseMarkupControl parses one markup control record.
func (f *RuleFactory) ParseMarkupControl(jsonStr string) (*rules.MarkupControl, error) {
	var mj MarkupControlJSON
	if err := json.Unmarshal([]byte(jsonStr), &mj); err != nil {
		return nil, fmt.Errorf("failed to parse markup control JSON: %w", err)
	}
	mc := &rules.MarkupControl{
		OwnerPCC:   pricing.PseudoCityCode(mj.OwnerPCC),
		Vendor:     pricing.VendorCode(mj.Vendor),
		Carrier:    pricing.CarrierCode(mj.Carrier),
		Tariff:     mj.Tariff,
		RuleNumber: mj.RuleNumber,
		SeqNo:      mj.SeqNo,
		Status:     markupStatus(mj.Status),
		ViewNetInd: firstByte(mj.ViewNet),
	}
	for _, cj := range mj.Calcs {
		mc.Calcs = append(mc.Calcs, parseCalcRow(cj))
	}
	return mc, nil
}

// ParseFareRetailerRule parses one fare-retailer rule.
func (f *RuleFactory) ParseFareRetailerRule(jsonStr string) (*rules.FareRetailerRule, error) {
	var rj RetailerRuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse fare retailer JSON: %w", err)
	}

	effective, err := parseDate(rj.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	discontinue, err := parseDate(rj.DiscontinueAt)
	if err != nil {
		return nil, err
	}

	r := &rules.FareRetailerRule{
		RuleID:         rj.RuleID,
		SourcePCC:      pricing.PseudoCityCode(rj.SourcePCC),
		OwnerPCC:       pricing.PseudoCityCode(rj.OwnerPCC),
		SeqNo:          rj.SeqNo,
		Applicability:  rules.RetailerApplicability(firstByte(rj.Applicability)),
		Active:         rj.Active,
		EffectiveFrom:  effective,
		DiscontinueAt:  discontinue,
		IncludeItemNos: rj.IncludeItems,
		ExcludeItemNos: rj.ExcludeItems,
	}
	for _, cj := range rj.Calcs {
		row := parseCalcRow(cj)
		r.CalcDetails = append(r.CalcDetails, rules.RetailerCalcDetail{
			SeqNo:      row.SeqNo,
			Level:      row.Level,
			Indicator:  row.Indicator,
			Percent:    row.Percent,
			Amount1:    row.Amount1,
			NoDec1:     row.NoDec1,
			Amount2:    row.Amount2,
			NoDec2:     row.NoDec2,
			Min:        row.Min,
			Max:        row.Max,
			ViewNetInd: firstByte(cj.ViewNet),
		})
	}
	if rj.Resulting != nil {
		r.Resulting = rules.ResultingFareAttr{
			UpdateInd:        rj.Resulting.Update,
			RedistributeInd:  rj.Resulting.Redistribute,
			SellInd:          rj.Resulting.Sell,
			TicketInd:        rj.Resulting.Ticket,
			AccountCode:      rj.Resulting.AccountCode,
			TicketDesignator: rj.Resulting.TicketDesignator,
		}
	}
	return r, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRuleItem(ij RuleItemJSON) (rules.RuleItem, error) {
	effective, err := parseDate(ij.EffectiveFrom)
	if err != nil {
		return rules.RuleItem{}, err
	}
	discontinue, err := parseDate(ij.DiscontinueAt)
	if err != nil {
		return rules.RuleItem{}, err
	}

	item := rules.RuleItem{
		ItemNo:             ij.ItemNo,
		Relation:           rules.Relational(ij.Relation),
		PaxType:            pricing.PaxTypeCode(ij.PaxType),
		Directionality:     firstByte(ij.Directionality),
		InOutInd:           firstByte(ij.InOut),
		UnavailTag:         firstByte(ij.UnavailTag),
		RestrictionCarrier: pricing.CarrierCode(ij.Carrier),
		EffectiveFrom:      effective,
		DiscontinueAt:      discontinue,
		DisplayCategory:    pricing.DisplayCategory(firstByte(ij.DisplayCategory)),
		SecurityItemNo:     ij.SecurityItemNo,
		CalcItemNo:         ij.CalcItemNo,
	}
	if ij.Ticketing != nil {
		item.Ticketing = parseTicketing(*ij.Ticketing)
	}
	return item, nil
}

func parseTicketing(tj TicketingJSON) *rules.TicketingData {
	t := &rules.TicketingData{
		Method:     firstByte(tj.Method),
		TicketAppl: firstByte(tj.TicketAppl),
	}
	if tj.CommissionAmount != nil {
		m := parseMoney(*tj.CommissionAmount)
		t.CommissionAmount = &m
	}
	if tj.CommissionPercent != nil {
		p := decimal.NewFromFloat(*tj.CommissionPercent)
		t.CommissionPercent = &p
	}
	for _, sj := range tj.Segments {
		t.Segments = append(t.Segments, rules.SegmentData{
			Carrier:   pricing.CarrierCode(sj.Carrier),
			FareBasis: sj.FareBasis,
		})
	}
	return t
}

func parseCalcRow(cj CalcRowJSON) rules.MarkupCalculate {
	row := rules.MarkupCalculate{
		SeqNo:      cj.SeqNo,
		Level:      pricing.NetSellIndicator(firstByte(cj.Level)),
		Indicator:  pricing.CalcIndicator(firstByte(cj.Indicator)),
		Percent:    decimal.NewFromFloat(cj.Percent),
		NoDec1:     cj.NoDec1,
		NoDec2:     cj.NoDec2,
		CreatorPCC: pricing.PseudoCityCode(cj.Creator),
		Wholesale:  cj.Wholesale,
	}
	if cj.Amount1 != nil {
		row.Amount1 = parseMoney(*cj.Amount1)
	}
	if cj.Amount2 != nil {
		m := parseMoney(*cj.Amount2)
		row.Amount2 = &m
	}
	if cj.Min != nil {
		m := parseMoney(*cj.Min)
		row.Min = &m
	}
	if cj.Max != nil {
		m := parseMoney(*cj.Max)
		row.Max = &m
	}
	return row
}

func parseMoney(mj MoneyJSON) pricing.Money {
	return pricing.NewMoney(mj.Amount, pricing.Currency(mj.Currency))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func localeType(s string) rules.LocaleType {
	switch s {
	case "T":
		return rules.LocalePCC
	case "H":
		return rules.LocaleHome
	case "N":
		return rules.LocaleNation
	default:
		return rules.LocaleAny
	}
}

func markupStatus(s string) rules.MarkupStatus {
	switch s {
	case "P":
		return rules.MarkupPending
	case "D":
		return rules.MarkupDeclined
	default:
		return rules.MarkupApproved
	}
}

func firstByte(s string) byte {
	if s == "" {
		return rules.IndicatorBlank
	}
	return s[0]
}
