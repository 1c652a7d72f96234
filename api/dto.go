/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes for the REST API. Amounts cross the wire as float64 and
  are converted to decimal money at this edge only - everything past
  the handler works in decimals.

SEE ALSO:
  - handlers.go: Handler implementations using these DTOs
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/fare-engine/pricing"
)

// =============================================================================
// PRICING REQUEST
// =============================================================================

// PriceRequest prices the base fares of one market under an agent's
// transaction context.
type PriceRequest struct {
	Market  FareMarketDTO `json:"market"`
	Context TxnContextDTO `json:"context"`
}

type FareMarketDTO struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Carrier     string        `json:"carrier"`
	Fares       []BaseFareDTO `json:"fares"`
}

type BaseFareDTO struct {
	FareClass       string  `json:"fare_class"`
	Vendor          string  `json:"vendor"`
	Carrier         string  `json:"carrier"`
	Tariff          int     `json:"tariff"`
	RuleNumber      string  `json:"rule_number"`
	PaxType         string  `json:"pax_type"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	NUCAmount       float64 `json:"nuc_amount"`
	RoundTrip       bool    `json:"round_trip,omitempty"`
	International   bool    `json:"international,omitempty"`
	DisplayCategory string  `json:"display_category,omitempty"` // "L", "T", "C"
}

type TxnContextDTO struct {
	Date             string `json:"date"` // YYYY-MM-DD, defaults to today
	AgentPCC         string `json:"agent_pcc"`
	AgentHomePCC     string `json:"agent_home_pcc,omitempty"`
	AgentNation      string `json:"agent_nation,omitempty"`
	FareDisplay      bool   `json:"fare_display,omitempty"`
	RoundTheWorld    bool   `json:"round_the_world,omitempty"`
	Ticketing        bool   `json:"ticketing,omitempty"`
	BypassNegotiated bool   `json:"bypass_negotiated,omitempty"`
}

// =============================================================================
// PRICING RESPONSE
// =============================================================================

type PriceResponse struct {
	Derived     []DerivedFareDTO `json:"derived"`
	Failed      []FareFailureDTO `json:"failed"`
	Diagnostics []string         `json:"diagnostics,omitempty"`
}

type DerivedFareDTO struct {
	ID              string   `json:"id"`
	FareClass       string   `json:"fare_class"`
	Kind            string   `json:"kind"` // selling, net, wholesale, redistributed
	PaxType         string   `json:"pax_type"`
	Amount          float64  `json:"amount"`
	Currency        string   `json:"currency"`
	NUCAmount       float64  `json:"nuc_amount"`
	OriginalNUC     *float64 `json:"original_nuc,omitempty"`
	SoftPassed      bool     `json:"soft_passed,omitempty"`
	Cat25Responsive bool     `json:"cat25_responsive,omitempty"`
	SourcePCC       string   `json:"source_pcc,omitempty"`
	CreatorPCC      string   `json:"creator_pcc,omitempty"`
	FromRetailer    bool     `json:"from_retailer,omitempty"`
}

type FareFailureDTO struct {
	FareClass string `json:"fare_class"`
	Reason    string `json:"reason"`
}

// =============================================================================
// RULE LOADING
// =============================================================================

// RawConfig is a rule definition passed through to the store as JSON.
type RawConfig map[string]any

// SecurityListRequest loads an ordered security record list.
type SecurityListRequest struct {
	Vendor  string      `json:"vendor"`
	ItemNo  int         `json:"item_no"`
	Records []RawConfig `json:"records"`
}

// CalculationRequest loads a legacy markup-calculate table.
type CalculationRequest struct {
	Vendor string      `json:"vendor"`
	ItemNo int         `json:"item_no"`
	Rows   []RawConfig `json:"rows"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// COMMON
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func moneyFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func derivedDTO(df pricing.DerivedFare) DerivedFareDTO {
	dto := DerivedFareDTO{
		ID:              df.ID,
		FareClass:       df.Base.FareClass,
		Kind:            string(df.Kind),
		PaxType:         string(df.Base.PaxType),
		Amount:          moneyFloat(df.Amount.Amount),
		Currency:        string(df.Amount.Currency),
		NUCAmount:       moneyFloat(df.NUCAmount),
		SoftPassed:      df.SoftPassed,
		Cat25Responsive: df.Cat25Responsive,
		SourcePCC:       string(df.Provenance.SourcePCC),
		CreatorPCC:      string(df.Provenance.CreatorPCC),
		FromRetailer:    df.Provenance.FromRetailer,
	}
	if df.OriginalNUC != nil {
		v := moneyFloat(*df.OriginalNUC)
		dto.OriginalNUC = &v
	}
	return dto
}
