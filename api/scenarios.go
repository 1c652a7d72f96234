/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the store with coherent rule fixture sets so the engine can be
  exercised end to end without hand-loading every record. Each scenario
  is a self-contained world: rules, security lists, calculation tables
  and (where relevant) markup controls or retailer rules.

SCENARIOS:
  basic-markup:       One rule, one security list authorizing PCC W0H3,
                      a 10% selling markup with a net level underneath.
  retailer-override:  Same base world plus a fare-retailer rule for
                      W0H3 that prices a flat net reduction first.
  redistribution:     Security list denying W0H3 mid-list, with earlier
                      redistribute-authorized agencies owning markup
                      controls that still produce candidates.

All fixtures are loaded as raw JSON through the store's Save* methods,
the same path admin tooling uses.

SEE ALSO:
  - handlers.go: Scenario endpoints
  - factory/rules.go: The JSON schema these fixtures follow
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/fare-engine/pricing"
)

// =============================================================================
// SCENARIO REGISTRY
// =============================================================================

type scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ID:          "basic-markup",
		Name:        "Basic negotiated markup",
		Description: "One carrier rule with a security list authorizing agency W0H3 and a 10% selling markup over a net level.",
		Load:        loadBasicMarkup,
	},
	{
		ID:          "retailer-override",
		Name:        "Fare retailer override",
		Description: "Basic world plus an active fare-retailer rule for W0H3 pricing a flat reduction; retailer pricing wins and the legacy markup is skipped.",
		Load:        loadRetailerOverride,
	},
	{
		ID:          "redistribution",
		Name:        "Redistribution past a denial",
		Description: "W0H3 is denied mid-list, but earlier redistribute-authorized agencies own markup controls that still price.",
		Load:        loadRedistribution,
	},
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the most recently loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// LoadScenario resets the store and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			found = &scenarios[i]
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	if err := found.Load(ctx, h); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = found.ID
	writeJSON(w, http.StatusOK, MessageResponse{Message: "loaded " + found.ID})
}

// ResetDatabase clears all rule data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, MessageResponse{Message: "store reset"})
}

// =============================================================================
// FIXTURES
// =============================================================================

// Shared fixture world: vendor ATP, carrier BA, tariff 1, rule 5000,
// agent PCC W0H3 pricing a GBP NEG fare.

const fixtureRule = `{
	"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
	"sets": [
		{
			"items": [
				{"item_no": 1, "relation": "THEN", "pax_type": "NEG",
				 "display_category": "C",
				 "security_item_no": 100, "calc_item_no": 200,
				 "ticketing": {"method": "1"}}
			]
		}
	]
}`

const fixtureSecurityOpen = `[
	{"seq_no": 1, "applicability": "Y", "locale_type": "T", "locale_code": "W0H3",
	 "agency_pcc": "W0H3", "sell": true, "ticket": true, "update": true, "redistribute": true}
]`

const fixtureCalc = `[
	{"seq_no": 1, "level": "S", "indicator": "P", "percent": 110},
	{"seq_no": 2, "level": "N", "indicator": "P", "percent": 90}
]`

func loadBasicMarkup(ctx context.Context, h *Handler) error {
	if err := h.Store.SaveRule(ctx, fixtureRule); err != nil {
		return err
	}
	if err := h.Store.SaveSecurityList(ctx, pricing.VendorCode("ATP"), 100, fixtureSecurityOpen); err != nil {
		return err
	}
	return h.Store.SaveCalculation(ctx, pricing.VendorCode("ATP"), 200, fixtureCalc)
}

const fixtureRetailerRule = `{
	"rule_id": 9001, "source_pcc": "W0H3", "owner_pcc": "W0H3", "seq_no": 1,
	"applicability": "S", "active": true,
	"calcs": [
		{"seq_no": 1, "level": "S", "indicator": "M", "percent": 100,
		 "amount1": {"amount": 15, "currency": "GBP"}, "no_dec1": 2}
	],
	"resulting": {"update": true, "redistribute": true, "sell": true, "ticket": true,
	 "account_code": "CORP01"}
}`

func loadRetailerOverride(ctx context.Context, h *Handler) error {
	if err := loadBasicMarkup(ctx, h); err != nil {
		return err
	}
	return h.Store.SaveFareRetailerRule(ctx, fixtureRetailerRule)
}

// W0H3 first matches the sell-less record at 15, so the negative at 20
// is a non-first match and sets the redistribution boundary instead of
// hard-denying. Sequences 5 and 10 authorize other agencies with
// redistribute, and each owns an approved markup control for the key.
const fixtureSecurityDenied = `[
	{"seq_no": 5, "applicability": "Y", "locale_type": "T", "locale_code": "A1B2",
	 "agency_pcc": "A1B2", "sell": true, "ticket": true, "redistribute": true},
	{"seq_no": 10, "applicability": "Y", "locale_type": "T", "locale_code": "C3D4",
	 "agency_pcc": "C3D4", "sell": true, "redistribute": true, "calc_item_no": 210},
	{"seq_no": 15, "applicability": "Y", "locale_type": "T", "locale_code": "W0H3",
	 "agency_pcc": "W0H3", "update": true},
	{"seq_no": 20, "applicability": "N", "locale_type": "T", "locale_code": "W0H3",
	 "agency_pcc": "W0H3"}
]`

const fixtureMarkupA1B2 = `{
	"owner_pcc": "A1B2", "vendor": "ATP", "carrier": "BA", "tariff": 1,
	"rule_number": "5000", "seq_no": 1, "status": "A", "view_net": "B",
	"calcs": [
		{"seq_no": 1, "level": "S", "indicator": "P", "percent": 108, "creator_pcc": "A1B2"},
		{"seq_no": 2, "level": "N", "indicator": "P", "percent": 92, "creator_pcc": "A1B2"}
	]
}`

const fixtureMarkupC3D4 = `{
	"owner_pcc": "C3D4", "vendor": "ATP", "carrier": "BA", "tariff": 1,
	"rule_number": "5000", "seq_no": 1, "status": "A",
	"calcs": [
		{"seq_no": 1, "level": "S", "indicator": "P", "percent": 105, "creator_pcc": "C3D4"}
	]
}`

func loadRedistribution(ctx context.Context, h *Handler) error {
	if err := h.Store.SaveRule(ctx, fixtureRule); err != nil {
		return err
	}
	if err := h.Store.SaveSecurityList(ctx, pricing.VendorCode("ATP"), 100, fixtureSecurityDenied); err != nil {
		return err
	}
	if err := h.Store.SaveCalculation(ctx, pricing.VendorCode("ATP"), 200, fixtureCalc); err != nil {
		return err
	}
	if err := h.Store.SaveMarkupControl(ctx, fixtureMarkupA1B2); err != nil {
		return err
	}
	return h.Store.SaveMarkupControl(ctx, fixtureMarkupC3D4)
}
