/*
handlers.go - HTTP API handlers for the fare derivation engine

PURPOSE:
  Exposes the derivation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Pricing:
    POST   /api/price                  Price a fare market

  Rule loading:
    POST   /api/rules                  Load a negotiated-fare rule
    POST   /api/security               Load a security record list
    POST   /api/calculations           Load a legacy calculation table
    POST   /api/markups                Load a markup control record
    POST   /api/retailer-rules         Load a fare-retailer rule

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear all rule data

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Rule persistence
  - Converter: Currency conversion rates
  A fresh engine is built per price request so each response can carry
  its own diagnostic trace.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fare-engine/engine"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Converter pricing.Converter

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and converter.
func NewHandler(store *sqlite.Store, conv pricing.Converter) *Handler {
	return &Handler{
		Store:     store,
		Converter: conv,
	}
}

// =============================================================================
// PRICING
// =============================================================================

// Price prices every base fare of the posted market.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	txn, err := txnContextFromDTO(req.Context)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction context", err)
		return
	}
	market := marketFromDTO(req.Market)

	diag := &pricing.BufferSink{}
	eng := engine.New(h.Store, h.Converter, engine.WithDiag(diag))

	res, err := eng.ProcessFareMarket(r.Context(), &market, txn)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to price fare market", err)
		return
	}

	resp := PriceResponse{
		Derived:     make([]DerivedFareDTO, 0, len(res.Derived)),
		Failed:      make([]FareFailureDTO, 0, len(res.Failed)),
		Diagnostics: diag.Lines(),
	}
	for _, df := range res.Derived {
		resp.Derived = append(resp.Derived, derivedDTO(df))
	}
	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, FareFailureDTO{
			FareClass: f.FareClass,
			Reason:    f.Reason,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func txnContextFromDTO(dto TxnContextDTO) (pricing.TxnContext, error) {
	date := time.Now().UTC()
	if dto.Date != "" {
		parsed, err := time.Parse("2006-01-02", dto.Date)
		if err != nil {
			return pricing.TxnContext{}, err
		}
		date = parsed
	}
	return pricing.TxnContext{
		Date: date,
		Agent: pricing.Agent{
			PCC:     pricing.PseudoCityCode(dto.AgentPCC),
			HomePCC: pricing.PseudoCityCode(dto.AgentHomePCC),
			Nation:  dto.AgentNation,
		},
		FareDisplay:      dto.FareDisplay,
		RoundTheWorld:    dto.RoundTheWorld,
		Ticketing:        dto.Ticketing,
		BypassNegotiated: dto.BypassNegotiated,
	}, nil
}

func marketFromDTO(dto FareMarketDTO) pricing.FareMarket {
	market := pricing.FareMarket{
		Origin:      dto.Origin,
		Destination: dto.Destination,
		Carrier:     pricing.CarrierCode(dto.Carrier),
	}
	for _, f := range dto.Fares {
		display := pricing.DisplaySelling
		if f.DisplayCategory != "" {
			display = pricing.DisplayCategory(f.DisplayCategory[0])
		}
		market.Fares = append(market.Fares, pricing.BaseFare{
			FareClass:       f.FareClass,
			Vendor:          pricing.VendorCode(f.Vendor),
			Carrier:         pricing.CarrierCode(f.Carrier),
			Tariff:          f.Tariff,
			RuleNumber:      f.RuleNumber,
			PaxType:         pricing.PaxTypeCode(f.PaxType),
			Amount:          pricing.NewMoney(f.Amount, pricing.Currency(f.Currency)),
			NUCAmount:       decimal.NewFromFloat(f.NUCAmount),
			RoundTrip:       f.RoundTrip,
			International:   f.International,
			DisplayCategory: display,
		})
	}
	return market
}

// =============================================================================
// RULE LOADING
// =============================================================================

// CreateRule loads one negotiated-fare rule from its JSON definition.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	body, ok := rawBody(w, r)
	if !ok {
		return
	}
	if err := h.Store.SaveRule(r.Context(), body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to save rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "rule saved"})
}

// CreateSecurityList loads an ordered security record list.
func (h *Handler) CreateSecurityList(w http.ResponseWriter, r *http.Request) {
	var req SecurityListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	recordsJSON, err := json.Marshal(req.Records)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid security records", err)
		return
	}
	if err := h.Store.SaveSecurityList(r.Context(), pricing.VendorCode(req.Vendor), req.ItemNo, string(recordsJSON)); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to save security list", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "security list saved"})
}

// CreateCalculation loads a legacy markup-calculate table.
func (h *Handler) CreateCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rowsJSON, err := json.Marshal(req.Rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid calculation rows", err)
		return
	}
	if err := h.Store.SaveCalculation(r.Context(), pricing.VendorCode(req.Vendor), req.ItemNo, string(rowsJSON)); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to save calculation", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "calculation saved"})
}

// CreateMarkupControl loads one markup control record.
func (h *Handler) CreateMarkupControl(w http.ResponseWriter, r *http.Request) {
	body, ok := rawBody(w, r)
	if !ok {
		return
	}
	if err := h.Store.SaveMarkupControl(r.Context(), body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to save markup control", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "markup control saved"})
}

// CreateFareRetailerRule loads one fare-retailer rule.
func (h *Handler) CreateFareRetailerRule(w http.ResponseWriter, r *http.Request) {
	body, ok := rawBody(w, r)
	if !ok {
		return
	}
	if err := h.Store.SaveFareRetailerRule(r.Context(), body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to save fare retailer rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{Message: "fare retailer rule saved"})
}

// rawBody re-serializes the posted JSON so the store receives a
// normalized document.
func rawBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body RawConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return "", false
	}
	data, err := json.Marshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return "", false
	}
	return string(data), true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
