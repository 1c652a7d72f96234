package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fare-engine/pricing"
	"github.com/warp/fare-engine/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	conv := pricing.NewFixedRateConverter().
		WithRate("GBP", 1.0).
		WithRate("USD", 1.0)

	srv := httptest.NewServer(NewRouter(NewHandler(store, conv)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func loadScenario(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func priceRequest() PriceRequest {
	return PriceRequest{
		Market: FareMarketDTO{
			Origin: "LON", Destination: "NYC", Carrier: "BA",
			Fares: []BaseFareDTO{{
				FareClass: "YNEG", Vendor: "ATP", Carrier: "BA",
				Tariff: 1, RuleNumber: "5000", PaxType: "NEG",
				Amount: 100, Currency: "GBP", NUCAmount: 100,
				DisplayCategory: "C",
			}},
		},
		Context: TxnContextDTO{
			Date:        "2026-03-10",
			AgentPCC:    "W0H3",
			AgentNation: "GB",
		},
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scenarios/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []ScenarioDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 3)
	assert.Equal(t, "basic-markup", out[0].ID)
}

func TestPrice_BasicMarkupScenario(t *testing.T) {
	// GIVEN the basic-markup world: 110% selling over a 90% net level
	srv := newTestServer(t)
	loadScenario(t, srv, "basic-markup")

	// WHEN pricing a 100.00 GBP NEG base fare
	resp := postJSON(t, srv.URL+"/api/price", priceRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[PriceResponse](t, resp)

	// THEN the net level wins as the scope minimum
	require.Len(t, out.Derived, 1)
	assert.Empty(t, out.Failed)
	df := out.Derived[0]
	assert.Equal(t, "net", df.Kind)
	assert.InDelta(t, 90.0, df.Amount, 0.001)
	assert.Equal(t, "GBP", df.Currency)
	assert.InDelta(t, 90.0, df.NUCAmount, 0.001)
	assert.Equal(t, "NEG", df.PaxType)
	assert.True(t, df.Cat25Responsive)
	assert.False(t, df.FromRetailer)
	assert.NotEmpty(t, df.ID)
}

func TestPrice_RetailerOverrideScenario(t *testing.T) {
	// GIVEN the retailer-override world: flat 15.00 GBP off on top of the
	// basic markup data
	srv := newTestServer(t)
	loadScenario(t, srv, "retailer-override")

	// WHEN pricing the same base fare
	resp := postJSON(t, srv.URL+"/api/price", priceRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[PriceResponse](t, resp)

	// THEN the retailer rule prices 85.00 and the legacy markup is skipped
	require.Len(t, out.Derived, 1)
	df := out.Derived[0]
	assert.True(t, df.FromRetailer)
	assert.InDelta(t, 85.0, df.Amount, 0.001)
}

func TestPrice_RedistributionScenario(t *testing.T) {
	// GIVEN the redistribution world: W0H3 denied mid-list, agencies A1B2
	// and C3D4 redistribute approved markup controls
	srv := newTestServer(t)
	loadScenario(t, srv, "redistribution")

	// WHEN pricing
	resp := postJSON(t, srv.URL+"/api/price", priceRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[PriceResponse](t, resp)

	// THEN the cheapest redistributed level wins (A1B2's 92% net), with
	// its wholesale companion alongside
	require.NotEmpty(t, out.Derived)
	assert.Equal(t, "redistributed", out.Derived[0].Kind)
	assert.InDelta(t, 92.0, out.Derived[0].Amount, 0.001)
}

func TestPrice_BypassNegotiated(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "basic-markup")

	req := priceRequest()
	req.Context.BypassNegotiated = true

	resp := postJSON(t, srv.URL+"/api/price", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[PriceResponse](t, resp)
	assert.Empty(t, out.Derived)
}

func TestPrice_InvalidDate(t *testing.T) {
	srv := newTestServer(t)

	req := priceRequest()
	req.Context.Date = "10/03/2026"

	resp := postJSON(t, srv.URL+"/api/price", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateRule_RoundTrip(t *testing.T) {
	// GIVEN a hand-loaded world equivalent to the basic scenario
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/rules", RawConfig{
		"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
		"sets": []any{map[string]any{"items": []any{map[string]any{
			"item_no": 1, "relation": "THEN", "pax_type": "NEG",
			"display_category": "C", "security_item_no": 100, "calc_item_no": 200,
		}}}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/security", SecurityListRequest{
		Vendor: "ATP", ItemNo: 100,
		Records: []RawConfig{{
			"seq_no": 1, "applicability": "Y", "locale_type": "T",
			"agency_pcc": "W0H3", "sell": true, "ticket": true, "update": true,
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/calculations", CalculationRequest{
		Vendor: "ATP", ItemNo: 200,
		Rows: []RawConfig{{
			"seq_no": 1, "level": "S", "indicator": "P", "percent": 80,
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// WHEN pricing against the hand-loaded data
	priced := postJSON(t, srv.URL+"/api/price", priceRequest())
	require.Equal(t, http.StatusOK, priced.StatusCode)
	out := decodeJSON[PriceResponse](t, priced)

	require.Len(t, out.Derived, 1)
	assert.InDelta(t, 80.0, out.Derived[0].Amount, 0.001)
}

func TestCreateRule_RejectsBadConfig(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/rules", RawConfig{
		"vendor": "ATP", "carrier": "BA", "tariff": 1, "rule_number": "5000",
		"sets": []any{map[string]any{"items": []any{map[string]any{
			"item_no": 1, "effective_from": "bogus",
		}}}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScenarioLifecycle(t *testing.T) {
	srv := newTestServer(t)
	loadScenario(t, srv, "basic-markup")

	resp, err := http.Get(srv.URL + "/api/scenarios/current")
	require.NoError(t, err)
	defer resp.Body.Close()
	current := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "basic-markup", current["scenario_id"])

	// Reset clears data and the scenario marker.
	reset := postJSON(t, srv.URL+"/api/scenarios/reset", struct{}{})
	require.Equal(t, http.StatusOK, reset.StatusCode)

	priced := postJSON(t, srv.URL+"/api/price", priceRequest())
	require.Equal(t, http.StatusOK, priced.StatusCode)
	out := decodeJSON[PriceResponse](t, priced)
	assert.Empty(t, out.Derived)

	resp, err = http.Get(srv.URL + "/api/scenarios/current")
	require.NoError(t, err)
	defer resp.Body.Close()
	current = decodeJSON[map[string]string](t, resp)
	assert.Empty(t, current["scenario_id"])
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
