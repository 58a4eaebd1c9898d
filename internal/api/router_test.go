package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tariff-compare/internal/api/models"
	"tariff-compare/internal/config"
	"tariff-compare/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const solarBody = `{
	"peak_consumption_kwh": 100,
	"off_peak_consumption_kwh": 200,
	"captive_peak_tariff": 0.9,
	"captive_off_peak_tariff": 0.6,
	"tax_rate_percent": 20,
	"free_market_tariff": 0.5,
	"include_solar": true,
	"solar_generation_kwh": 150,
	"captive_offset_percent": 80
}`

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []models.FieldIssue `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(config.DefaultApp(), zap.NewNop(), metrics.New())
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCompare(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/compare", solarBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.InDelta(t, 144, resp.Result.CostCaptiveWithSolar, 1e-9)
	assert.InDelta(t, 75, resp.Result.CostFreeWithSolar, 1e-9)
	assert.InDelta(t, 252, resp.Result.CostCaptiveNoSolar, 1e-9)
	assert.InDelta(t, 150, resp.Result.CostFreeNoSolar, 1e-9)
	assert.InDelta(t, 69, resp.Result.SavingsWithSolar, 1e-9)
	assert.InDelta(t, 102, resp.Result.SavingsNoSolar, 1e-9)

	// free_offset_percent was omitted and comes from the configured default.
	assert.InDelta(t, 1.0, resp.Breakdown.FreeOffsetFraction, 1e-12)
	assert.InDelta(t, 0.8, resp.Breakdown.CaptiveOffsetFraction, 1e-12)

	require.NotNil(t, resp.Analysis.BreakEvenFreeTariff)
	assert.InDelta(t, 0.96, *resp.Analysis.BreakEvenFreeTariff, 1e-9)
	require.NotNil(t, resp.Analysis.SavingsPercentWithSolar)
	assert.InDelta(t, 69.0/252*100, *resp.Analysis.SavingsPercentWithSolar, 1e-9)

	assert.Contains(t, resp.Headline, "R$ 69.00")
}

func TestCompareWithoutCaptiveCostOmitsPercent(t *testing.T) {
	body := `{"peak_consumption_kwh":0,"off_peak_consumption_kwh":0,"captive_peak_tariff":1,
		"captive_off_peak_tariff":1,"tax_rate_percent":0,"free_market_tariff":1}`
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/compare", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Analysis.SavingsPercentWithSolar)
	assert.Nil(t, resp.Analysis.BreakEvenFreeTariff)
	assert.Contains(t, resp.Headline, "captive market")
}

func TestCompareMissingFields(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/compare",
		`{"peak_consumption_kwh": 100, "include_solar": true}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)

	names := make([]string, 0, len(body.Error.Details.Fields))
	for _, f := range body.Error.Details.Fields {
		names = append(names, f.Field)
		assert.Equal(t, "is required", f.Reason)
	}
	assert.Equal(t, []string{
		"off_peak_consumption_kwh",
		"captive_peak_tariff",
		"captive_off_peak_tariff",
		"tax_rate_percent",
		"free_market_tariff",
		"solar_generation_kwh",
	}, names)
}

func TestCompareRejectsOverflowingInput(t *testing.T) {
	body := `{"peak_consumption_kwh":1e308,"off_peak_consumption_kwh":1e308,"captive_peak_tariff":0.9,
		"captive_off_peak_tariff":0.6,"tax_rate_percent":20,"free_market_tariff":0}`
	r := newTestRouter(t)

	for _, path := range []string{"/api/v1/compare", "/api/v1/report?format=pdf", "/api/v1/report?format=xlsx"} {
		t.Run(path, func(t *testing.T) {
			w := do(r, http.MethodPost, path, body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			resp := decodeError(t, w)
			assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
			fields := make([]string, 0, len(resp.Error.Details.Fields))
			for _, f := range resp.Error.Details.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, "cost_captive_no_solar")
		})
	}
}

func TestCompareMalformedJSON(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/compare", `{"peak_consumption_kwh": "lots"`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error.Code)
}

func TestCompareBatch(t *testing.T) {
	body := `{
		"base": {
			"peak_consumption_kwh": 100, "off_peak_consumption_kwh": 200,
			"captive_peak_tariff": 0.9, "captive_off_peak_tariff": 0.6,
			"tax_rate_percent": 20, "free_market_tariff": 0.5
		},
		"scenarios": [
			{"name": "pricey", "input": {"free_market_tariff": 0.9}},
			{"name": "cheap", "input": {"free_market_tariff": 0.3}},
			{"name": "broken", "input": {"include_solar": true}}
		]
	}`
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/compare/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "cheap", resp.Results[0].Name)
	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.InDelta(t, 252-90, resp.Results[0].Result.SavingsWithSolar, 1e-9)
	assert.Equal(t, "pricey", resp.Results[1].Name)
	assert.Equal(t, 2, resp.Results[1].Rank)

	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "broken", resp.Rejected[0].Name)
	assert.Equal(t, []models.FieldIssue{{Field: "solar_generation_kwh", Reason: "is required"}}, resp.Rejected[0].Fields)
}

func TestCompareBatchRejectsBadRequests(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		name string
		body string
	}{
		{"no scenarios", `{"base": {}, "scenarios": []}`},
		{"unnamed scenario", `{"base": {}, "scenarios": [{"input": {}}]}`},
		{"duplicate names", `{"base": {}, "scenarios": [{"name": "a"}, {"name": "a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/v1/compare/batch", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error.Code)
		})
	}
}

func TestReportPDF(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/report?format=pdf", solarBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="energy-comparison.pdf"`, w.Header().Get("Content-Disposition"))
	_, err := uuid.Parse(w.Header().Get("X-Report-ID"))
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestReportDefaultsToPDF(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/report", solarBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestReportXLSX(t *testing.T) {
	body := strings.Replace(solarBody, "{", `{"title": "Plant 7", "state": "mg",`, 1)
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/report?format=xlsx", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="energy-comparison.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Plant 7", title)
}

func TestReportErrors(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/report?format=docx", solarBody)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error.Code)

	w = do(r, http.MethodPost, "/api/v1/report?format=pdf", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, w).Error.Code)
}

func TestListFields(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/v1/fields", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Fields []models.FieldInfo `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fields, 10)
	assert.Equal(t, "peak_consumption_kwh", body.Fields[0].Name)
	assert.True(t, body.Fields[0].Required)
	assert.Equal(t, "R$/kWh", body.Fields[2].Unit)
	assert.Equal(t, 100.0, body.Fields[8].Default)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/compare", solarBody).Code)
	require.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/compare", `{}`).Code)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `tariff_comparisons_total{outcome="ok"} 1`)
	assert.Contains(t, out, `tariff_comparisons_total{outcome="invalid"} 1`)
	assert.Contains(t, out, `tariff_http_requests_total{code="200",method="POST",route="/api/v1/compare"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.DefaultApp(), zap.NewNop(), nil)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/compare", solarBody).Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/compare", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultApp()
	cfg.Api.CorsOrigins = []string{"https://app.example.com"}
	r := NewRouter(cfg, zap.NewNop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/v1/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestPanicRecovery(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "boom", body.Error.Message)
}

func TestServerShutsDownOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NewServeMux(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
