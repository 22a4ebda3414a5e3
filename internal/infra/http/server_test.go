package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/infra/excel"
	"github.com/Spok95/unitconv/internal/infra/logger"
	"github.com/Spok95/unitconv/internal/infra/metrics"
	"github.com/Spok95/unitconv/internal/service"
)

func newTestHandler() http.Handler {
	log := logger.Discard()
	m := metrics.New()
	return Routes(Deps{
		Log:           log,
		Conv:          service.NewConverter(log, m, service.DefaultPrecision),
		Metrics:       m,
		ExposeMetrics: true,
	})
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(headerRequestID))
	assert.NoError(t, err)
}

func TestRequestIDIsEchoed(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, id)

	rec := do(t, newTestHandler(), req)
	assert.Equal(t, id, rec.Header().Get(headerRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler()
	do(t, h, httptest.NewRequest(http.MethodGet, "/api/convert?category=Time&from=Days&to=Hours&value=1", nil))

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `unitconv_conversions_total{category="Time",outcome="ok"} 1`)
}

func TestPage(t *testing.T) {
	h := newTestHandler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Unit Converter")
	assert.Contains(t, body, `<option value="Centimeters">`)
	assert.Contains(t, body, `value="0.0"`)
	assert.NotContains(t, body, "result-text\">")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/?category=Weight&from=Kilograms&to=Pounds&value=1&convert=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.0 Kilograms = 2.2046 Pounds")
}

func TestPageCategorySwitchResetsUnits(t *testing.T) {
	// from/to остались от Length - для Temperature берём первые юниты
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet, "/?category=Temperature&from=Miles&to=Feet&value=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Celsius" selected>`)
	assert.NotContains(t, body, `value="Miles"`)
}

func TestPageBadValue(t *testing.T) {
	h := newTestHandler()
	for _, value := range []string{"abc", "NaN", "Inf", "-Infinity", "1e400"} {
		t.Run(value, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, "/?category=Length&convert=1&value="+value, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "Please enter a valid number.")
			assert.NotContains(t, body, "Meters =")
		})
	}
}

func TestPageLargeValue(t *testing.T) {
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet,
		"/?category=Length&from=Meters&to=Kilometers&value=1e308&convert=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1e+308 Meters = 1")
}

func TestPageFooter(t *testing.T) {
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "No personal data is collected or stored.")
	assert.Contains(t, body, "© 2024 Developed by Zakia Baig")
}

func TestStatic(t *testing.T) {
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".result-text")
}

func TestAPICategories(t *testing.T) {
	rec := do(t, newTestHandler(), httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []units.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, units.Length, got[0].Category)
	assert.Equal(t, units.Meters, got[0].Base)
}

func TestAPIConvert(t *testing.T) {
	testCases := []struct {
		name   string
		req    *http.Request
		status int
		result float64
		errMsg string
	}{
		{
			name:   "query",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?category=Length&from=Kilometers&to=Meters&value=1", nil),
			status: http.StatusOK,
			result: 1000,
		},
		{
			name:   "aliases without category",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?from=k&to=c&value=273.15", nil),
			status: http.StatusOK,
			result: 0,
		},
		{
			name:   "json body",
			req:    jsonRequest(`{"category":"Time","from":"Days","to":"Hours","value":1}`),
			status: http.StatusOK,
			result: 24,
		},
		{
			name:   "unknown category",
			req:    jsonRequest(`{"category":"Volume","from":"l","to":"ml","value":1}`),
			status: http.StatusBadRequest,
			errMsg: "invalid category",
		},
		{
			name:   "unit outside category",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?category=Weight&from=Miles&to=Grams&value=1", nil),
			status: http.StatusBadRequest,
			errMsg: "invalid unit",
		},
		{
			name:   "missing value",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?category=Weight&from=g&to=kg", nil),
			status: http.StatusBadRequest,
			errMsg: "value is required",
		},
		{
			name:   "nan",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?from=g&to=kg&value=NaN", nil),
			status: http.StatusBadRequest,
			errMsg: "finite",
		},
		{
			name:   "overflow",
			req:    httptest.NewRequest(http.MethodGet, "/api/convert?from=d&to=s&value=1e306", nil),
			status: http.StatusUnprocessableEntity,
			errMsg: "out of float64 range",
		},
		{
			name:   "broken json",
			req:    jsonRequest(`{"category":`),
			status: http.StatusBadRequest,
			errMsg: "decode request",
		},
	}

	h := newTestHandler()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.req)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, mimeJSON, rec.Header().Get("Content-Type"))

			if tc.errMsg != "" {
				var body errorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body.Error, tc.errMsg)
				return
			}
			var res service.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.InDelta(t, tc.result, res.Converted, 1e-9)
			assert.NotEmpty(t, res.ID)
		})
	}
}

func TestAPIConvertMsgpack(t *testing.T) {
	body, err := msgpack.Marshal(service.Request{Category: "Temperature", From: "Celsius", To: "Fahrenheit", Value: -40})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", mimeMsgpack)
	req.Header.Set("Accept", mimeMsgpack)

	rec := do(t, newTestHandler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeMsgpack, rec.Header().Get("Content-Type"))

	var res service.Result
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, -40.0, res.Converted)
	assert.Equal(t, units.Fahrenheit, res.To)
	assert.Equal(t, "-40.0 Celsius = -40.0000 Fahrenheit", res.Display)
}

func TestAPITable(t *testing.T) {
	h := newTestHandler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/table?category=time&value=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var tbl units.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tbl))
	assert.Equal(t, units.Time, tbl.Category)
	assert.Equal(t, 48.0, tbl.Cells[3][2])

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/table?category=Length&format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, excel.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "length.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, "Length", f.GetSheetName(0))

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/table?category=Length&value=1e308", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "out of float64 range")

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/table?category=Volume", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIBatch(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"category", "value", "from", "to"},
		{"Length", 100, "cm", "m"},
		{"Length", 1, "cm", "kg"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	xlsx := &bytes.Buffer{}
	require.NoError(t, f.Write(xlsx))
	_ = f.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "batch.xlsx")
	require.NoError(t, err)
	_, _ = io.Copy(part, bytes.NewReader(xlsx.Bytes()))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/batch", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := do(t, newTestHandler(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-Batch-Rows"))
	assert.Equal(t, "1", rec.Header().Get("X-Batch-Failed"))

	lines, err := excel.ReadBatch(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestAPIBatchRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/batch", strings.NewReader("hello"))
	rec := do(t, newTestHandler(), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", mimeJSON)
	return req
}
