package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"barfeed/internal/model"
)

type fakeDatafeed struct {
	initOK bool
	ok     bool
	bars   []model.Bar
	got    model.HistoryRequest
	panics bool
}

func (f *fakeDatafeed) Name() string { return "fake" }

func (f *fakeDatafeed) Init(context.Context, string, string) bool { return f.initOK }

func (f *fakeDatafeed) QueryHistory(_ context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if f.panics {
		panic("boom")
	}
	f.got = req
	if !f.ok {
		return nil, false
	}
	return f.bars, true
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const historyURL = "/api/history?symbol=TA105&exchange=CZCE&interval=1m&start=2021-03-01&end=2021-03-01"

func TestHistory_OK(t *testing.T) {
	t.Parallel()

	// Arrange
	dt := time.Date(2021, 3, 1, 1, 0, 0, 0, time.UTC)
	d := &fakeDatafeed{initOK: true, ok: true, bars: []model.Bar{
		{Symbol: "TA105", Exchange: model.CZCE, Interval: model.Minute, Datetime: dt, ClosePrice: 4710, Source: "RQ"},
	}}

	// Act
	rr := get(t, newRouter(d, time.Second), historyURL, nil)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	_, err := uuid.Parse(rr.Header().Get("X-Request-Id"))
	require.NoError(t, err)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Bars, 1)
	require.True(t, resp.Bars[0].Datetime.Equal(dt))
	require.Equal(t, "RQ", resp.Bars[0].Source)

	require.Equal(t, "TA105", d.got.Symbol)
	require.Equal(t, model.CZCE, d.got.Exchange)
	require.Equal(t, model.Minute, d.got.Interval)
}

func TestHistory_NoDataIsEmptyArray(t *testing.T) {
	t.Parallel()

	d := &fakeDatafeed{initOK: true, ok: true, bars: []model.Bar{}}
	rr := get(t, newRouter(d, time.Second), historyURL, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"bars":[]}`, rr.Body.String())
}

func TestHistory_Errors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name   string
		d      *fakeDatafeed
		target string
		status int
	}{
		{"bad interval", &fakeDatafeed{initOK: true, ok: true}, "/api/history?symbol=TA105&exchange=CZCE&interval=5m&start=2021-03-01&end=2021-03-01", http.StatusBadRequest},
		{"missing symbol", &fakeDatafeed{initOK: true, ok: true}, "/api/history?exchange=CZCE&start=2021-03-01&end=2021-03-01", http.StatusBadRequest},
		{"rejected", &fakeDatafeed{initOK: true}, historyURL, http.StatusNotFound},
		{"init failed", &fakeDatafeed{}, historyURL, http.StatusServiceUnavailable},
		{"panic", &fakeDatafeed{initOK: true, panics: true}, historyURL, http.StatusInternalServerError},
	} {
		rr := get(t, newRouter(tc.d, time.Second), tc.target, nil)
		require.Equal(t, tc.status, rr.Code, tc.name)
	}
}

func TestHistory_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, historyURL, nil)
	rr := httptest.NewRecorder()
	newRouter(&fakeDatafeed{}, time.Second).ServeHTTP(rr, req)

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHistory_RequestIDEcho(t *testing.T) {
	t.Parallel()

	rr := get(t, newRouter(&fakeDatafeed{}, time.Second), "/healthz", http.Header{"X-Request-Id": {"abc-123"}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
	require.Equal(t, "ok", rr.Body.String())
}

func TestHistory_Gzip(t *testing.T) {
	t.Parallel()

	d := &fakeDatafeed{initOK: true, ok: true, bars: []model.Bar{{Symbol: "TA105"}}}
	rr := get(t, newRouter(d, time.Second), historyURL, http.Header{"Accept-Encoding": {"gzip"}})

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	var resp historyResponse
	require.NoError(t, json.NewDecoder(zr).Decode(&resp))
	require.Len(t, resp.Bars, 1)
}
