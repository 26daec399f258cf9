package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"barfeed/internal/app"
	"barfeed/internal/datafeed"
	"barfeed/internal/model"
)

type historyResponse struct {
	Bars []model.Bar `json:"bars"`
}

func newRouter(d datafeed.Datafeed, timeout time.Duration) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		handleHistory(w, r, d, timeout)
	}).Methods(http.MethodGet)

	return withRequestID(withJSONHeaders(withGzip(recoverPanic(limitBody(r)))))
}

func handleHistory(w http.ResponseWriter, r *http.Request, d datafeed.Datafeed, timeout time.Duration) {
	q := r.URL.Query()
	req, err := app.BuildRequest(q.Get("symbol"), q.Get("exchange"), q.Get("interval"), q.Get("start"), q.Get("end"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	// Init is a no-op once it has succeeded
	if !d.Init(ctx, "", "") {
		http.Error(w, "datafeed unavailable", http.StatusServiceUnavailable)
		return
	}
	bars, ok := d.QueryHistory(ctx, req)
	if !ok {
		http.Error(w, "no history for "+req.VtSymbol()+" "+string(req.Interval), http.StatusNotFound)
		return
	}

	log.WithFields(log.Fields{
		"request_id": requestID(r.Context()),
		"symbol":     req.VtSymbol(),
		"interval":   req.Interval,
		"bars":       len(bars),
	}).Debug("history served")

	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(historyResponse{Bars: bars})
}
