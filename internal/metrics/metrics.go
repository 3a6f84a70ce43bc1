package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Trade requests processed, by mode and terminal status"},
		[]string{"mode", "status"},
	)
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "analyses_total", Help: "Market analyses served, by mode"},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(TradesTotal, AnalysesTotal)
}

// Serve exposes /metrics on its own listener and returns the server so the
// caller can shut it down.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
