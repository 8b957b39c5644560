package main

import (
	"net/http"

	"github.com/angeloszaimis/delivery-pricing/internal/balancer"
	"github.com/angeloszaimis/delivery-pricing/internal/metrics"
)

func setupRouter(lb *balancer.LoadBalancer, metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", lb.Forward)
	mux.HandleFunc("/metrics", metricsCollector.Handler())

	return mux
}
