// Mockapi is a stand-in for the external venue-data API, used for local
// runs and load testing. It serves a fixed Helsinki venue fixture on the
// static and dynamic endpoints and prints request statistics on shutdown.
//
// Usage:
//
//	go run ./scripts/mockapi -port 10000
//
// Point upstream.base_url at http://localhost:10000/home-assignment-api/v1
// to run the pricing service against it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"time"
)

var staticData = map[string]any{
	"venue_raw": map[string]any{
		"location": map[string]any{
			// GeoJSON order: [lon, lat]. Helsinki city centre.
			"coordinates": []float64{24.93087, 60.17094},
		},
	},
}

var dynamicData = map[string]any{
	"venue_raw": map[string]any{
		"delivery_specs": map[string]any{
			"delivery_pricing": map[string]any{
				"base_price": 390,
				"distance_ranges": []map[string]int{
					{"min": 0, "max": 1000, "a": 0, "b": 0},
					{"min": 1000, "max": 2000, "a": 100, "b": 0},
					{"min": 2000, "max": 3000, "a": 200, "b": 0},
				},
			},
			"order_minimum_no_surcharge": 1000,
		},
	},
}

func main() {
	port := flag.Int("port", 10000, "port to listen on")
	delay := flag.Duration("delay", 0, "artificial per-request delay for timeout testing")
	flag.Parse()

	var requestCount atomic.Int64
	startTime := time.Now()

	serveFixture := func(fixture map[string]any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			requestCount.Add(1)
			if *delay > 0 {
				time.Sleep(*delay)
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(fixture)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/home-assignment-api/v1/venues/{venue_slug}/static", serveFixture(staticData))
	mux.HandleFunc("/home-assignment-api/v1/venues/{venue_slug}/dynamic", serveFixture(dynamicData))

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting mock venue API on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	duration := time.Since(startTime).Seconds()
	total := requestCount.Load()
	rps := 0.0
	if duration > 0 {
		rps = float64(total) / duration
	}
	fmt.Printf("\n=== API Statistics ===\n")
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Running Time: %.1f seconds\n", duration)
	fmt.Printf("Requests/Second: %.1f\n", rps)
}
