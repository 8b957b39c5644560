// Loadtest is a concurrent traffic generator for the delivery order price
// endpoint. It fires GET queries with randomized user coordinates around the
// mock venue and reports throughput, latency percentiles, and status code
// distribution.
//
// Usage:
//
//	go run ./scripts/loadtest -url http://localhost:8000/api/v1/delivery-order-price -concurrency 20 -requests 2000
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8000/api/v1/delivery-order-price", "Target URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		venue       = flag.String("venue", "home-assignment-venue-helsinki", "venue_slug to query")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
	)
	outJSON := flag.String("out", "", "Write JSON summary to this file (optional)")
	verbose := flag.Bool("v", false, "Verbose per-request logging to stdout")
	flag.Parse()

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}

	jobs := make(chan int)
	var wg sync.WaitGroup

	var total, success, failure int32

	var allLatencies []time.Duration
	var latMu sync.Mutex

	statusCodes := make(map[int]int32)
	var statusMu sync.Mutex

	// Venue fixture sits at (60.17094, 24.93087); jitter keeps distances
	// inside the priced bands most of the time.
	makeURL := func(i int) string {
		lat := 60.17094 + (rand.Float64()-0.5)*0.02
		lon := 24.93087 + (rand.Float64()-0.5)*0.02
		cart := 500 + rand.Intn(2000)
		return fmt.Sprintf("%s?venue_slug=%s&cart_value=%d&user_lat=%.5f&user_lon=%.5f",
			*baseURL, *venue, cart, lat, lon)
	}

	start := time.Now()

	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reqStart := time.Now()
				resp, err := client.Get(makeURL(i))
				latency := time.Since(reqStart)

				atomic.AddInt32(&total, 1)
				if err != nil {
					atomic.AddInt32(&failure, 1)
					if *verbose {
						fmt.Printf("request %d failed: %v\n", i, err)
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				statusMu.Lock()
				statusCodes[resp.StatusCode]++
				statusMu.Unlock()

				if resp.StatusCode == http.StatusOK {
					atomic.AddInt32(&success, 1)
				} else {
					atomic.AddInt32(&failure, 1)
				}

				latMu.Lock()
				allLatencies = append(allLatencies, latency)
				latMu.Unlock()

				if *verbose {
					fmt.Printf("request %d: %d in %v\n", i, resp.StatusCode, latency)
				}
			}
		}()
	}

	for i := 0; i < *requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)

	sort.Slice(allLatencies, func(i, j int) bool { return allLatencies[i] < allLatencies[j] })
	pct := func(p float64) time.Duration {
		if len(allLatencies) == 0 {
			return 0
		}
		idx := int(float64(len(allLatencies)) * p)
		if idx >= len(allLatencies) {
			idx = len(allLatencies) - 1
		}
		return allLatencies[idx]
	}

	summary := map[string]any{
		"total":        total,
		"success":      success,
		"failure":      failure,
		"elapsed":      elapsed.String(),
		"rps":          float64(total) / elapsed.Seconds(),
		"p50":          pct(0.50).String(),
		"p90":          pct(0.90).String(),
		"p95":          pct(0.95).String(),
		"p99":          pct(0.99).String(),
		"status_codes": statusCodes,
	}

	fmt.Printf("\n=== Load Test Summary ===\n")
	fmt.Printf("Total: %d  Success: %d  Failure: %d\n", total, success, failure)
	fmt.Printf("Elapsed: %v  RPS: %.1f\n", elapsed, float64(total)/elapsed.Seconds())
	fmt.Printf("Latency p50=%v p90=%v p95=%v p99=%v\n", pct(0.50), pct(0.90), pct(0.95), pct(0.99))
	fmt.Printf("Status codes: %v\n", statusCodes)

	if *outJSON != "" {
		b, _ := json.MarshalIndent(summary, "", "  ")
		if err := os.WriteFile(*outJSON, b, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write summary: %v\n", err)
			os.Exit(1)
		}
	}
}
