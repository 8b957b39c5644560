package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/handler"
	"github.com/angeloszaimis/delivery-pricing/internal/service"
	"github.com/angeloszaimis/delivery-pricing/internal/venueapi"
)

func TestHandler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Handler Suite")
}

const (
	testVenue = "home-assignment-venue-helsinki"
	endpoint  = "/api/v1/delivery-order-price"
)

var _ = Describe("PriceHandler", func() {
	var (
		upstreamHits atomic.Int64
		upstream     *httptest.Server
		mux          *http.ServeMux
	)

	BeforeEach(func() {
		upstreamHits.Store(0)
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			upstreamHits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/venues/" + testVenue + "/static":
				w.Write([]byte(`{"venue_raw": {"location": {"coordinates": [24.93087, 60.17094]}}}`))
			case "/venues/" + testVenue + "/dynamic":
				w.Write([]byte(`{
					"venue_raw": {
						"delivery_specs": {
							"order_minimum_no_surcharge": 1000,
							"delivery_pricing": {
								"base_price": 390,
								"distance_ranges": [
									{"min": 0, "max": 1000, "a": 0, "b": 0},
									{"min": 1000, "max": 0, "a": 0, "b": 0}
								]
							}
						}
					}
				}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		api := venueapi.New(upstream.URL)
		pool := connpool.New(connpool.Options{
			Size:           2,
			SweepInterval:  time.Minute,
			ProbeURL:       func(role connpool.Role) string { return api.VenueURL(testVenue, string(role)) },
			RequestTimeout: 5 * time.Second,
		}, slog.Default())
		svc := service.New(slog.Default(), pool, api, 10)
		mux = handler.NewPriceHandler(slog.Default(), svc).Routes(endpoint)
	})

	AfterEach(func() {
		upstream.Close()
	})

	get := func(query url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, endpoint+"?"+query.Encode(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	validQuery := func() url.Values {
		return url.Values{
			"venue_slug": {testVenue},
			"cart_value": {"1000"},
			"user_lat":   {"60.17045"},
			"user_lon":   {"24.93147"},
		}
	}

	Describe("GET "+endpoint, func() {
		It("returns the price breakdown as JSON", func() {
			rec := get(validQuery())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var body struct {
				TotalPrice          int `json:"total_price"`
				SmallOrderSurcharge int `json:"small_order_surcharge"`
				CartValue           int `json:"cart_value"`
				Delivery            struct {
					Fee      int `json:"fee"`
					Distance int `json:"distance"`
				} `json:"delivery"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.TotalPrice).To(Equal(1390))
			Expect(body.SmallOrderSurcharge).To(Equal(0))
			Expect(body.CartValue).To(Equal(1000))
			Expect(body.Delivery.Fee).To(Equal(390))
			Expect(body.Delivery.Distance).To(Equal(64))
		})

		It("rejects non-GET methods with a JSON error", func() {
			req := httptest.NewRequest(http.MethodPost, endpoint, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))

			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(Equal(false))
			Expect(body["error"]).To(Equal("Method POST not supported. Only GET requests are allowed."))
		})

		It("lists every missing parameter", func() {
			rec := get(url.Values{"venue_slug": {testVenue}})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["error"]).To(Equal("Missing required parameters: cart_value, user_lat, user_lon"))
		})

		It("rejects a non-integer cart value", func() {
			q := validQuery()
			q.Set("cart_value", "10.5")
			rec := get(q)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("cart_value must be an integer"))
		})

		It("rejects a non-numeric latitude", func() {
			q := validQuery()
			q.Set("user_lat", "north")
			rec := get(q)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("user_lat must be a number"))
		})

		It("rejects an out-of-range latitude without calling the upstream", func() {
			q := validQuery()
			q.Set("user_lat", "95")
			rec := get(q)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(upstreamHits.Load()).To(BeZero())
		})

		It("maps pricing rejections to 400", func() {
			q := validQuery()
			q.Set("user_lat", "0")
			q.Set("user_lon", "0")
			rec := get(q)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(Equal(false))
			Expect(body["error"]).To(ContainSubstring("exceeds maximum allowed distance"))
		})
	})

	Describe("GET /health", func() {
		It("reports healthy", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "healthy"}`))
		})
	})
})
