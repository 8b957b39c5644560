package metrics_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/delivery-pricing/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError, // Suppress logs in tests
		}))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
	})

	AfterEach(func() {
		cancel()
		time.Sleep(10 * time.Millisecond) // Allow goroutine to finish
	})

	Describe("NewCollector", func() {
		It("should create a collector with specified buffer size", func() {
			c := metrics.NewCollector(500, log)
			Expect(c).NotTo(BeNil())
		})
	})

	Describe("Start and event processing", func() {
		It("should process request and selection events", func() {
			collector.Start(ctx)

			collector.EventChannel() <- metrics.MetricEvent{
				Type:      metrics.EventRequestReceived,
				Timestamp: time.Now(),
				Instance:  "127.0.0.1:8001",
			}
			collector.EventChannel() <- metrics.MetricEvent{
				Type:      metrics.EventInstanceSelected,
				Timestamp: time.Now(),
				Instance:  "127.0.0.1:8001",
			}

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(1)))
			Eventually(func() int64 {
				return collector.Snapshot().Instances["127.0.0.1:8001"].Selections
			}).Should(Equal(int64(1)))
		})

		It("should process response events", func() {
			collector.Start(ctx)

			collector.EventChannel() <- metrics.MetricEvent{
				Type:       metrics.EventResponseCompleted,
				Timestamp:  time.Now(),
				Instance:   "127.0.0.1:8001",
				Duration:   120 * time.Millisecond,
				StatusCode: 200,
			}

			Eventually(func() int64 {
				return collector.Snapshot().Instances["127.0.0.1:8001"].StatusCodes[200]
			}).Should(Equal(int64(1)))
		})

		It("should process health change events", func() {
			collector.Start(ctx)

			collector.EventChannel() <- metrics.MetricEvent{
				Type:      metrics.EventHealthChanged,
				Timestamp: time.Now(),
				Instance:  "127.0.0.1:8001",
				Healthy:   false,
			}

			Eventually(func() bool {
				_, ok := collector.Snapshot().Instances["127.0.0.1:8001"]
				return ok
			}).Should(BeTrue())
			Expect(collector.Snapshot().Instances["127.0.0.1:8001"].Healthy).To(BeFalse())
		})

		It("should drain buffered events on shutdown", func() {
			for i := 0; i < 5; i++ {
				collector.EventChannel() <- metrics.MetricEvent{
					Type:      metrics.EventRequestReceived,
					Timestamp: time.Now(),
					Instance:  "127.0.0.1:8001",
				}
			}

			collector.Start(ctx)
			cancel()

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(5)))
		})
	})

	Describe("Handler", func() {
		It("should serve the snapshot as JSON", func() {
			collector.Start(ctx)

			collector.EventChannel() <- metrics.MetricEvent{
				Type:      metrics.EventRequestReceived,
				Timestamp: time.Now(),
				Instance:  "127.0.0.1:8001",
			}
			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(1)))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			collector.Handler().ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.TotalRequests).To(Equal(int64(1)))
			Expect(snap.Instances).To(HaveKey("127.0.0.1:8001"))
		})
	})
})
