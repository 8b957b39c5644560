package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/angeloszaimis/delivery-pricing/internal/pricing"
	"github.com/angeloszaimis/delivery-pricing/internal/service"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// PriceHandler serves the delivery order price endpoint for one instance.
type PriceHandler struct {
	logger *slog.Logger
	svc    *service.Service
}

func NewPriceHandler(logger *slog.Logger, svc *service.Service) *PriceHandler {
	return &PriceHandler{
		logger: logger,
		svc:    svc,
	}
}

// Routes builds the instance's mux: the pricing endpoint at the configured
// path and the health endpoint used by the balancer.
func (h *PriceHandler) Routes(endpoint string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(endpoint, h.HandlePrice)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

func (h *PriceHandler) HandlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not supported. Only GET requests are allowed.", r.Method))
		return
	}

	h.logger.Info("Received request",
		slog.String("from", r.RemoteAddr),
		slog.String("query", r.URL.RawQuery))

	req, err := parseRequest(r)
	if err != nil {
		h.logger.Warn("Rejected request", slog.Any("err", err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.svc.CalculatePrice(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Pricing pipeline failed", slog.Any("err", err))
		} else {
			h.logger.Warn("Pricing request failed", slog.Any("err", err))
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PriceHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// parseRequest extracts and type-checks the query parameters. Validation of
// value ranges happens inside the service so no network call is made for a
// bad request either way.
func parseRequest(r *http.Request) (pricing.Request, error) {
	params := r.URL.Query()

	var missing []string
	for _, name := range []string{"venue_slug", "cart_value", "user_lat", "user_lon"} {
		if !params.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return pricing.Request{}, fmt.Errorf("Missing required parameters: %s", strings.Join(missing, ", "))
	}

	cartValue, err := strconv.Atoi(params.Get("cart_value"))
	if err != nil {
		return pricing.Request{}, fmt.Errorf("cart_value must be an integer")
	}

	userLat, err := strconv.ParseFloat(params.Get("user_lat"), 64)
	if err != nil {
		return pricing.Request{}, fmt.Errorf("user_lat must be a number")
	}

	userLon, err := strconv.ParseFloat(params.Get("user_lon"), 64)
	if err != nil {
		return pricing.Request{}, fmt.Errorf("user_lon must be a number")
	}

	return pricing.Request{
		VenueSlug: params.Get("venue_slug"),
		CartValue: cartValue,
		UserLat:   userLat,
		UserLon:   userLon,
	}, nil
}

func statusFor(err error) int {
	kind, ok := service.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case service.KindInvalidInput,
		service.KindUpstreamFailure,
		service.KindUpstreamDataInvalid,
		service.KindPricingRejected:
		return http.StatusBadRequest
	case service.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
