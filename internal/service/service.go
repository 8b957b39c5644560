package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/angeloszaimis/delivery-pricing/internal/connpool"
	"github.com/angeloszaimis/delivery-pricing/internal/pricing"
	"github.com/angeloszaimis/delivery-pricing/internal/venueapi"
)

// Service orchestrates one delivery order price calculation per call. It is
// safe for concurrent use; the admission semaphore bounds how many pipelines
// run at once.
type Service struct {
	logger *slog.Logger
	pool   *connpool.Pool
	api    *venueapi.Client
	admit  *semaphore.Weighted
}

func New(logger *slog.Logger, pool *connpool.Pool, api *venueapi.Client, maxConcurrent int) *Service {
	return &Service{
		logger: logger,
		pool:   pool,
		api:    api,
		admit:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// CalculatePrice runs the pricing pipeline: validate, admit, fetch static
// venue data, fetch dynamic pricing data, compute. When the service is at
// capacity the call blocks until a permit frees or the context ends; the
// caller's HTTP timeout is the effective bound on that wait.
func (s *Service) CalculatePrice(ctx context.Context, req pricing.Request) (pricing.Response, error) {
	if err := req.Validate(); err != nil {
		return pricing.Response{}, failure(KindInvalidInput, fmt.Errorf("validation error: %w", err))
	}

	if err := s.admit.Acquire(ctx, 1); err != nil {
		return pricing.Response{}, failure(KindBusy, errors.New("server too busy"))
	}
	defer s.admit.Release(1)

	s.logger.Info("Processing pricing request", slog.String("venue", req.VenueSlug))

	coords, err := s.api.FetchStatic(ctx, s.pool.Acquire(connpool.RoleStatic), req.VenueSlug)
	if err != nil {
		s.logger.Error("Failed to get venue static data",
			slog.String("venue", req.VenueSlug),
			slog.Any("err", err))
		return pricing.Response{}, upstreamFailure(err)
	}

	spec, err := s.api.FetchDynamic(ctx, s.pool.Acquire(connpool.RoleDynamic), req.VenueSlug)
	if err != nil {
		s.logger.Error("Failed to get venue dynamic data",
			slog.String("venue", req.VenueSlug),
			slog.Any("err", err))
		return pricing.Response{}, upstreamFailure(err)
	}

	distance := pricing.Distance(req.UserLat, req.UserLon, coords.Lat, coords.Lon)

	fee, err := pricing.DeliveryFee(distance, spec)
	if err != nil {
		return pricing.Response{}, failure(KindPricingRejected, err)
	}

	surcharge := pricing.SmallOrderSurcharge(req.CartValue, spec.OrderMinimumNoSurcharge)

	resp, err := pricing.NewResponse(req.CartValue, fee, surcharge, distance)
	if err != nil {
		// Invariant violation in response assembly is a programming fault,
		// not a client-visible pricing outcome.
		return pricing.Response{}, fmt.Errorf("calculation error: %w", err)
	}

	return resp, nil
}

func upstreamFailure(err error) *Error {
	if errors.Is(err, venueapi.ErrPayload) {
		return failure(KindUpstreamDataInvalid, err)
	}
	return failure(KindUpstreamFailure, err)
}
