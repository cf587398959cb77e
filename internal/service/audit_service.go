package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tradewindhq/planboard/internal/cache"
	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/engine"
	"github.com/tradewindhq/planboard/internal/repository"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// AuditService assembles audit reports: it loads the SKU's records, runs the
// projection engine over them, and caches the result.
type AuditService struct {
	supply    repository.SupplyRepository
	variances repository.VarianceRepository
	cache     cache.ReportCache
	cfg       config.EngineConfig
	now       func() time.Time
}

func NewAuditService(supply repository.SupplyRepository, variances repository.VarianceRepository, cacheImpl cache.ReportCache, cfg config.EngineConfig) *AuditService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &AuditService{
		supply:    supply,
		variances: variances,
		cache:     cacheImpl,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ComputeReport produces the week-by-week audit report for one SKU. A SKU
// without a master record yields a report with a nil product and no rows so
// the caller can render an empty state. An out-of-range shipping override is
// a ValidationError.
func (s *AuditService) ComputeReport(ctx context.Context, sku string, shippingOverride *int) (*engine.Report, error) {
	if report, ok, err := s.cache.Get(ctx, sku, shippingOverride); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("audit: cache get failed")
	}

	product, err := s.supply.GetProductBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return engine.Compute(engine.Inputs{Now: s.now()}, engine.LeadTimeProfile{}, s.cfg), nil
		}
		return nil, err
	}

	profile, err := engine.ResolveProfile(product, shippingOverride, s.cfg)
	if err != nil {
		return nil, err
	}

	in := engine.Inputs{
		Product: product,
		Now:     s.now(),
	}

	// The record loads have no ordering constraints among themselves.
	var scheduled []domain.VarianceRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.Orders, err = s.supply.ListOrderLines(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		in.Deliveries, err = s.supply.ListDeliveries(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		in.Shipments, err = s.supply.ListShipmentLines(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		in.Forecast, err = s.supply.ListForecast(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		in.Actuals, err = s.supply.ListSalesActuals(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		in.OnHand, err = s.supply.OnHand(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		scheduled, err = s.variances.ScheduledBySKU(gctx, sku)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.Deferred = deferredPlans(scheduled)

	report := engine.Compute(in, profile, s.cfg)

	if err := s.cache.Set(ctx, sku, shippingOverride, report); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("audit: cache set failed")
	}

	return report, nil
}

// deferredPlans folds scheduled variance records into per-stage planned
// additions. The destination stage is the one the shortfall was waiting on.
func deferredPlans(scheduled []domain.VarianceRecord) engine.DeferredPlans {
	plans := engine.DeferredPlans{
		FactoryShip: make(engine.Series),
		Ship:        make(engine.Series),
		Arrival:     make(engine.Series),
	}

	for _, v := range scheduled {
		if v.PlannedWeek == nil || v.PendingQty <= 0 {
			continue
		}
		w, ok := weekcal.Parse(*v.PlannedWeek)
		if !ok {
			log.Warn().Int64("variance_id", v.ID).Str("week", *v.PlannedWeek).Msg("audit: scheduled variance has malformed week")
			continue
		}

		switch v.SourceType {
		case domain.SourceOrderToDelivery:
			plans.FactoryShip.Add(w, v.PendingQty)
		case domain.SourceDeliveryToShip:
			plans.Ship.Add(w, v.PendingQty)
		case domain.SourceShipToArrival:
			plans.Arrival.Add(w, v.PendingQty)
		}
	}

	return plans
}
