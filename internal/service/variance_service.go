package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tradewindhq/planboard/internal/cache"
	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/repository"
	"github.com/tradewindhq/planboard/internal/variance"
)

// ResolveAction names the reconciliation actions a caller may request.
type ResolveAction string

const (
	ActionDefer      ResolveAction = "defer"
	ActionShortClose ResolveAction = "short_close"
)

// ResolvePayload carries the action-specific fields: PlannedWeek for defer,
// Reason for short_close.
type ResolvePayload struct {
	PlannedWeek string `json:"planned_week"`
	Reason      string `json:"reason"`
}

// VarianceService owns the reconciliation workflow: detection sync, the
// overview query, and the resolution actions.
type VarianceService struct {
	supply repository.SupplyRepository
	repo   repository.VarianceRepository
	cache  cache.ReportCache
	cfg    config.VarianceConfig
	now    func() time.Time
}

func NewVarianceService(supply repository.SupplyRepository, repo repository.VarianceRepository, cacheImpl cache.ReportCache, cfg config.VarianceConfig) *VarianceService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &VarianceService{
		supply: supply,
		repo:   repo,
		cache:  cacheImpl,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Overview re-detects shortfalls from the raw records, folds them into the
// store, and returns the filtered records decorated with read-time priority
// and overdue classification plus roll-up counts.
func (s *VarianceService) Overview(ctx context.Context, filter domain.VarianceFilter) (*domain.VarianceOverview, error) {
	if err := s.syncDetected(ctx, filter.SKU); err != nil {
		return nil, fmt.Errorf("variance detection sync: %w", err)
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	overview := &domain.VarianceOverview{
		Items:      make([]domain.VarianceView, 0, len(records)),
		ByStatus:   make(map[domain.VarianceStatus]int),
		ByPriority: make(map[domain.VariancePriority]int),
	}

	for _, rec := range records {
		view := variance.Classify(rec, now, s.cfg)
		if filter.Priority != "" && view.Priority != filter.Priority {
			continue
		}
		if filter.Status == domain.VarianceOverdue && !view.Overdue {
			continue
		}
		overview.Items = append(overview.Items, view)
		overview.ByStatus[view.Status]++
		overview.ByPriority[view.Priority]++
	}

	return overview, nil
}

// Resolve applies one reconciliation action to one record. Validation
// failures leave the stored record untouched.
func (s *VarianceService) Resolve(ctx context.Context, id int64, action ResolveAction, payload ResolvePayload) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	switch action {
	case ActionDefer:
		err = variance.Defer(rec, payload.PlannedWeek)
	case ActionShortClose:
		err = variance.ShortClose(rec, payload.Reason, s.now())
	default:
		return domain.NewValidationError("action", "unknown action %q", action)
	}
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return err
	}

	// A resolution changes the SKU's forward plan.
	if err := s.cache.InvalidateSKU(ctx, rec.SKU); err != nil {
		log.Warn().Err(err).Str("sku", rec.SKU).Msg("variance: cache invalidation failed")
	}

	return nil
}

// BatchResolve applies the action to each record independently and reports a
// tally. One failure never blocks the rest.
func (s *VarianceService) BatchResolve(ctx context.Context, ids []int64, action ResolveAction, payload ResolvePayload) (*domain.BatchResult, error) {
	result := &domain.BatchResult{
		FailedIDs: []int64{},
		Errors:    make(map[int64]string),
	}

	for _, id := range ids {
		if err := s.Resolve(ctx, id, action, payload); err != nil {
			result.FailedIDs = append(result.FailedIDs, id)
			result.Errors[id] = err.Error()
			continue
		}
		result.ResolvedCount++
	}

	return result, nil
}

// syncDetected recomputes candidates from the raw stage records, folds them
// into the stored open records so that later actuals close the gap, and
// inserts a record for every new shortfall. The overview therefore always
// reflects the latest actuals.
func (s *VarianceService) syncDetected(ctx context.Context, sku string) error {
	var (
		orders     []domain.OrderLine
		deliveries []domain.FactoryDelivery
		shipments  []domain.ShipmentLine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.supply.ListOrderLines(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		deliveries, err = s.supply.ListDeliveries(gctx, sku)
		return err
	})
	g.Go(func() (err error) {
		shipments, err = s.supply.ListShipmentLines(gctx, sku)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	detected := variance.Detect(orders, deliveries, shipments)

	stored, err := s.repo.List(ctx, domain.VarianceFilter{SKU: sku})
	if err != nil {
		return err
	}
	type sourceKey struct {
		sourceType domain.VarianceSource
		sourceID   int64
	}
	open := make(map[sourceKey]domain.VarianceRecord, len(stored))
	for _, rec := range stored {
		if rec.Status.Terminal() {
			continue
		}
		open[sourceKey{rec.SourceType, rec.SourceID}] = rec
	}

	now := s.now()
	var fresh []domain.VarianceRecord
	for _, cand := range detected {
		if rec, ok := open[sourceKey{cand.SourceType, cand.SourceID}]; ok {
			variance.Reconcile(&rec, cand.FulfilledQty, now)
			if err := s.repo.Update(ctx, &rec); err != nil {
				return err
			}
			continue
		}
		if cand.PendingQty > 0 {
			fresh = append(fresh, cand)
		}
	}
	return s.repo.UpsertDetected(ctx, fresh)
}
