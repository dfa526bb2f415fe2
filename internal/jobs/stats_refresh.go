package jobs

import (
	"context"

	"dataclinica/internal/repositories"
	"dataclinica/internal/services"

	"github.com/rs/zerolog/log"
)

// StatsRefresher recomputes each tenant's inventory aggregate so dashboard
// reads hit a warm cache.
type StatsRefresher struct {
	tenantRepo    repositories.TenantRepository
	supplyService services.SupplyService
}

func NewStatsRefresher(tenantRepo repositories.TenantRepository, supplyService services.SupplyService) *StatsRefresher {
	return &StatsRefresher{
		tenantRepo:    tenantRepo,
		supplyService: supplyService,
	}
}

func (r *StatsRefresher) Run(ctx context.Context) error {
	tenants, err := r.tenantRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stats refresh: failed to list tenants")
		return err
	}

	for _, tenant := range tenants {
		if _, err := r.supplyService.RefreshStats(ctx, tenant.ID); err != nil {
			log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("stats refresh failed")
		}
	}
	return nil
}
