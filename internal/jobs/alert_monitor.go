package jobs

import (
	"context"

	"dataclinica/internal/repositories"
	"dataclinica/internal/services"

	"github.com/rs/zerolog/log"
)

// AlertMonitor sweeps every active tenant's supplies and reconciles their
// alerts against the current stock and expiry state.
type AlertMonitor struct {
	tenantRepo   repositories.TenantRepository
	supplyRepo   repositories.SupplyRepository
	alertService services.AlertService
}

func NewAlertMonitor(tenantRepo repositories.TenantRepository, supplyRepo repositories.SupplyRepository, alertService services.AlertService) *AlertMonitor {
	return &AlertMonitor{
		tenantRepo:   tenantRepo,
		supplyRepo:   supplyRepo,
		alertService: alertService,
	}
}

// Run evaluates all supplies of all active tenants. A failure on one
// tenant or supply is logged and the sweep continues; the job must never
// abort half way because a single row misbehaves.
func (m *AlertMonitor) Run(ctx context.Context) error {
	tenants, err := m.tenantRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alert monitor: failed to list tenants")
		return err
	}

	evaluated, failed := 0, 0
	for _, tenant := range tenants {
		supplies, err := m.supplyRepo.ListActive(ctx, tenant.ID)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenant.ID.String()).Msg("alert monitor: failed to list supplies")
			failed++
			continue
		}
		for _, supply := range supplies {
			if err := m.alertService.EvaluateSupply(ctx, supply); err != nil {
				log.Error().Err(err).
					Str("tenant_id", tenant.ID.String()).
					Str("supply_id", supply.ID.String()).
					Msg("alert monitor: evaluation failed")
				failed++
				continue
			}
			evaluated++
		}
	}

	log.Info().Int("evaluated", evaluated).Int("failed", failed).Msg("alert monitor sweep complete")
	return nil
}
