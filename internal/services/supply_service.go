package services

import (
	"context"
	"fmt"
	"time"

	"dataclinica/internal/caching"
	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const supplyCacheTTL = 5 * time.Minute

type SupplyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, supply *models.Supply) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supply, error)
	Update(ctx context.Context, tenantID uuid.UUID, supply *models.Supply) error
	Discontinue(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Supply, error)
	AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.SupplySearchFilter) ([]*models.Supply, error)
	GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error)
	RefreshStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error)
}

type supplyService struct {
	supplyRepo   repositories.SupplyRepository
	cacheService caching.CacheService
}

func NewSupplyService(supplyRepo repositories.SupplyRepository, cacheService caching.CacheService) SupplyService {
	return &supplyService{
		supplyRepo:   supplyRepo,
		cacheService: cacheService,
	}
}

func (s *supplyService) Create(ctx context.Context, tenantID uuid.UUID, supply *models.Supply) error {
	supply.TenantID = tenantID
	supply.ID = uuid.New()
	if supply.Status == "" {
		supply.Status = models.SupplyStatusActive
	}
	if supply.Criticality == "" {
		supply.Criticality = models.CriticalityMedium
	}

	if err := supply.ValidateThresholds(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}

	existing, err := s.supplyRepo.GetBySKU(ctx, tenantID, supply.SKU)
	if err != nil && err != pgx.ErrNoRows {
		return err
	}
	if existing != nil {
		return fmt.Errorf("sku %s already exists: %w", supply.SKU, ErrValidation)
	}

	if err := s.supplyRepo.Create(ctx, supply); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteStats(ctx, tenantID); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("tenant_id", tenantID.String()).Msg("failed to invalidate stats cache")
	}
	return nil
}

func (s *supplyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supply, error) {
	cached, cacheErr := s.cacheService.GetSupply(ctx, tenantID, id)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Str("supply_id", id.String()).Msg("supply cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	supply, err := s.supplyRepo.GetByID(ctx, tenantID, id)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("supply %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetSupply(ctx, tenantID, supply, supplyCacheTTL); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("supply_id", id.String()).Msg("supply cache write failed")
	}
	return supply, nil
}

func (s *supplyService) Update(ctx context.Context, tenantID uuid.UUID, supply *models.Supply) error {
	supply.TenantID = tenantID

	current, err := s.supplyRepo.GetByID(ctx, tenantID, supply.ID)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("supply %s: %w", supply.ID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	// Stock and thresholds have their own paths; keep them out of the
	// general update so a stale read cannot clobber a concurrent movement.
	supply.CurrentStock = current.CurrentStock
	supply.MinStock = current.MinStock
	supply.MaxStock = current.MaxStock
	supply.ReorderPoint = current.ReorderPoint
	supply.ReorderQuantity = current.ReorderQuantity

	if err := supply.ValidateThresholds(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}

	if err := s.supplyRepo.Update(ctx, supply); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, supply.ID)
	return nil
}

func (s *supplyService) Discontinue(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.supplyRepo.GetByID(ctx, tenantID, id); err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("supply %s: %w", id, ErrNotFound)
		}
		return err
	}
	if err := s.supplyRepo.Discontinue(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, id)
	return nil
}

func (s *supplyService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Supply, error) {
	return s.supplyRepo.List(ctx, tenantID, limit, offset)
}

func (s *supplyService) AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.SupplySearchFilter) ([]*models.Supply, error) {
	return s.supplyRepo.AdvancedSearch(ctx, tenantID, filter)
}

func (s *supplyService) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	cached, cacheErr := s.cacheService.GetStats(ctx, tenantID)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Str("tenant_id", tenantID.String()).Msg("stats cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	return s.RefreshStats(ctx, tenantID)
}

// RefreshStats recomputes the aggregate and repopulates the cache. The
// stats refresh job calls this directly so reads stay warm.
func (s *supplyService) RefreshStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	stats, err := s.supplyRepo.GetStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cacheErr := s.cacheService.SetStats(ctx, tenantID, stats, supplyCacheTTL); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("tenant_id", tenantID.String()).Msg("stats cache write failed")
	}
	return stats, nil
}

func (s *supplyService) invalidate(ctx context.Context, tenantID, supplyID uuid.UUID) {
	if cacheErr := s.cacheService.DeleteSupply(ctx, tenantID, supplyID); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("supply_id", supplyID.String()).Msg("failed to invalidate supply cache")
	}
	if cacheErr := s.cacheService.DeleteStats(ctx, tenantID); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("tenant_id", tenantID.String()).Msg("failed to invalidate stats cache")
	}
}
