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
	"github.com/shopspring/decimal"
)

// ConsumeRequest records stock leaving inventory for patient care.
type ConsumeRequest struct {
	Quantity   int        `json:"quantity"`
	Department *string    `json:"department"`
	PatientID  *uuid.UUID `json:"patient_id"`
	Reason     *string    `json:"reason"`
}

// ReceiveRequest records stock arriving from a supplier.
type ReceiveRequest struct {
	Quantity    int              `json:"quantity"`
	BatchNumber *string          `json:"batch_number"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	Department  *string          `json:"department"`
}

// TransferRequest moves stock between departments; tenant-level stock is
// unchanged so the ledger entry carries a zero delta.
type TransferRequest struct {
	Quantity       int     `json:"quantity"`
	FromDepartment string  `json:"from_department"`
	ToDepartment   string  `json:"to_department"`
	Reason         *string `json:"reason"`
}

// AdjustRequest corrects the stock level after a physical count.
type AdjustRequest struct {
	NewQuantity *int    `json:"new_quantity"`
	Delta       *int    `json:"delta"`
	Reason      string  `json:"reason"`
	Waste       bool    `json:"waste"`
	Department  *string `json:"department"`
}

type StockService interface {
	Consume(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *ConsumeRequest) (*models.SupplyMovement, error)
	Receive(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *ReceiveRequest) (*models.SupplyMovement, error)
	Transfer(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *TransferRequest) (*models.SupplyMovement, error)
	Adjust(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *AdjustRequest) (*models.SupplyMovement, error)
	ListMovements(ctx context.Context, tenantID uuid.UUID, filter *models.MovementSearchFilter) ([]*models.SupplyMovement, error)
	ListSupplyMovements(ctx context.Context, tenantID, supplyID uuid.UUID, limit, offset int) ([]*models.SupplyMovement, error)
}

type stockService struct {
	supplyRepo   repositories.SupplyRepository
	movementRepo repositories.MovementRepository
	cacheService caching.CacheService
}

func NewStockService(supplyRepo repositories.SupplyRepository, movementRepo repositories.MovementRepository, cacheService caching.CacheService) StockService {
	return &stockService{
		supplyRepo:   supplyRepo,
		movementRepo: movementRepo,
		cacheService: cacheService,
	}
}

func (s *stockService) getActiveSupply(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.Supply, error) {
	supply, err := s.supplyRepo.GetByID(ctx, tenantID, supplyID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("supply %s: %w", supplyID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if supply.Status == models.SupplyStatusDiscontinued {
		return nil, fmt.Errorf("supply %s is discontinued: %w", supplyID, ErrValidation)
	}
	return supply, nil
}

// applyDelta writes the ledger entry and its stock effect in a single
// transaction; a failed insert rolls the stock change back. The guarded
// UPDATE inside is the oversell check; a no-row result means the delta
// would have gone negative.
func (s *stockService) applyDelta(ctx context.Context, movement *models.SupplyMovement, delta int) (*models.SupplyMovement, error) {
	if _, err := s.movementRepo.CreateWithStockDelta(ctx, movement, delta); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("supply %s: %w", movement.SupplyID, ErrInsufficientStock)
		}
		return nil, err
	}

	if cacheErr := s.cacheService.DeleteSupply(ctx, movement.TenantID, movement.SupplyID); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("supply_id", movement.SupplyID.String()).Msg("failed to invalidate supply cache")
	}
	if cacheErr := s.cacheService.DeleteStats(ctx, movement.TenantID); cacheErr != nil {
		log.Warn().Err(cacheErr).Str("tenant_id", movement.TenantID.String()).Msg("failed to invalidate stats cache")
	}
	return movement, nil
}

func (s *stockService) Consume(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *ConsumeRequest) (*models.SupplyMovement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	supply, err := s.getActiveSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}
	if supply.CurrentStock < req.Quantity {
		return nil, fmt.Errorf("supply %s has %d units, requested %d: %w", supplyID, supply.CurrentStock, req.Quantity, ErrInsufficientStock)
	}

	movement := &models.SupplyMovement{
		TenantID:       tenantID,
		SupplyID:       supplyID,
		Type:           models.MovementOut,
		Quantity:       -req.Quantity,
		FromDepartment: req.Department,
		PatientID:      req.PatientID,
		PerformedBy:    userID,
		Reason:         req.Reason,
	}
	return s.applyDelta(ctx, movement, -req.Quantity)
}

func (s *stockService) Receive(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *ReceiveRequest) (*models.SupplyMovement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	if _, err := s.getActiveSupply(ctx, tenantID, supplyID); err != nil {
		return nil, err
	}

	movement := &models.SupplyMovement{
		TenantID:     tenantID,
		SupplyID:     supplyID,
		Type:         models.MovementIn,
		Quantity:     req.Quantity,
		ToDepartment: req.Department,
		BatchNumber:  req.BatchNumber,
		ExpiryDate:   req.ExpiryDate,
		PerformedBy:  userID,
		UnitCost:     req.UnitCost,
	}
	return s.applyDelta(ctx, movement, req.Quantity)
}

func (s *stockService) Transfer(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *TransferRequest) (*models.SupplyMovement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	if req.FromDepartment == "" || req.ToDepartment == "" {
		return nil, fmt.Errorf("from_department and to_department are required: %w", ErrValidation)
	}
	if req.FromDepartment == req.ToDepartment {
		return nil, fmt.Errorf("cannot transfer to the same department: %w", ErrValidation)
	}
	supply, err := s.getActiveSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}
	if supply.CurrentStock < req.Quantity {
		return nil, fmt.Errorf("supply %s has %d units, requested %d: %w", supplyID, supply.CurrentStock, req.Quantity, ErrInsufficientStock)
	}

	moved := req.Quantity
	movement := &models.SupplyMovement{
		TenantID:         tenantID,
		SupplyID:         supplyID,
		Type:             models.MovementTransfer,
		Quantity:         0,
		TransferQuantity: &moved,
		FromDepartment:   &req.FromDepartment,
		ToDepartment:     &req.ToDepartment,
		PerformedBy:      userID,
		Reason:           req.Reason,
	}
	return s.applyDelta(ctx, movement, 0)
}

func (s *stockService) Adjust(ctx context.Context, tenantID, supplyID, userID uuid.UUID, req *AdjustRequest) (*models.SupplyMovement, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("reason is required for adjustments: %w", ErrValidation)
	}
	if req.NewQuantity == nil && req.Delta == nil {
		return nil, fmt.Errorf("either new_quantity or delta is required: %w", ErrValidation)
	}
	supply, err := s.getActiveSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	var delta int
	if req.NewQuantity != nil {
		if *req.NewQuantity < 0 {
			return nil, fmt.Errorf("new_quantity cannot be negative: %w", ErrValidation)
		}
		delta = *req.NewQuantity - supply.CurrentStock
	} else {
		delta = *req.Delta
	}
	if delta < 0 && supply.CurrentStock+delta < 0 {
		return nil, fmt.Errorf("supply %s has %d units, adjustment of %d refused: %w", supplyID, supply.CurrentStock, delta, ErrInsufficientStock)
	}

	movementType := models.MovementAdjustment
	if req.Waste {
		if delta >= 0 {
			return nil, fmt.Errorf("waste adjustments must reduce stock: %w", ErrValidation)
		}
		movementType = models.MovementWaste
	}

	reason := req.Reason
	movement := &models.SupplyMovement{
		TenantID:       tenantID,
		SupplyID:       supplyID,
		Type:           movementType,
		Quantity:       delta,
		FromDepartment: req.Department,
		PerformedBy:    userID,
		Reason:         &reason,
	}
	return s.applyDelta(ctx, movement, delta)
}

func (s *stockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter *models.MovementSearchFilter) ([]*models.SupplyMovement, error) {
	return s.movementRepo.List(ctx, tenantID, filter)
}

// ListSupplyMovements returns one supply's slice of the ledger. The supply
// may be discontinued; its history stays readable.
func (s *stockService) ListSupplyMovements(ctx context.Context, tenantID, supplyID uuid.UUID, limit, offset int) ([]*models.SupplyMovement, error) {
	if _, err := s.supplyRepo.GetByID(ctx, tenantID, supplyID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("supply %s: %w", supplyID, ErrNotFound)
		}
		return nil, err
	}
	return s.movementRepo.ListBySupply(ctx, tenantID, supplyID, limit, offset)
}
