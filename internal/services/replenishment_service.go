package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reasonInsufficientHistory = "insufficient_history"

type ReplenishmentService interface {
	CalculateReorderPoint(ctx context.Context, tenantID, supplyID uuid.UUID, leadTimeDays, safetyStock *int) (*models.ReorderPointResult, error)
	PredictStockout(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.StockoutPrediction, error)
	UsageAnalysis(ctx context.Context, tenantID, supplyID uuid.UUID, windowDays int) (*models.UsageAnalysis, error)
}

type replenishmentService struct {
	supplyRepo   repositories.SupplyRepository
	movementRepo repositories.MovementRepository

	windowDays      int
	minReorderPoint int
	now             func() time.Time
}

func NewReplenishmentService(supplyRepo repositories.SupplyRepository, movementRepo repositories.MovementRepository, windowDays, minReorderPoint int) ReplenishmentService {
	if windowDays <= 0 {
		windowDays = 30
	}
	if minReorderPoint < 1 {
		minReorderPoint = 1
	}
	return &replenishmentService{
		supplyRepo:      supplyRepo,
		movementRepo:    movementRepo,
		windowDays:      windowDays,
		minReorderPoint: minReorderPoint,
		now:             time.Now,
	}
}

// avgDailyUsage divides total out+waste consumption by the full window
// length, not by the number of days that had movements.
func (s *replenishmentService) avgDailyUsage(ctx context.Context, tenantID, supplyID uuid.UUID) (float64, error) {
	now := s.now()
	total, err := s.movementRepo.TotalConsumedBetween(ctx, tenantID, supplyID, now.AddDate(0, 0, -s.windowDays), now)
	if err != nil {
		return 0, err
	}
	return float64(total) / float64(s.windowDays), nil
}

func (s *replenishmentService) getSupply(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.Supply, error) {
	supply, err := s.supplyRepo.GetByID(ctx, tenantID, supplyID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("supply %s: %w", supplyID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return supply, nil
}

func (s *replenishmentService) CalculateReorderPoint(ctx context.Context, tenantID, supplyID uuid.UUID, leadTimeDays, safetyStock *int) (*models.ReorderPointResult, error) {
	supply, err := s.getSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	leadTime := supply.LeadTimeDays
	if leadTimeDays != nil {
		leadTime = *leadTimeDays
	}
	safety := supply.SafetyStock
	if safetyStock != nil {
		safety = *safetyStock
	}
	if leadTime < 0 {
		return nil, fmt.Errorf("lead_time_days cannot be negative: %w", ErrValidation)
	}
	if safety < 0 {
		return nil, fmt.Errorf("safety_stock cannot be negative: %w", ErrValidation)
	}

	avgUsage, err := s.avgDailyUsage(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	var reorderPoint int
	if avgUsage == 0 {
		// No history: a computed point of 0 would mean "never reorder",
		// so fall back to a floor instead.
		reorderPoint = supply.MinStock
		if reorderPoint < s.minReorderPoint {
			reorderPoint = s.minReorderPoint
		}
	} else {
		reorderPoint = int(math.Ceil(avgUsage*float64(leadTime))) + safety
	}

	// Clamp into the threshold chain so the stored invariant survives.
	if reorderPoint < supply.MinStock {
		reorderPoint = supply.MinStock
	}
	if supply.MaxStock > 0 && reorderPoint > supply.MaxStock {
		reorderPoint = supply.MaxStock
	}

	reorderQuantity := supply.MaxStock - supply.CurrentStock
	if byPoint := reorderPoint - supply.CurrentStock; byPoint > reorderQuantity {
		reorderQuantity = byPoint
	}
	if reorderQuantity < 0 {
		reorderQuantity = 0
	}

	// Persist the recalculated parameters so alerts and stock status use
	// the same thresholds the caller just saw.
	supply.ReorderPoint = reorderPoint
	supply.ReorderQuantity = reorderQuantity
	supply.LeadTimeDays = leadTime
	supply.SafetyStock = safety
	if err := s.supplyRepo.UpdateThresholds(ctx, supply); err != nil {
		return nil, err
	}

	return &models.ReorderPointResult{
		SupplyID:        supply.ID,
		ReorderPoint:    reorderPoint,
		ReorderQuantity: reorderQuantity,
		AvgDailyUsage:   avgUsage,
		LeadTimeDays:    leadTime,
		SafetyStock:     safety,
	}, nil
}

func (s *replenishmentService) PredictStockout(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.StockoutPrediction, error) {
	supply, err := s.getSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	avgUsage, err := s.avgDailyUsage(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	prediction := &models.StockoutPrediction{
		SupplyID:      supply.ID,
		AvgDailyUsage: avgUsage,
	}

	if avgUsage == 0 {
		// Without history there is no prediction at all. A nil date is
		// "unknown", never "never runs out".
		reason := reasonInsufficientHistory
		prediction.Reason = &reason
		prediction.Recommendation = s.recommend(supply, nil)
		return prediction, nil
	}

	days := float64(supply.CurrentStock) / avgUsage
	date := s.now().Add(time.Duration(days * float64(24*time.Hour)))
	prediction.DaysUntilStockout = &days
	prediction.PredictedStockoutDate = &date
	prediction.Recommendation = s.recommend(supply, &days)
	return prediction, nil
}

// recommend applies the urgency rules in order; boundaries are inclusive,
// so days exactly equal to the lead time still means reorder now.
func (s *replenishmentService) recommend(supply *models.Supply, daysUntilStockout *float64) string {
	if daysUntilStockout != nil {
		leadTime := float64(supply.LeadTimeDays)
		switch {
		case *daysUntilStockout <= leadTime:
			return models.RecommendReorderNow
		case *daysUntilStockout <= leadTime*2:
			return models.RecommendReorderSoon
		}
	}
	if supply.MaxStock > 0 && supply.CurrentStock >= supply.MaxStock {
		return models.RecommendMonitor
	}
	return models.RecommendNoAction
}

func (s *replenishmentService) UsageAnalysis(ctx context.Context, tenantID, supplyID uuid.UUID, windowDays int) (*models.UsageAnalysis, error) {
	supply, err := s.getSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = s.windowDays
	}

	since := s.now().AddDate(0, 0, -windowDays)
	series, err := s.movementRepo.DailyConsumption(ctx, tenantID, supplyID, since)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, day := range series {
		total += day.Quantity
	}
	avgUsage := float64(total) / float64(windowDays)

	analysis := &models.UsageAnalysis{
		SupplyID:      supply.ID,
		WindowDays:    windowDays,
		TotalConsumed: total,
		AvgDailyUsage: avgUsage,
		Trend:         s.trend(series, since, windowDays),
		Series:        series,
		StockStatus:   supply.StockStatus(),
	}

	if supply.CurrentStock > 0 {
		analysis.TurnoverRate = float64(total) / float64(supply.CurrentStock)
	}
	if avgUsage > 0 {
		daysOfStock := float64(supply.CurrentStock) / avgUsage
		analysis.DaysOfStock = &daysOfStock
	}
	analysis.TrendPercentage = s.trendPercentage(series, since, windowDays)

	return analysis, nil
}

func (s *replenishmentService) splitHalves(series []models.DailyUsage, since time.Time, windowDays int) (int, int) {
	midpoint := since.AddDate(0, 0, windowDays/2)
	firstHalf, secondHalf := 0, 0
	for _, day := range series {
		if day.Date.Before(midpoint) {
			firstHalf += day.Quantity
		} else {
			secondHalf += day.Quantity
		}
	}
	return firstHalf, secondHalf
}

// trend compares consumption in the two window halves with a ±10% band.
func (s *replenishmentService) trend(series []models.DailyUsage, since time.Time, windowDays int) string {
	firstHalf, secondHalf := s.splitHalves(series, since, windowDays)
	if firstHalf == 0 {
		if secondHalf > 0 {
			return models.TrendRising
		}
		return models.TrendStable
	}
	change := (float64(secondHalf) - float64(firstHalf)) / float64(firstHalf)
	switch {
	case change > 0.10:
		return models.TrendRising
	case change < -0.10:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

func (s *replenishmentService) trendPercentage(series []models.DailyUsage, since time.Time, windowDays int) float64 {
	firstHalf, secondHalf := s.splitHalves(series, since, windowDays)
	if firstHalf == 0 {
		return 0
	}
	return (float64(secondHalf) - float64(firstHalf)) / float64(firstHalf) * 100
}
