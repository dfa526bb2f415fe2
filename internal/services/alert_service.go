package services

import (
	"context"
	"fmt"
	"time"

	"dataclinica/internal/models"
	"dataclinica/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const expiryWarningWindow = 30 * 24 * time.Hour

type AlertService interface {
	List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	Resolve(ctx context.Context, tenantID, id uuid.UUID) error
	Dismiss(ctx context.Context, tenantID, id uuid.UUID) error
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error)
	EvaluateSupply(ctx context.Context, supply *models.Supply) error
}

type alertService struct {
	alertRepo repositories.AlertRepository
	now       func() time.Time
}

func NewAlertService(alertRepo repositories.AlertRepository) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		now:       time.Now,
	}
}

func (s *alertService) List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error) {
	return s.alertRepo.List(ctx, tenantID, filter)
}

func (s *alertService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	alert, err := s.alertRepo.GetByID(ctx, tenantID, id)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if alert.Status != models.AlertStatusUnread {
		return fmt.Errorf("alert %s is %s, only unread alerts can be marked read: %w", id, alert.Status, ErrInvalidTransition)
	}
	return s.alertRepo.UpdateStatus(ctx, tenantID, id, models.AlertStatusRead)
}

func (s *alertService) Resolve(ctx context.Context, tenantID, id uuid.UUID) error {
	alert, err := s.alertRepo.GetByID(ctx, tenantID, id)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if alert.Status == models.AlertStatusResolved {
		return fmt.Errorf("alert %s is already resolved: %w", id, ErrInvalidTransition)
	}
	return s.alertRepo.Resolve(ctx, tenantID, id)
}

func (s *alertService) Dismiss(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.alertRepo.GetByID(ctx, tenantID, id); err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("alert %s: %w", id, ErrNotFound)
		}
		return err
	}
	return s.alertRepo.Delete(ctx, tenantID, id)
}

func (s *alertService) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.alertRepo.CountUnread(ctx, tenantID)
}

// alertCondition is one threshold check the monitor evaluates per supply.
type alertCondition struct {
	alertType string
	severity  string
	active    bool
	message   string
}

func (s *alertService) conditions(supply *models.Supply) []alertCondition {
	now := s.now()
	stockStatus := supply.StockStatus()

	expired := supply.ExpiryDate != nil && supply.ExpiryDate.Before(now)
	expiring := supply.ExpiryDate != nil && !expired && supply.ExpiryDate.Before(now.Add(expiryWarningWindow))

	return []alertCondition{
		{
			alertType: models.AlertOutOfStock,
			severity:  models.SeverityCritical,
			active:    stockStatus == models.StockStatusOutOfStock,
			message:   fmt.Sprintf("%s (%s) is out of stock", supply.Name, supply.SKU),
		},
		{
			alertType: models.AlertLowStock,
			severity:  lowStockSeverity(stockStatus),
			active:    stockStatus == models.StockStatusLow || stockStatus == models.StockStatusCritical,
			message:   fmt.Sprintf("%s (%s) is at %d units, reorder point is %d", supply.Name, supply.SKU, supply.CurrentStock, supply.ReorderPoint),
		},
		{
			alertType: models.AlertOverstock,
			severity:  models.SeverityInfo,
			active:    stockStatus == models.StockStatusOverstocked,
			message:   fmt.Sprintf("%s (%s) is at %d units, above 150%% of max stock %d", supply.Name, supply.SKU, supply.CurrentStock, supply.MaxStock),
		},
		{
			alertType: models.AlertExpired,
			severity:  models.SeverityCritical,
			active:    expired,
			message:   fmt.Sprintf("%s (%s) batch expired on %s", supply.Name, supply.SKU, safeDate(supply.ExpiryDate)),
		},
		{
			alertType: models.AlertExpiring,
			severity:  models.SeverityWarning,
			active:    expiring,
			message:   fmt.Sprintf("%s (%s) batch expires on %s", supply.Name, supply.SKU, safeDate(supply.ExpiryDate)),
		},
		{
			alertType: models.AlertRecall,
			severity:  models.SeverityCritical,
			active:    supply.Status == models.SupplyStatusRecalled,
			message:   fmt.Sprintf("%s (%s) has been recalled", supply.Name, supply.SKU),
		},
	}
}

func lowStockSeverity(stockStatus string) string {
	if stockStatus == models.StockStatusCritical {
		return models.SeverityCritical
	}
	return models.SeverityWarning
}

func safeDate(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

// EvaluateSupply reconciles alerts against the supply's current state:
// opens a new alert when a condition holds and no open alert of that type
// exists, and resolves open alerts whose condition has cleared.
func (s *alertService) EvaluateSupply(ctx context.Context, supply *models.Supply) error {
	for _, cond := range s.conditions(supply) {
		open, err := s.alertRepo.FindOpenBySupplyAndType(ctx, supply.TenantID, supply.ID, cond.alertType)
		if err != nil {
			return err
		}

		if cond.active && open == nil {
			alert := &models.SupplyAlert{
				TenantID: supply.TenantID,
				SupplyID: supply.ID,
				Type:     cond.alertType,
				Severity: cond.severity,
				Message:  cond.message,
				Status:   models.AlertStatusUnread,
			}
			if err := s.alertRepo.Create(ctx, alert); err != nil {
				return err
			}
		}

		if !cond.active && open != nil {
			if err := s.alertRepo.ResolveOpenForSupply(ctx, supply.TenantID, supply.ID, cond.alertType); err != nil {
				return err
			}
		}
	}
	return nil
}
