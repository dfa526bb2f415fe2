package services

import (
	"context"
	"io"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services shared by the service tests.

type MockSupplyRepository struct {
	mock.Mock
}

func (m *MockSupplyRepository) Create(ctx context.Context, supply *models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

func (m *MockSupplyRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supply, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.Supply, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) Update(ctx context.Context, supply *models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

func (m *MockSupplyRepository) UpdateThresholds(ctx context.Context, supply *models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

func (m *MockSupplyRepository) Discontinue(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSupplyRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Supply, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) AdvancedSearch(ctx context.Context, tenantID uuid.UUID, filter *models.SupplySearchFilter) ([]*models.Supply, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) ListBelowReorder(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.Supply, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyStats), args.Error(1)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) CreateWithStockDelta(ctx context.Context, movement *models.SupplyMovement, delta int) (int, error) {
	args := m.Called(ctx, movement, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockMovementRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyMovement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyMovement), args.Error(1)
}

func (m *MockMovementRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.MovementSearchFilter) ([]*models.SupplyMovement, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.SupplyMovement), args.Error(1)
}

func (m *MockMovementRepository) ListBySupply(ctx context.Context, tenantID, supplyID uuid.UUID, limit, offset int) ([]*models.SupplyMovement, error) {
	args := m.Called(ctx, tenantID, supplyID, limit, offset)
	return args.Get(0).([]*models.SupplyMovement), args.Error(1)
}

func (m *MockMovementRepository) DailyConsumption(ctx context.Context, tenantID, supplyID uuid.UUID, since time.Time) ([]models.DailyUsage, error) {
	args := m.Called(ctx, tenantID, supplyID, since)
	return args.Get(0).([]models.DailyUsage), args.Error(1)
}

func (m *MockMovementRepository) TotalConsumedBetween(ctx context.Context, tenantID, supplyID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, tenantID, supplyID, from, to)
	return args.Int(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadReport(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteReport(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *models.SupplyAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyAlert, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyAlert), args.Error(1)
}

func (m *MockAlertRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.SupplyAlert), args.Error(1)
}

func (m *MockAlertRepository) FindOpenBySupplyAndType(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) (*models.SupplyAlert, error) {
	args := m.Called(ctx, tenantID, supplyID, alertType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyAlert), args.Error(1)
}

func (m *MockAlertRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockAlertRepository) Resolve(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertRepository) ResolveOpenForSupply(ctx context.Context, tenantID, supplyID uuid.UUID, alertType string) error {
	args := m.Called(ctx, tenantID, supplyID, alertType)
	return args.Error(0)
}

func (m *MockAlertRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertRepository) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.SupplyOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyOrder), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.SupplyOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.SupplyOrder), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *models.SupplyOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateItemReceived(ctx context.Context, tenantID, orderID, itemID uuid.UUID, receivedQuantity int) error {
	args := m.Called(ctx, tenantID, orderID, itemID, receivedQuantity)
	return args.Error(0)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.SupplyOrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*models.SupplyOrderItem), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSupply(ctx context.Context, tenantID, supplyID uuid.UUID) (*models.Supply, error) {
	args := m.Called(ctx, tenantID, supplyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supply), args.Error(1)
}

func (m *MockCacheService) SetSupply(ctx context.Context, tenantID uuid.UUID, supply *models.Supply, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, supply, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSupply(ctx context.Context, tenantID, supplyID uuid.UUID) error {
	args := m.Called(ctx, tenantID, supplyID)
	return args.Error(0)
}

func (m *MockCacheService) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyStats), args.Error(1)
}

func (m *MockCacheService) SetStats(ctx context.Context, tenantID uuid.UUID, stats *models.SupplyStats, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteStats(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetRefreshToken(ctx context.Context, tokenHash string, userID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenHash, userID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetRefreshToken(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Close() error {
	args := m.Called()
	return args.Error(0)
}
