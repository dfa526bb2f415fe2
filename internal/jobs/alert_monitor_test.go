package jobs

import (
	"context"
	"errors"
	"testing"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTenantRepository mocks the TenantRepository interface for testing
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

// MockSupplyRepository mocks the SupplyRepository interface for testing
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Supply), args.Error(1)
}

func (m *MockSupplyRepository) GetStats(ctx context.Context, tenantID uuid.UUID) (*models.SupplyStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplyStats), args.Error(1)
}

// MockAlertService mocks the AlertService interface for testing
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) List(ctx context.Context, tenantID uuid.UUID, filter *models.AlertSearchFilter) ([]*models.SupplyAlert, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*models.SupplyAlert), args.Error(1)
}

func (m *MockAlertService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertService) Resolve(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertService) Dismiss(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAlertService) CountUnread(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockAlertService) EvaluateSupply(ctx context.Context, supply *models.Supply) error {
	args := m.Called(ctx, supply)
	return args.Error(0)
}

type AlertMonitorTestSuite struct {
	suite.Suite
	tenantRepo   *MockTenantRepository
	supplyRepo   *MockSupplyRepository
	alertService *MockAlertService
	monitor      *AlertMonitor

	ctx context.Context
}

func (s *AlertMonitorTestSuite) SetupTest() {
	s.tenantRepo = new(MockTenantRepository)
	s.supplyRepo = new(MockSupplyRepository)
	s.alertService = new(MockAlertService)
	s.monitor = NewAlertMonitor(s.tenantRepo, s.supplyRepo, s.alertService)
	s.ctx = context.Background()
}

func (s *AlertMonitorTestSuite) TestRun_EvaluatesAllSupplies() {
	tenant := &models.Tenant{ID: uuid.New(), Status: models.TenantStatusActive}
	supplies := []*models.Supply{
		{ID: uuid.New(), TenantID: tenant.ID},
		{ID: uuid.New(), TenantID: tenant.ID},
	}

	s.tenantRepo.On("ListActive", s.ctx).Return([]*models.Tenant{tenant}, nil)
	s.supplyRepo.On("ListActive", s.ctx, tenant.ID).Return(supplies, nil)
	s.alertService.On("EvaluateSupply", s.ctx, supplies[0]).Return(nil)
	s.alertService.On("EvaluateSupply", s.ctx, supplies[1]).Return(nil)

	err := s.monitor.Run(s.ctx)

	assert.NoError(s.T(), err)
	s.alertService.AssertNumberOfCalls(s.T(), "EvaluateSupply", 2)
}

func (s *AlertMonitorTestSuite) TestRun_ContinuesAfterTenantFailure() {
	broken := &models.Tenant{ID: uuid.New(), Status: models.TenantStatusActive}
	healthy := &models.Tenant{ID: uuid.New(), Status: models.TenantStatusActive}
	supply := &models.Supply{ID: uuid.New(), TenantID: healthy.ID}

	s.tenantRepo.On("ListActive", s.ctx).Return([]*models.Tenant{broken, healthy}, nil)
	s.supplyRepo.On("ListActive", s.ctx, broken.ID).Return(nil, errors.New("connection reset"))
	s.supplyRepo.On("ListActive", s.ctx, healthy.ID).Return([]*models.Supply{supply}, nil)
	s.alertService.On("EvaluateSupply", s.ctx, supply).Return(nil)

	err := s.monitor.Run(s.ctx)

	// One tenant failing must not stop the sweep for the rest.
	assert.NoError(s.T(), err)
	s.alertService.AssertNumberOfCalls(s.T(), "EvaluateSupply", 1)
}

func (s *AlertMonitorTestSuite) TestRun_ContinuesAfterEvaluationFailure() {
	tenant := &models.Tenant{ID: uuid.New(), Status: models.TenantStatusActive}
	supplies := []*models.Supply{
		{ID: uuid.New(), TenantID: tenant.ID},
		{ID: uuid.New(), TenantID: tenant.ID},
	}

	s.tenantRepo.On("ListActive", s.ctx).Return([]*models.Tenant{tenant}, nil)
	s.supplyRepo.On("ListActive", s.ctx, tenant.ID).Return(supplies, nil)
	s.alertService.On("EvaluateSupply", s.ctx, supplies[0]).Return(errors.New("deadlock detected"))
	s.alertService.On("EvaluateSupply", s.ctx, supplies[1]).Return(nil)

	err := s.monitor.Run(s.ctx)

	assert.NoError(s.T(), err)
	s.alertService.AssertNumberOfCalls(s.T(), "EvaluateSupply", 2)
}

func (s *AlertMonitorTestSuite) TestRun_TenantListFailure() {
	s.tenantRepo.On("ListActive", s.ctx).Return(nil, errors.New("connection refused"))

	err := s.monitor.Run(s.ctx)

	assert.Error(s.T(), err)
	s.supplyRepo.AssertNotCalled(s.T(), "ListActive")
}

func TestAlertMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(AlertMonitorTestSuite))
}
