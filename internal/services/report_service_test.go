package services

import (
	"context"
	"testing"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportServiceTestSuite struct {
	suite.Suite
	tenantRepo   *MockTenantRepository
	supplyRepo   *MockSupplyRepository
	movementRepo *MockMovementRepository
	minioService *MockMinioService
	service      ReportService

	ctx         context.Context
	tenantID    uuid.UUID
	supplyID    uuid.UUID
	periodStart time.Time
	periodEnd   time.Time
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.tenantRepo = new(MockTenantRepository)
	s.supplyRepo = new(MockSupplyRepository)
	s.movementRepo = new(MockMovementRepository)
	s.minioService = new(MockMinioService)
	s.service = NewReportService(s.tenantRepo, s.supplyRepo, s.movementRepo, s.minioService, "reports")

	s.ctx = context.Background()
	s.tenantID = uuid.New()
	s.supplyID = uuid.New()
	s.periodStart = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s.periodEnd = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (s *ReportServiceTestSuite) clinic() *models.Tenant {
	return &models.Tenant{
		ID:        s.tenantID,
		Name:      "Clinica San Rafael",
		Subdomain: "san-rafael",
		Status:    models.TenantStatusActive,
	}
}

func (s *ReportServiceTestSuite) expectInventory(supplies []*models.Supply) {
	s.tenantRepo.On("GetByID", s.ctx, s.tenantID).Return(s.clinic(), nil)
	s.supplyRepo.On("ListActive", s.ctx, s.tenantID).Return(supplies, nil)
	s.supplyRepo.On("GetStats", s.ctx, s.tenantID).Return(&models.SupplyStats{TotalSupplies: len(supplies)}, nil)
}

func (s *ReportServiceTestSuite) TestGenerateUsageReport_Success() {
	supply := &models.Supply{
		ID:           s.supplyID,
		TenantID:     s.tenantID,
		SKU:          "MED-PARA-500",
		Name:         "Paracetamol 500mg",
		Unit:         "box",
		CurrentStock: 25,
		MinStock:     10,
		ReorderPoint: 40,
		Status:       models.SupplyStatusActive,
	}
	s.expectInventory([]*models.Supply{supply})
	// The window is closed on both ends so a historical report never picks
	// up consumption recorded after the period.
	s.movementRepo.On("TotalConsumedBetween", s.ctx, s.tenantID, s.supplyID, s.periodStart, s.periodEnd).Return(600, nil)
	s.minioService.On("EnsureBucketExists", s.ctx, "reports").Return(nil)
	s.minioService.On("UploadReport", s.ctx, "reports", mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("int64")).Return(nil)
	s.minioService.On("GetPresignedURL", s.ctx, "reports", mock.AnythingOfType("string"), 24*time.Hour).Return("https://minio.local/reports/x.pdf", nil)

	result, err := s.service.GenerateUsageReport(s.ctx, s.tenantID, s.periodStart, s.periodEnd)

	assert.NoError(s.T(), err)
	assert.Contains(s.T(), result.ObjectName, s.tenantID.String())
	assert.Equal(s.T(), "https://minio.local/reports/x.pdf", result.DownloadURL)
	s.movementRepo.AssertExpectations(s.T())
	s.minioService.AssertExpectations(s.T())
}

func (s *ReportServiceTestSuite) TestGenerateUsageReport_NoConsumptionInPeriod() {
	supply := &models.Supply{ID: s.supplyID, TenantID: s.tenantID, Status: models.SupplyStatusActive}
	s.expectInventory([]*models.Supply{supply})
	s.movementRepo.On("TotalConsumedBetween", s.ctx, s.tenantID, s.supplyID, s.periodStart, s.periodEnd).Return(0, nil)

	result, err := s.service.GenerateUsageReport(s.ctx, s.tenantID, s.periodStart, s.periodEnd)

	assert.Nil(s.T(), result)
	assert.ErrorIs(s.T(), err, ErrInsufficientHistory)
	s.minioService.AssertNotCalled(s.T(), "UploadReport")
}

func (s *ReportServiceTestSuite) TestGenerateUsageReport_InvertedPeriod() {
	result, err := s.service.GenerateUsageReport(s.ctx, s.tenantID, s.periodEnd, s.periodStart)

	assert.Nil(s.T(), result)
	assert.ErrorIs(s.T(), err, ErrValidation)
	s.tenantRepo.AssertNotCalled(s.T(), "GetByID")
}

func (s *ReportServiceTestSuite) TestGenerateUsageReport_TenantNotFound() {
	s.tenantRepo.On("GetByID", s.ctx, s.tenantID).Return(nil, pgx.ErrNoRows)

	result, err := s.service.GenerateUsageReport(s.ctx, s.tenantID, s.periodStart, s.periodEnd)

	assert.Nil(s.T(), result)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
