package services

import (
	"context"
	"testing"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StockServiceTestSuite struct {
	suite.Suite
	supplyRepo   *MockSupplyRepository
	movementRepo *MockMovementRepository
	cacheService *MockCacheService
	service      StockService

	ctx      context.Context
	tenantID uuid.UUID
	supplyID uuid.UUID
	userID   uuid.UUID
}

func (s *StockServiceTestSuite) SetupTest() {
	s.supplyRepo = new(MockSupplyRepository)
	s.movementRepo = new(MockMovementRepository)
	s.cacheService = new(MockCacheService)
	s.service = NewStockService(s.supplyRepo, s.movementRepo, s.cacheService)

	s.ctx = context.Background()
	s.tenantID = uuid.New()
	s.supplyID = uuid.New()
	s.userID = uuid.New()
}

func (s *StockServiceTestSuite) gloves(stock int) *models.Supply {
	return &models.Supply{
		ID:           s.supplyID,
		TenantID:     s.tenantID,
		SKU:          "CON-GLV-M",
		Name:         "Nitrile gloves M",
		CurrentStock: stock,
		MinStock:     10,
		MaxStock:     500,
		ReorderPoint: 50,
		Status:       models.SupplyStatusActive,
	}
}

func (s *StockServiceTestSuite) expectInvalidation() {
	s.cacheService.On("DeleteSupply", s.ctx, s.tenantID, s.supplyID).Return(nil)
	s.cacheService.On("DeleteStats", s.ctx, s.tenantID).Return(nil)
}

func (s *StockServiceTestSuite) TestConsume_Success() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), -5).Return(20, nil)
	s.expectInvalidation()

	movement, err := s.service.Consume(s.ctx, s.tenantID, s.supplyID, s.userID, &ConsumeRequest{Quantity: 5})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MovementOut, movement.Type)
	assert.Equal(s.T(), -5, movement.Quantity)
	assert.Equal(s.T(), s.userID, movement.PerformedBy)
	s.supplyRepo.AssertExpectations(s.T())
	s.movementRepo.AssertExpectations(s.T())
	s.cacheService.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestConsume_InsufficientStock() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(3), nil)

	movement, err := s.service.Consume(s.ctx, s.tenantID, s.supplyID, s.userID, &ConsumeRequest{Quantity: 5})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrInsufficientStock)
	s.movementRepo.AssertNotCalled(s.T(), "CreateWithStockDelta")
}

func (s *StockServiceTestSuite) TestConsume_GuardCatchesConcurrentDrain() {
	// The read sees enough stock but a concurrent consume drains it before
	// the guarded update lands.
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), -20).Return(0, pgx.ErrNoRows)

	movement, err := s.service.Consume(s.ctx, s.tenantID, s.supplyID, s.userID, &ConsumeRequest{Quantity: 20})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrInsufficientStock)
	s.cacheService.AssertNotCalled(s.T(), "DeleteSupply")
}

func (s *StockServiceTestSuite) TestConsume_ZeroQuantity() {
	movement, err := s.service.Consume(s.ctx, s.tenantID, s.supplyID, s.userID, &ConsumeRequest{Quantity: 0})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrValidation)
	s.supplyRepo.AssertNotCalled(s.T(), "GetByID")
}

func (s *StockServiceTestSuite) TestConsume_DiscontinuedSupply() {
	supply := s.gloves(25)
	supply.Status = models.SupplyStatusDiscontinued
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(supply, nil)

	movement, err := s.service.Consume(s.ctx, s.tenantID, s.supplyID, s.userID, &ConsumeRequest{Quantity: 1})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *StockServiceTestSuite) TestReceive_Success() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), 100).Return(125, nil)
	s.expectInvalidation()

	batch := "LOT-2026-113"
	movement, err := s.service.Receive(s.ctx, s.tenantID, s.supplyID, s.userID, &ReceiveRequest{
		Quantity:    100,
		BatchNumber: &batch,
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MovementIn, movement.Type)
	assert.Equal(s.T(), 100, movement.Quantity)
	assert.Equal(s.T(), &batch, movement.BatchNumber)
}

func (s *StockServiceTestSuite) TestTransfer_Success() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), 0).Return(25, nil)
	s.expectInvalidation()

	movement, err := s.service.Transfer(s.ctx, s.tenantID, s.supplyID, s.userID, &TransferRequest{
		Quantity:       10,
		FromDepartment: "pharmacy",
		ToDepartment:   "surgery",
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MovementTransfer, movement.Type)
	// Transfers move stock between departments, not out of the tenant, so
	// the supply-level quantity stays zero and the moved amount is kept on
	// its own field.
	assert.Equal(s.T(), 0, movement.Quantity)
	if assert.NotNil(s.T(), movement.TransferQuantity) {
		assert.Equal(s.T(), 10, *movement.TransferQuantity)
	}
}

func (s *StockServiceTestSuite) TestTransfer_SameDepartment() {
	movement, err := s.service.Transfer(s.ctx, s.tenantID, s.supplyID, s.userID, &TransferRequest{
		Quantity:       10,
		FromDepartment: "pharmacy",
		ToDepartment:   "pharmacy",
	})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *StockServiceTestSuite) TestAdjust_NewQuantity() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), 5).Return(30, nil)
	s.expectInvalidation()

	newQuantity := 30
	movement, err := s.service.Adjust(s.ctx, s.tenantID, s.supplyID, s.userID, &AdjustRequest{
		NewQuantity: &newQuantity,
		Reason:      "cycle count",
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MovementAdjustment, movement.Type)
	assert.Equal(s.T(), 5, movement.Quantity)
}

func (s *StockServiceTestSuite) TestAdjust_WasteReducesStock() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("CreateWithStockDelta", s.ctx, mock.AnythingOfType("*models.SupplyMovement"), -4).Return(21, nil)
	s.expectInvalidation()

	delta := -4
	movement, err := s.service.Adjust(s.ctx, s.tenantID, s.supplyID, s.userID, &AdjustRequest{
		Delta:  &delta,
		Reason: "expired batch",
		Waste:  true,
	})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.MovementWaste, movement.Type)
	assert.Equal(s.T(), -4, movement.Quantity)
}

func (s *StockServiceTestSuite) TestAdjust_WasteCannotIncreaseStock() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)

	delta := 4
	movement, err := s.service.Adjust(s.ctx, s.tenantID, s.supplyID, s.userID, &AdjustRequest{
		Delta:  &delta,
		Reason: "mislabeled",
		Waste:  true,
	})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *StockServiceTestSuite) TestAdjust_ReasonRequired() {
	delta := -1
	movement, err := s.service.Adjust(s.ctx, s.tenantID, s.supplyID, s.userID, &AdjustRequest{Delta: &delta})

	assert.Nil(s.T(), movement)
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *StockServiceTestSuite) TestListSupplyMovements_Success() {
	movements := []*models.SupplyMovement{
		{ID: uuid.New(), SupplyID: s.supplyID, Type: models.MovementOut, Quantity: -5},
		{ID: uuid.New(), SupplyID: s.supplyID, Type: models.MovementIn, Quantity: 100},
	}
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(s.gloves(25), nil)
	s.movementRepo.On("ListBySupply", s.ctx, s.tenantID, s.supplyID, 50, 0).Return(movements, nil)

	got, err := s.service.ListSupplyMovements(s.ctx, s.tenantID, s.supplyID, 50, 0)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), movements, got)
}

func (s *StockServiceTestSuite) TestListSupplyMovements_SupplyNotFound() {
	s.supplyRepo.On("GetByID", s.ctx, s.tenantID, s.supplyID).Return(nil, pgx.ErrNoRows)

	got, err := s.service.ListSupplyMovements(s.ctx, s.tenantID, s.supplyID, 50, 0)

	assert.Nil(s.T(), got)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	s.movementRepo.AssertNotCalled(s.T(), "ListBySupply")
}

func TestStockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}
