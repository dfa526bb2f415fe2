package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"dataclinica/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SupplyRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      SupplyRepository
	tenantID1 uuid.UUID
	tenantID2 uuid.UUID
	supplyID  uuid.UUID
	context   context.Context
}

func (suite *SupplyRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewSupplyRepo(mock)
	suite.tenantID1 = uuid.New()
	suite.tenantID2 = uuid.New()
	suite.supplyID = uuid.New()
	suite.context = context.Background()
}

func (suite *SupplyRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestSupplyRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SupplyRepoTestSuite))
}

func supplyRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "sku", "barcode", "name", "category", "subcategory",
		"brand", "manufacturer", "unit", "unit_cost", "current_stock", "min_stock",
		"max_stock", "reorder_point", "reorder_quantity", "lead_time_days",
		"safety_stock", "department", "location", "batch_number", "expiry_date",
		"sterile", "controlled", "requires_prescription", "status", "criticality",
		"created_at", "updated_at",
	})
}

func (suite *SupplyRepoTestSuite) addSupplyRow(rows *pgxmock.Rows, id uuid.UUID, name string, stock, reorderPoint int) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, suite.tenantID1, "SKU-001", nil, name, "medication", nil,
		nil, nil, "box", decimal.NewFromInt(10), stock, 5,
		100, reorderPoint, 50, 5,
		10, nil, nil, nil, nil,
		false, false, false, "active", "high",
		now, now,
	)
}

func (suite *SupplyRepoTestSuite) TestCreate_Success() {
	supply := &models.Supply{
		ID:           uuid.New(),
		TenantID:     suite.tenantID1,
		SKU:          "MED-0042",
		Name:         "Paracetamol 500mg",
		Category:     "medication",
		Unit:         "box",
		UnitCost:     decimal.NewFromFloat(4.75),
		CurrentStock: 25,
		MinStock:     10,
		MaxStock:     200,
		ReorderPoint: 40,
		LeadTimeDays: 5,
		SafetyStock:  10,
		Status:       models.SupplyStatusActive,
		Criticality:  models.CriticalityHigh,
	}

	suite.mock.ExpectExec(`INSERT INTO supplies`).
		WithArgs(
			supply.ID, supply.TenantID, supply.SKU, supply.Barcode, supply.Name,
			supply.Category, supply.Subcategory, supply.Brand, supply.Manufacturer,
			supply.Unit, supply.UnitCost, supply.CurrentStock, supply.MinStock,
			supply.MaxStock, supply.ReorderPoint, supply.ReorderQuantity,
			supply.LeadTimeDays, supply.SafetyStock, supply.Department,
			supply.Location, supply.BatchNumber, supply.ExpiryDate, supply.Sterile,
			supply.Controlled, supply.RequiresPrescription, supply.Status, supply.Criticality,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, supply)
	assert.NoError(suite.T(), err)
}

func (suite *SupplyRepoTestSuite) TestCreate_DatabaseError() {
	supply := &models.Supply{
		ID:       uuid.New(),
		TenantID: suite.tenantID1,
		SKU:      "MED-0042",
		Name:     "Gauze",
		Category: "consumable",
		Unit:     "pack",
		Status:   models.SupplyStatusActive,
	}

	suite.mock.ExpectExec(`INSERT INTO supplies`).
		WithArgs(
			supply.ID, supply.TenantID, supply.SKU, supply.Barcode, supply.Name,
			supply.Category, supply.Subcategory, supply.Brand, supply.Manufacturer,
			supply.Unit, supply.UnitCost, supply.CurrentStock, supply.MinStock,
			supply.MaxStock, supply.ReorderPoint, supply.ReorderQuantity,
			supply.LeadTimeDays, supply.SafetyStock, supply.Department,
			supply.Location, supply.BatchNumber, supply.ExpiryDate, supply.Sterile,
			supply.Controlled, supply.RequiresPrescription, supply.Status, supply.Criticality,
		).
		WillReturnError(errors.New("database connection failed"))

	err := suite.repo.Create(suite.context, supply)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func (suite *SupplyRepoTestSuite) TestGetByID_Success() {
	rows := suite.addSupplyRow(supplyRows(), suite.supplyID, "Saline 0.9%", 30, 40)

	suite.mock.ExpectQuery(`SELECT (.+) FROM supplies`).
		WithArgs(suite.tenantID1, suite.supplyID).
		WillReturnRows(rows)

	result, err := suite.repo.GetByID(suite.context, suite.tenantID1, suite.supplyID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.supplyID, result.ID)
	assert.Equal(suite.T(), "Saline 0.9%", result.Name)
	assert.Equal(suite.T(), 30, result.CurrentStock)
}

func (suite *SupplyRepoTestSuite) TestGetByID_WrongTenant() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM supplies`).
		WithArgs(suite.tenantID2, suite.supplyID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetByID(suite.context, suite.tenantID2, suite.supplyID)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *SupplyRepoTestSuite) TestUpdateThresholds_Success() {
	supply := &models.Supply{
		ID:              suite.supplyID,
		TenantID:        suite.tenantID1,
		MinStock:        10,
		MaxStock:        200,
		ReorderPoint:    120,
		ReorderQuantity: 175,
		LeadTimeDays:    5,
		SafetyStock:     20,
	}

	suite.mock.ExpectExec(`UPDATE supplies`).
		WithArgs(
			supply.MinStock, supply.MaxStock, supply.ReorderPoint, supply.ReorderQuantity,
			supply.LeadTimeDays, supply.SafetyStock, supply.TenantID, supply.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateThresholds(suite.context, supply)
	assert.NoError(suite.T(), err)
}

func (suite *SupplyRepoTestSuite) TestDiscontinue_Success() {
	suite.mock.ExpectExec(`UPDATE supplies`).
		WithArgs(suite.tenantID1, suite.supplyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Discontinue(suite.context, suite.tenantID1, suite.supplyID)
	assert.NoError(suite.T(), err)
}

func (suite *SupplyRepoTestSuite) TestListBelowReorder_Success() {
	rows := supplyRows()
	suite.addSupplyRow(rows, uuid.New(), "Gloves M", 3, 40)
	suite.addSupplyRow(rows, uuid.New(), "Syringes 5ml", 12, 40)

	suite.mock.ExpectQuery(`SELECT (.+) FROM supplies`).
		WithArgs(suite.tenantID1).
		WillReturnRows(rows)

	result, err := suite.repo.ListBelowReorder(suite.context, suite.tenantID1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), "Gloves M", result[0].Name)
}

func (suite *SupplyRepoTestSuite) TestAdvancedSearch_BelowReorderFilter() {
	rows := supplyRows()
	suite.addSupplyRow(rows, uuid.New(), "Gauze 10x10", 8, 40)

	suite.mock.ExpectQuery(`SELECT (.+) FROM supplies`).
		WithArgs(suite.tenantID1, 50).
		WillReturnRows(rows)

	filter := &models.SupplySearchFilter{BelowReorder: true}
	result, err := suite.repo.AdvancedSearch(suite.context, suite.tenantID1, filter)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), "Gauze 10x10", result[0].Name)
}

func (suite *SupplyRepoTestSuite) TestList_EmptyResult() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM supplies`).
		WithArgs(suite.tenantID1, 10, 0).
		WillReturnRows(supplyRows())

	result, err := suite.repo.List(suite.context, suite.tenantID1, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), result)
}
