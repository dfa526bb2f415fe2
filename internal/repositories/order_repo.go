package repositories

import (
	"context"
	"fmt"

	"dataclinica/internal/models"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.SupplyOrder) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.SupplyOrder, error)
	Update(ctx context.Context, order *models.SupplyOrder) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	UpdateItemReceived(ctx context.Context, tenantID, orderID, itemID uuid.UUID, receivedQuantity int) error
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.SupplyOrderItem, error)
}

type orderRepo struct {
	db DB
}

func NewOrderRepo(db DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, tenant_id, supplier, status, total, notes, ordered_at, expected_delivery, received_at, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.SupplyOrder, error) {
	order := &models.SupplyOrder{}
	err := row.Scan(
		&order.ID, &order.TenantID, &order.Supplier, &order.Status, &order.Total,
		&order.Notes, &order.OrderedAt, &order.ExpectedDelivery, &order.ReceivedAt,
		&order.CreatedBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create inserts the order and its line items in one transaction.
func (r *orderRepo) Create(ctx context.Context, order *models.SupplyOrder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	orderQuery := `
		INSERT INTO supply_orders (id, tenant_id, supplier, status, total, notes, ordered_at, expected_delivery, received_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.TenantID, order.Supplier, order.Status, order.Total,
		order.Notes, order.OrderedAt, order.ExpectedDelivery, order.ReceivedAt,
		order.CreatedBy,
	)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO supply_order_items (id, order_id, supply_id, quantity, received_quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range order.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		_, err = tx.Exec(ctx, itemQuery,
			item.ID, item.OrderID, item.SupplyID, item.Quantity,
			item.ReceivedQuantity, item.UnitCost,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.SupplyOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM supply_orders
		WHERE tenant_id = $1 AND id = $2
	`
	order, err := scanOrder(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, err
	}

	items, err := r.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepo) GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.SupplyOrderItem, error) {
	query := `
		SELECT id, order_id, supply_id, quantity, received_quantity, unit_cost
		FROM supply_order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.SupplyOrderItem
	for rows.Next() {
		item := &models.SupplyOrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.SupplyID, &item.Quantity, &item.ReceivedQuantity, &item.UnitCost); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.OrderSearchFilter) ([]*models.SupplyOrder, error) {
	if filter == nil {
		filter = &models.OrderSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT ` + orderColumns + `
		FROM supply_orders
		WHERE tenant_id = $1
	`
	args := []interface{}{tenantID}
	conditionCount := 1

	if filter.Status != nil {
		conditionCount++
		query += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *filter.Status)
	}

	if filter.Supplier != nil {
		conditionCount++
		query += fmt.Sprintf(` AND supplier ILIKE $%d`, conditionCount)
		args = append(args, "%"+*filter.Supplier+"%")
	}

	if filter.From != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.From)
	}

	if filter.To != nil {
		conditionCount++
		query += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filter.To)
	}

	query += ` ORDER BY created_at DESC`

	conditionCount++
	query += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		query += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.SupplyOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *orderRepo) Update(ctx context.Context, order *models.SupplyOrder) error {
	query := `
		UPDATE supply_orders
		SET supplier = $1, total = $2, notes = $3, ordered_at = $4, expected_delivery = $5, received_at = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	_, err := r.db.Exec(ctx, query,
		order.Supplier, order.Total, order.Notes, order.OrderedAt,
		order.ExpectedDelivery, order.ReceivedAt, order.TenantID, order.ID,
	)
	return err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `
		UPDATE supply_orders
		SET status = $1, updated_at = NOW()
	`
	args := []interface{}{status, tenantID, id}
	switch status {
	case models.OrderStatusOrdered:
		query += `, ordered_at = NOW()`
	case models.OrderStatusReceived:
		query += `, received_at = NOW()`
	}
	query += ` WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *orderRepo) UpdateItemReceived(ctx context.Context, tenantID, orderID, itemID uuid.UUID, receivedQuantity int) error {
	query := `
		UPDATE supply_order_items i
		SET received_quantity = $1
		FROM supply_orders o
		WHERE i.id = $2 AND i.order_id = $3 AND o.id = i.order_id AND o.tenant_id = $4
	`
	tag, err := r.db.Exec(ctx, query, receivedQuantity, itemID, orderID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order item not found")
	}
	return nil
}
