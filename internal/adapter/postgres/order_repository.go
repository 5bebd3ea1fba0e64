package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `
	id, customer_name, contact_number, contact_number2, service_type,
	address, landmark, city, pickup_date, pickup_time, delivery_date, delivery_time,
	payment_method, payment_type, down_payment_amount, reference_number, notes,
	delivery_fee, total, status, verified_by, verified_at,
	synced_to_ledger, synced_at, ip_address, created_at, updated_at`

// Create inserts the order row and then its lines. The order insert is
// committed on its own: a line failure after it leaves the order in place as
// a visible partial-write state instead of rolling back, which is the
// documented reconciliation contract.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`
	_, err := r.db.Exec(ctx, query,
		order.ID, order.CustomerName, order.ContactNumber, order.ContactNumber2, order.ServiceType,
		order.Address, order.Landmark, order.City, order.PickupDate, order.PickupTime,
		order.DeliveryDate, order.DeliveryTime, order.PaymentMethod, order.PaymentType,
		order.DownPaymentAmount, order.ReferenceNumber, order.Notes,
		order.DeliveryFee, order.Total, order.Status, order.VerifiedBy, order.VerifiedAt,
		order.SyncedToLedger, order.SyncedAt, order.IPAddress, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Lines {
		selection, err := json.Marshal(order.Lines[i].Selection)
		if err != nil {
			return fmt.Errorf("%w: failed to encode line selection: %v", domain.ErrPartialWrite, err)
		}

		lineQuery := `
			INSERT INTO order_lines (order_id, menu_item_id, name, selection, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err = r.db.QueryRow(ctx, lineQuery,
			order.ID, order.Lines[i].MenuItemID, order.Lines[i].Name, string(selection),
			order.Lines[i].UnitPrice, order.Lines[i].Quantity, order.Lines[i].Subtotal,
		).Scan(&order.Lines[i].ID)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", domain.ErrPartialWrite, i, err)
		}
		order.Lines[i].OrderID = order.ID
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryOrders(ctx, query, args...)
}

func (r *orderRepository) ListForDay(ctx context.Context, day string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE DATE(created_at) = $1::date
		ORDER BY created_at ASC`

	return r.queryOrders(ctx, query, day)
}

// UpdateStatus writes the mutable fields only; everything else in the row is
// immutable after Create.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, verified_by = $2, verified_at = $3,
		    synced_to_ledger = $4, synced_at = $5, updated_at = $6
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query,
		order.Status, order.VerifiedBy, order.VerifiedAt,
		order.SyncedToLedger, order.SyncedAt, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}
	return nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, menu_item_id, name, selection, unit_price, quantity, subtotal
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		var selection []byte
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.Name,
			&selection, &line.UnitPrice, &line.Quantity, &line.Subtotal); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		if err := json.Unmarshal(selection, &line.Selection); err != nil {
			return fmt.Errorf("failed to decode line selection: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func scanOrder(row Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.CustomerName, &order.ContactNumber, &order.ContactNumber2, &order.ServiceType,
		&order.Address, &order.Landmark, &order.City, &order.PickupDate, &order.PickupTime,
		&order.DeliveryDate, &order.DeliveryTime, &order.PaymentMethod, &order.PaymentType,
		&order.DownPaymentAmount, &order.ReferenceNumber, &order.Notes,
		&order.DeliveryFee, &order.Total, &order.Status, &order.VerifiedBy, &order.VerifiedAt,
		&order.SyncedToLedger, &order.SyncedAt, &order.IPAddress, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
