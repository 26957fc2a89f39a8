package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage relies on; tests swap in
// a mock implementation.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// querier is satisfied by both pgxPool and pgx.Tx so that ledger writes can
// run inside an ambient transaction or standalone.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool       pgxPool
	logger     *slog.Logger
	supportsTx bool
}

type orderRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type movementRepository struct {
	storage *Storage
}

type promotionRepository struct {
	storage *Storage
}

type settingsRepository struct {
	storage *Storage
}

// New creates storage with schema initialization and a transaction
// capability probe.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	storage.supportsTx = storage.probeTransactions(ctx)
	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Movements() repository.StockMovementRepository {
	return &movementRepository{storage: s}
}

func (s *Storage) Promotions() repository.PromotionRepository {
	return &promotionRepository{storage: s}
}

func (s *Storage) Settings() repository.SettingsRepository {
	return &settingsRepository{storage: s}
}

// SupportsTransactions reports the result of the startup capability probe.
func (s *Storage) SupportsTransactions() bool {
	return s.supportsTx
}

func (s *Storage) probeTransactions(ctx context.Context) bool {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		s.logger.Warn("transaction probe failed, falling back to compensating writes", slog.String("error", err.Error()))
		return false
	}
	_ = tx.Rollback(ctx)
	return true
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            slug TEXT NOT NULL,
            image TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            sku TEXT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            list_price DOUBLE PRECISION NOT NULL DEFAULT 0,
            sale_start_date TIMESTAMPTZ,
            sale_end_date TIMESTAMPTZ,
            variants JSONB NOT NULL DEFAULT '[]',
            count_in_stock INT NOT NULL DEFAULT 0,
            num_sales INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            full_name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            street TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            province TEXT NOT NULL DEFAULT '',
            items_price DOUBLE PRECISION NOT NULL,
            shipping_price DOUBLE PRECISION NOT NULL,
            tax_price DOUBLE PRECISION NOT NULL,
            discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_price DOUBLE PRECISION NOT NULL,
            promotion_id TEXT,
            promotion_code TEXT,
            promotion_discount DOUBLE PRECISION,
            promotion_free_shipping BOOLEAN,
            is_paid BOOLEAN NOT NULL DEFAULT FALSE,
            paid_at TIMESTAMPTZ,
            payment_id TEXT,
            payment_status TEXT,
            payer_email TEXT,
            is_delivered BOOLEAN NOT NULL DEFAULT FALSE,
            delivered_at TIMESTAMPTZ,
            expected_delivery_date TIMESTAMPTZ NOT NULL,
            gateway_tran_id TEXT NOT NULL DEFAULT '',
            gateway_status TEXT NOT NULL DEFAULT '',
            gateway_status_code INT,
            callback_received BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id TEXT NOT NULL,
            name TEXT NOT NULL,
            slug TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            sku TEXT NOT NULL,
            size TEXT NOT NULL DEFAULT '',
            color TEXT NOT NULL DEFAULT '',
            quantity INT NOT NULL,
            price DOUBLE PRECISION NOT NULL,
            base_price DOUBLE PRECISION NOT NULL,
            variant_modifiers JSONB NOT NULL DEFAULT '[]'
        )`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
            id SERIAL PRIMARY KEY,
            product_id TEXT NOT NULL,
            sku TEXT NOT NULL,
            type TEXT NOT NULL,
            quantity INT NOT NULL,
            previous_stock INT NOT NULL,
            new_stock INT NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            created_by TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS promotions (
            id TEXT PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            used_count INT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS promotion_usages (
            id SERIAL PRIMARY KEY,
            promotion_id TEXT NOT NULL,
            user_id TEXT NOT NULL,
            order_id TEXT UNIQUE NOT NULL,
            code TEXT NOT NULL,
            discount_amount DOUBLE PRECISION NOT NULL,
            free_shipping BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payment_status_history (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL,
            status TEXT NOT NULL,
            status_code INT NOT NULL,
            source TEXT NOT NULL,
            details TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_notes (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL,
            author TEXT NOT NULL,
            note TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS delivery_options (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            days_to_deliver INT NOT NULL,
            shipping_price DOUBLE PRECISION NOT NULL,
            position INT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_order ON payment_status_history(order_id, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- OrderRepository implementation ---

const insertOrderQuery = `INSERT INTO orders (
        id, user_id, full_name, phone, street, city, province,
        items_price, shipping_price, tax_price, discount_amount, total_price,
        promotion_id, promotion_code, promotion_discount, promotion_free_shipping,
        expected_delivery_date, gateway_status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

const insertOrderItemQuery = `INSERT INTO order_items (
        order_id, product_id, name, slug, image, category, sku, size, color,
        quantity, price, base_price, variant_modifiers)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

func insertOrder(ctx context.Context, q querier, order *model.Order) error {
	var (
		promoID, promoCode *string
		promoDiscount      *float64
		promoFreeShipping  *bool
	)
	if p := order.AppliedPromotion; p != nil {
		promoID, promoCode = &p.PromotionID, &p.Code
		promoDiscount, promoFreeShipping = &p.DiscountAmount, &p.FreeShipping
	}

	addr := order.ShippingAddress
	_, err := q.Exec(ctx, insertOrderQuery,
		order.ID, order.UserID, addr.FullName, addr.Phone, addr.Street, addr.City, addr.Province,
		order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.DiscountAmount, order.TotalPrice,
		promoID, promoCode, promoDiscount, promoFreeShipping,
		order.ExpectedDeliveryDate, string(model.PaymentStatusPending))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		modifiers := item.VariantModifiers
		if modifiers == nil {
			modifiers = []model.VariantModifier{}
		}
		if _, err := q.Exec(ctx, insertOrderItemQuery,
			order.ID, item.ProductID, item.Name, item.Slug, item.Image, item.Category,
			item.SKU, item.Size, item.Color, item.Quantity, item.Price, item.BasePrice, modifiers); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	if !r.storage.supportsTx {
		return domainErrors.ErrNoTransactions
	}
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		if order.AppliedPromotion != nil {
			_, err := recordUsage(ctx, tx, promotionUsageFromOrder(order))
			return err
		}
		return nil
	})
}

func (r *orderRepository) CreateBestEffort(ctx context.Context, order *model.Order) error {
	if err := insertOrder(ctx, r.storage.pool, order); err != nil {
		return err
	}
	if order.AppliedPromotion != nil {
		if _, err := recordUsage(ctx, r.storage.pool, promotionUsageFromOrder(order)); err != nil {
			// Availability over atomicity: the order is already durable, the
			// missing ledger row is an operator concern, not a checkout failure.
			r.storage.logger.Error("promotion usage write failed after order insert",
				slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	return nil
}

func promotionUsageFromOrder(order *model.Order) model.PromotionUsage {
	p := order.AppliedPromotion
	return model.PromotionUsage{
		PromotionID:    p.PromotionID,
		UserID:         order.UserID,
		OrderID:        order.ID,
		Code:           p.Code,
		DiscountAmount: p.DiscountAmount,
		FreeShipping:   p.FreeShipping,
	}
}

const selectOrderQuery = `SELECT id, user_id, full_name, phone, street, city, province,
        items_price, shipping_price, tax_price, discount_amount, total_price,
        promotion_id, promotion_code, promotion_discount, promotion_free_shipping,
        is_paid, paid_at, payment_id, payment_status, payer_email,
        is_delivered, delivered_at, expected_delivery_date,
        gateway_tran_id, gateway_status, gateway_status_code, callback_received,
        created_at, updated_at
    FROM orders`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                  model.Order
		promoID, promoCode *string
		promoDiscount      *float64
		promoFree          *bool
		paymentID          *string
		paymentStatus      *string
		payerEmail         *string
	)
	err := row.Scan(&o.ID, &o.UserID,
		&o.ShippingAddress.FullName, &o.ShippingAddress.Phone, &o.ShippingAddress.Street,
		&o.ShippingAddress.City, &o.ShippingAddress.Province,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.DiscountAmount, &o.TotalPrice,
		&promoID, &promoCode, &promoDiscount, &promoFree,
		&o.IsPaid, &o.PaidAt, &paymentID, &paymentStatus, &payerEmail,
		&o.IsDelivered, &o.DeliveredAt, &o.ExpectedDeliveryDate,
		&o.GatewayTransactionID, &o.GatewayStatus, &o.GatewayStatusCode, &o.CallbackReceived,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	if promoID != nil {
		o.AppliedPromotion = &model.AppliedPromotion{PromotionID: *promoID}
		if promoCode != nil {
			o.AppliedPromotion.Code = *promoCode
		}
		if promoDiscount != nil {
			o.AppliedPromotion.DiscountAmount = *promoDiscount
		}
		if promoFree != nil {
			o.AppliedPromotion.FreeShipping = *promoFree
		}
	}
	if paymentID != nil {
		o.PaymentResult = &model.PaymentResult{ID: *paymentID}
		if paymentStatus != nil {
			o.PaymentResult.Status = *paymentStatus
		}
		if payerEmail != nil {
			o.PaymentResult.PayerEmail = *payerEmail
		}
	}
	return &o, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	const query = `SELECT product_id, name, slug, image, category, sku, size, color,
            quantity, price, base_price, variant_modifiers
        FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Slug, &item.Image, &item.Category,
			&item.SKU, &item.Size, &item.Color, &item.Quantity, &item.Price, &item.BasePrice,
			&item.VariantModifiers); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, selectOrderQuery+` WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	order.Items, err = r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, selectOrderQuery+` WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const markPaidQuery = `UPDATE orders
        SET is_paid=TRUE, paid_at=NOW(), payment_id=$2, payment_status=$3, payer_email=$4, updated_at=NOW()
        WHERE id=$1 AND is_paid=FALSE`

func paymentResultArgs(result *model.PaymentResult) (id, status, email *string) {
	if result == nil {
		return nil, nil, nil
	}
	return &result.ID, &result.Status, &result.PayerEmail
}

func (r *orderRepository) ReconcilePayment(ctx context.Context, orderID string, result *model.PaymentResult) error {
	if !r.storage.supportsTx {
		return domainErrors.ErrNoTransactions
	}
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		id, status, email := paymentResultArgs(result)
		tag, err := tx.Exec(ctx, markPaidQuery, orderID, id, status, email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domainErrors.ErrNotFound
			}
			return domainErrors.ErrAlreadyPaid
		}

		rows, err := tx.Query(ctx, `SELECT product_id, sku, quantity FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
		if err != nil {
			return err
		}
		type lineItem struct {
			productID string
			sku       string
			quantity  int
		}
		var items []lineItem
		for rows.Next() {
			var item lineItem
			if err := rows.Scan(&item.productID, &item.sku, &item.quantity); err != nil {
				rows.Close()
				return err
			}
			items = append(items, item)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, item := range items {
			previous, current, err := decrementStock(ctx, tx, item.productID, item.quantity)
			if err != nil {
				return err
			}
			if err := insertMovement(ctx, tx, model.StockMovement{
				ProductID:     item.productID,
				SKU:           item.sku,
				Type:          model.MovementTypeSale,
				Quantity:      -item.quantity,
				PreviousStock: previous,
				NewStock:      current,
				Reason:        "order " + orderID,
				CreatedBy:     "system",
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) SetPaid(ctx context.Context, orderID string, result *model.PaymentResult) (bool, error) {
	id, status, email := paymentResultArgs(result)
	tag, err := r.storage.pool.Exec(ctx, markPaidQuery, orderID, id, status, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) RevertPaid(ctx context.Context, orderID string) error {
	const query = `UPDATE orders
            SET is_paid=FALSE, paid_at=NULL, payment_id=NULL, payment_status=NULL, payer_email=NULL, updated_at=NOW()
            WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, orderID)
	return err
}

func (r *orderRepository) MarkDelivered(ctx context.Context, orderID string) error {
	const query = `UPDATE orders SET is_delivered=TRUE, delivered_at=NOW(), updated_at=NOW()
            WHERE id=$1 AND is_paid=TRUE AND is_delivered=FALSE`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var isPaid, isDelivered bool
	err = r.storage.pool.QueryRow(ctx, `SELECT is_paid, is_delivered FROM orders WHERE id=$1`, orderID).Scan(&isPaid, &isDelivered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	if !isPaid {
		return domainErrors.ErrOrderNotPaid
	}
	// Already delivered: idempotent success.
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid && !order.IsDelivered {
		return nil, domainErrors.ErrOrderLocked
	}

	const query = `DELETE FROM orders WHERE id=$1 AND NOT (is_paid AND NOT is_delivered)`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// Lost the race with a concurrent payment confirmation.
		return nil, domainErrors.ErrOrderLocked
	}
	return order, nil
}

func (r *orderRepository) SetGatewayTransaction(ctx context.Context, orderID, tranID string) error {
	const query = `UPDATE orders SET gateway_tran_id=$2, gateway_status=$3, updated_at=NOW() WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, tranID, string(model.PaymentStatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) AppendStatusHistory(ctx context.Context, orderID string, event model.StatusEvent) error {
	const insertQuery = `INSERT INTO payment_status_history (order_id, status, status_code, source, details)
            VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.storage.pool.Exec(ctx, insertQuery,
		orderID, string(event.Status), event.StatusCode, string(event.Source), event.Details); err != nil {
		return err
	}

	const updateQuery = `UPDATE orders
            SET gateway_status=$2, gateway_status_code=$3,
                callback_received = callback_received OR $4,
                updated_at=NOW()
            WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, updateQuery,
		orderID, string(event.Status), event.StatusCode, event.Source == model.StatusSourceCallback)
	return err
}

func (r *orderRepository) StatusHistory(ctx context.Context, orderID string) ([]model.StatusEvent, error) {
	const query = `SELECT status, status_code, source, details, created_at
            FROM payment_status_history WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.StatusEvent
	for rows.Next() {
		var e model.StatusEvent
		if err := rows.Scan(&e.Status, &e.StatusCode, &e.Source, &e.Details, &e.At); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *orderRepository) AppendNote(ctx context.Context, orderID string, note model.OrderNote) error {
	const query = `INSERT INTO order_notes (order_id, author, note) VALUES ($1,$2,$3)`
	_, err := r.storage.pool.Exec(ctx, query, orderID, note.Author, note.Text)
	return err
}

// --- ProductRepository implementation ---

func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	const query = `SELECT id, name, slug, image, category, sku, price, list_price,
            sale_start_date, sale_end_date, variants, count_in_stock, num_sales
        FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Slug, &p.Image, &p.Category,
		&p.SKU, &p.Price, &p.ListPrice, &p.SaleStartDate, &p.SaleEndDate, &p.Variants,
		&p.CountInStock, &p.NumSales)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// decrementStock performs the guarded atomic decrement; the WHERE clause is
// the only thing standing between concurrent buyers and negative stock.
func decrementStock(ctx context.Context, q querier, productID string, quantity int) (int, int, error) {
	const query = `UPDATE products
            SET count_in_stock = count_in_stock - $2, num_sales = num_sales + $2
            WHERE id=$1 AND count_in_stock >= $2
            RETURNING count_in_stock`
	var current int
	err := q.QueryRow(ctx, query, productID, quantity).Scan(&current)
	if err == nil {
		return current + quantity, current, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, err
	}

	var sku string
	var available int
	err = q.QueryRow(ctx, `SELECT sku, count_in_stock FROM products WHERE id=$1`, productID).Scan(&sku, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, domainErrors.ErrNotFound
		}
		return 0, 0, err
	}
	return 0, 0, domainErrors.InsufficientStockError{SKU: sku, Requested: quantity, Available: available}
}

func (r *productRepository) DecrementStock(ctx context.Context, productID string, quantity int) (int, int, error) {
	return decrementStock(ctx, r.storage.pool, productID, quantity)
}

func (r *productRepository) IncrementStock(ctx context.Context, productID string, quantity int) (int, int, error) {
	const query = `UPDATE products
            SET count_in_stock = count_in_stock + $2, num_sales = num_sales - $2
            WHERE id=$1
            RETURNING count_in_stock`
	var current int
	err := r.storage.pool.QueryRow(ctx, query, productID, quantity).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, domainErrors.ErrNotFound
		}
		return 0, 0, err
	}
	return current - quantity, current, nil
}

// --- StockMovementRepository implementation ---

func insertMovement(ctx context.Context, q querier, m model.StockMovement) error {
	const query = `INSERT INTO stock_movements (product_id, sku, type, quantity, previous_stock, new_stock, reason, created_by)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := q.Exec(ctx, query, m.ProductID, m.SKU, string(m.Type), m.Quantity, m.PreviousStock, m.NewStock, m.Reason, m.CreatedBy)
	return err
}

func (r *movementRepository) Insert(ctx context.Context, movement model.StockMovement) error {
	return insertMovement(ctx, r.storage.pool, movement)
}

func (r *movementRepository) ListByProduct(ctx context.Context, productID string) ([]model.StockMovement, error) {
	const query = `SELECT id, product_id, sku, type, quantity, previous_stock, new_stock, reason, created_by, created_at
            FROM stock_movements WHERE product_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.SKU, &m.Type, &m.Quantity, &m.PreviousStock,
			&m.NewStock, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- PromotionRepository implementation ---

// recordUsage inserts the usage row idempotently and bumps the redemption
// counter only when the row is new. Runs against a transaction or the pool.
func recordUsage(ctx context.Context, q querier, usage model.PromotionUsage) (bool, error) {
	const insertQuery = `INSERT INTO promotion_usages (promotion_id, user_id, order_id, code, discount_amount, free_shipping)
            VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (order_id) DO NOTHING`
	tag, err := q.Exec(ctx, insertQuery, usage.PromotionID, usage.UserID, usage.OrderID,
		usage.Code, usage.DiscountAmount, usage.FreeShipping)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := q.Exec(ctx, `UPDATE promotions SET used_count = used_count + 1 WHERE id=$1`, usage.PromotionID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *promotionRepository) RecordUsage(ctx context.Context, usage model.PromotionUsage) (bool, error) {
	if !r.storage.supportsTx {
		return recordUsage(ctx, r.storage.pool, usage)
	}
	var created bool
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = recordUsage(ctx, tx, usage)
		return err
	})
	return created, err
}

func (r *promotionRepository) UsageByOrder(ctx context.Context, orderID string) (*model.PromotionUsage, error) {
	const query = `SELECT id, promotion_id, user_id, order_id, code, discount_amount, free_shipping, created_at
            FROM promotion_usages WHERE order_id=$1`
	var u model.PromotionUsage
	err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&u.ID, &u.PromotionID, &u.UserID,
		&u.OrderID, &u.Code, &u.DiscountAmount, &u.FreeShipping, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- SettingsRepository implementation ---

func (r *settingsRepository) DeliveryOptions(ctx context.Context) ([]model.DeliveryOption, error) {
	const query = `SELECT name, days_to_deliver, shipping_price FROM delivery_options ORDER BY position`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.DeliveryOption
	for rows.Next() {
		var o model.DeliveryOption
		if err := rows.Scan(&o.Name, &o.DaysToDeliver, &o.ShippingPrice); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return options, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
