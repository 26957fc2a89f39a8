package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

// OrderRepositoryStub allows tests to customize behaviour per method.
type OrderRepositoryStub struct {
	mu sync.Mutex

	CreateFn            func(context.Context, *model.Order) error
	CreateBestEffortFn  func(context.Context, *model.Order) error
	GetByIDFn           func(context.Context, string) (*model.Order, error)
	ListByUserFn        func(context.Context, string) ([]model.Order, error)
	ReconcilePaymentFn  func(context.Context, string, *model.PaymentResult) error
	SetPaidFn           func(context.Context, string, *model.PaymentResult) (bool, error)
	RevertPaidFn        func(context.Context, string) error
	MarkDeliveredFn     func(context.Context, string) error
	DeleteFn            func(context.Context, string) (*model.Order, error)
	SetGatewayTranFn    func(context.Context, string, string) error
	AppendHistoryFn     func(context.Context, string, model.StatusEvent) error
	StatusHistoryFn     func(context.Context, string) ([]model.StatusEvent, error)
	AppendNoteFn        func(context.Context, string, model.OrderNote) error

	Created     []*model.Order
	BestEffort  []*model.Order
	Orders      map[string]*model.Order
	Reverted    []string
	History     []model.StatusEvent
	Notes       []model.OrderNote
	GatewayTran map[string]string
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:      make(map[string]*model.Order),
		GatewayTran: make(map[string]string),
	}
}

// Create tracks invocations and stores the order in-memory.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Created = append(s.Created, order)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	s.Orders[order.ID] = order
	return nil
}

// CreateBestEffort tracks the non-transactional path separately.
func (s *OrderRepositoryStub) CreateBestEffort(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BestEffort = append(s.BestEffort, order)
	if s.CreateBestEffortFn != nil {
		return s.CreateBestEffortFn(ctx, order)
	}
	if s.Orders == nil {
		s.Orders = make(map[string]*model.Order)
	}
	s.Orders[order.ID] = order
	return nil
}

// GetByID returns the stored order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.Orders[id]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser filters stored orders by owner.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if s.ListByUserFn != nil {
		return s.ListByUserFn(ctx, userID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, order := range s.Orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

// ReconcilePayment marks the stored order paid or delegates to the override.
func (s *OrderRepositoryStub) ReconcilePayment(ctx context.Context, orderID string, result *model.PaymentResult) error {
	if s.ReconcilePaymentFn != nil {
		return s.ReconcilePaymentFn(ctx, orderID, result)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.IsPaid {
		return domainErrors.ErrAlreadyPaid
	}
	order.IsPaid = true
	order.PaymentResult = result
	return nil
}

// SetPaid flips the paid flag conditionally.
func (s *OrderRepositoryStub) SetPaid(ctx context.Context, orderID string, result *model.PaymentResult) (bool, error) {
	if s.SetPaidFn != nil {
		return s.SetPaidFn(ctx, orderID, result)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if order.IsPaid {
		return false, nil
	}
	order.IsPaid = true
	order.PaymentResult = result
	return true, nil
}

// RevertPaid clears the paid flag and records the compensation.
func (s *OrderRepositoryStub) RevertPaid(ctx context.Context, orderID string) error {
	s.mu.Lock()
	s.Reverted = append(s.Reverted, orderID)
	s.mu.Unlock()
	if s.RevertPaidFn != nil {
		return s.RevertPaidFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.Orders[orderID]; ok {
		order.IsPaid = false
		order.PaymentResult = nil
	}
	return nil
}

// MarkDelivered sets the delivered flag gated on the paid flag.
func (s *OrderRepositoryStub) MarkDelivered(ctx context.Context, orderID string) error {
	if s.MarkDeliveredFn != nil {
		return s.MarkDeliveredFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if !order.IsPaid {
		return domainErrors.ErrOrderNotPaid
	}
	order.IsDelivered = true
	return nil
}

// Delete removes the order honoring the paid-undelivered lock.
func (s *OrderRepositoryStub) Delete(ctx context.Context, orderID string) (*model.Order, error) {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.IsPaid && !order.IsDelivered {
		return nil, domainErrors.ErrOrderLocked
	}
	delete(s.Orders, orderID)
	return order, nil
}

// SetGatewayTransaction records the gateway transaction binding.
func (s *OrderRepositoryStub) SetGatewayTransaction(ctx context.Context, orderID, tranID string) error {
	if s.SetGatewayTranFn != nil {
		return s.SetGatewayTranFn(ctx, orderID, tranID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GatewayTran == nil {
		s.GatewayTran = make(map[string]string)
	}
	s.GatewayTran[orderID] = tranID
	if order, ok := s.Orders[orderID]; ok {
		order.GatewayTransactionID = tranID
	}
	return nil
}

// AppendStatusHistory collects history events for assertions.
func (s *OrderRepositoryStub) AppendStatusHistory(ctx context.Context, orderID string, event model.StatusEvent) error {
	s.mu.Lock()
	s.History = append(s.History, event)
	s.mu.Unlock()
	if s.AppendHistoryFn != nil {
		return s.AppendHistoryFn(ctx, orderID, event)
	}
	return nil
}

// StatusHistory returns collected events or the override result.
func (s *OrderRepositoryStub) StatusHistory(ctx context.Context, orderID string) ([]model.StatusEvent, error) {
	if s.StatusHistoryFn != nil {
		return s.StatusHistoryFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StatusEvent(nil), s.History...), nil
}

// AppendNote collects notes for assertions.
func (s *OrderRepositoryStub) AppendNote(ctx context.Context, orderID string, note model.OrderNote) error {
	s.mu.Lock()
	s.Notes = append(s.Notes, note)
	s.mu.Unlock()
	if s.AppendNoteFn != nil {
		return s.AppendNoteFn(ctx, orderID, note)
	}
	return nil
}

// ProductRepositoryStub stores products in-memory for tests.
type ProductRepositoryStub struct {
	mu sync.Mutex

	GetByIDFn        func(context.Context, string) (*model.Product, error)
	DecrementStockFn func(context.Context, string, int) (int, int, error)
	IncrementStockFn func(context.Context, string, int) (int, int, error)

	Products   map[string]*model.Product
	Decrements []string
}

// NewProductRepositoryStub constructs stub repository with initialized map.
func NewProductRepositoryStub() *ProductRepositoryStub {
	return &ProductRepositoryStub{Products: make(map[string]*model.Product)}
}

// GetByID fetches product by identifier or returns not found.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.Products[id]; ok {
		return product, nil
	}
	return nil, domainErrors.ErrNotFound
}

// DecrementStock applies the guarded decrement against the in-memory map.
func (s *ProductRepositoryStub) DecrementStock(ctx context.Context, productID string, quantity int) (int, int, error) {
	s.mu.Lock()
	s.Decrements = append(s.Decrements, productID)
	s.mu.Unlock()
	if s.DecrementStockFn != nil {
		return s.DecrementStockFn(ctx, productID, quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.Products[productID]
	if !ok {
		return 0, 0, domainErrors.ErrNotFound
	}
	if product.CountInStock < quantity {
		return 0, 0, domainErrors.InsufficientStockError{SKU: product.SKU, Requested: quantity, Available: product.CountInStock}
	}
	previous := product.CountInStock
	product.CountInStock -= quantity
	product.NumSales += quantity
	return previous, product.CountInStock, nil
}

// IncrementStock adds quantity back to the in-memory map.
func (s *ProductRepositoryStub) IncrementStock(ctx context.Context, productID string, quantity int) (int, int, error) {
	if s.IncrementStockFn != nil {
		return s.IncrementStockFn(ctx, productID, quantity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.Products[productID]
	if !ok {
		return 0, 0, domainErrors.ErrNotFound
	}
	previous := product.CountInStock
	product.CountInStock += quantity
	return previous, product.CountInStock, nil
}

// StockMovementRepositoryStub collects movement rows for assertions.
type StockMovementRepositoryStub struct {
	mu sync.Mutex

	InsertFn func(context.Context, model.StockMovement) error

	Movements []model.StockMovement
}

// Insert records the movement or delegates to the override.
func (s *StockMovementRepositoryStub) Insert(ctx context.Context, movement model.StockMovement) error {
	if s.InsertFn != nil {
		return s.InsertFn(ctx, movement)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Movements = append(s.Movements, movement)
	return nil
}

// ListByProduct filters recorded movements.
func (s *StockMovementRepositoryStub) ListByProduct(ctx context.Context, productID string) ([]model.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockMovement
	for _, m := range s.Movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// PromotionRepositoryStub enforces the once-per-order ledger in-memory.
type PromotionRepositoryStub struct {
	mu sync.Mutex

	RecordUsageFn func(context.Context, model.PromotionUsage) (bool, error)

	Usages map[string]model.PromotionUsage
}

// NewPromotionRepositoryStub constructs stub repository with initialized map.
func NewPromotionRepositoryStub() *PromotionRepositoryStub {
	return &PromotionRepositoryStub{Usages: make(map[string]model.PromotionUsage)}
}

// RecordUsage inserts the usage row once per order id.
func (s *PromotionRepositoryStub) RecordUsage(ctx context.Context, usage model.PromotionUsage) (bool, error) {
	if s.RecordUsageFn != nil {
		return s.RecordUsageFn(ctx, usage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Usages == nil {
		s.Usages = make(map[string]model.PromotionUsage)
	}
	if _, exists := s.Usages[usage.OrderID]; exists {
		return false, nil
	}
	s.Usages[usage.OrderID] = usage
	return true, nil
}

// UsageByOrder returns the stored usage row.
func (s *PromotionRepositoryStub) UsageByOrder(ctx context.Context, orderID string) (*model.PromotionUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if usage, ok := s.Usages[orderID]; ok {
		return &usage, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SettingsRepositoryStub returns configured delivery options.
type SettingsRepositoryStub struct {
	Options []model.DeliveryOption
	Err     error
}

// DeliveryOptions returns the configured slice.
func (s *SettingsRepositoryStub) DeliveryOptions(ctx context.Context) ([]model.DeliveryOption, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Options, nil
}

// FactoryStub wires the stub repositories behind the factory interface.
type FactoryStub struct {
	OrderRepo     *OrderRepositoryStub
	ProductRepo   *ProductRepositoryStub
	MovementRepo  *StockMovementRepositoryStub
	PromotionRepo *PromotionRepositoryStub
	SettingsRepo  *SettingsRepositoryStub
	Transactions  bool
}

// NewFactoryStub constructs a factory with fresh stubs and transactions on.
func NewFactoryStub() *FactoryStub {
	return &FactoryStub{
		OrderRepo:     NewOrderRepositoryStub(),
		ProductRepo:   NewProductRepositoryStub(),
		MovementRepo:  &StockMovementRepositoryStub{},
		PromotionRepo: NewPromotionRepositoryStub(),
		SettingsRepo:  &SettingsRepositoryStub{},
		Transactions:  true,
	}
}

// Orders returns the order repository stub.
func (f *FactoryStub) Orders() repository.OrderRepository { return f.OrderRepo }

// Products returns the product repository stub.
func (f *FactoryStub) Products() repository.ProductRepository { return f.ProductRepo }

// Movements returns the stock movement repository stub.
func (f *FactoryStub) Movements() repository.StockMovementRepository { return f.MovementRepo }

// Promotions returns the promotion repository stub.
func (f *FactoryStub) Promotions() repository.PromotionRepository { return f.PromotionRepo }

// Settings returns the settings repository stub.
func (f *FactoryStub) Settings() repository.SettingsRepository { return f.SettingsRepo }

// SupportsTransactions reports the configured capability.
func (f *FactoryStub) SupportsTransactions() bool { return f.Transactions }
