package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/polkiloo/shopcore/internal/adapter/lease"
	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/domain/repository"
)

const paymentLeaseTTL = 30 * time.Second

// Reconciler transitions an order from unpaid to paid: exactly one stock
// decrement and one SALE movement per item, no matter how many confirmation
// triggers race. alreadyPaid reports the idempotent no-op outcome.
type Reconciler interface {
	MarkPaid(ctx context.Context, orderID string, result *model.PaymentResult) (alreadyPaid bool, err error)
}

// NewReconciler selects the strategy by capability probe: transactional
// where the store supports it, lease-fenced compensating writes elsewhere.
func NewReconciler(factory repository.Factory, leases lease.Lease, logger *slog.Logger) Reconciler {
	if factory.SupportsTransactions() {
		return &txReconciler{orders: factory.Orders()}
	}
	logger.Warn("using compensating payment reconciler, paid-flag reverts are best-effort")
	return &leaseReconciler{
		orders:    factory.Orders(),
		products:  factory.Products(),
		movements: factory.Movements(),
		leases:    leases,
		logger:    logger,
	}
}

// txReconciler delegates to the storage transaction: conditional paid-flip,
// guarded decrements and movement rows commit or roll back together.
type txReconciler struct {
	orders repository.OrderRepository
}

func (r *txReconciler) MarkPaid(ctx context.Context, orderID string, result *model.PaymentResult) (bool, error) {
	err := r.orders.ReconcilePayment(ctx, orderID, result)
	if errors.Is(err, domainErrors.ErrAlreadyPaid) {
		return true, nil
	}
	return false, err
}

// leaseReconciler is the non-transactional fallback: a per-order lease
// fences the multi-step window, all stock is pre-validated, and a failed
// step after the paid-flip triggers a best-effort revert.
type leaseReconciler struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	leases    lease.Lease
	logger    *slog.Logger
}

func (r *leaseReconciler) MarkPaid(ctx context.Context, orderID string, result *model.PaymentResult) (bool, error) {
	acquired, err := r.leases.Acquire(ctx, "payment:"+orderID, paymentLeaseTTL)
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, domainErrors.ErrReconcileBusy
	}
	defer func() {
		if err := r.leases.Release(context.WithoutCancel(ctx), "payment:"+orderID); err != nil {
			r.logger.Error("release payment lease failed", slog.String("order_id", orderID), slog.String("error", err.Error()))
		}
	}()

	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.IsPaid {
		return true, nil
	}

	// Validate every line before mutating anything: insufficient stock is
	// fatal for the whole order, not a partial fulfillment.
	for _, item := range order.Items {
		product, err := r.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return false, err
		}
		if product.CountInStock < item.Quantity {
			return false, domainErrors.InsufficientStockError{
				SKU:       product.SKU,
				Requested: item.Quantity,
				Available: product.CountInStock,
			}
		}
	}

	updated, err := r.orders.SetPaid(ctx, orderID, result)
	if err != nil {
		return false, err
	}
	if !updated {
		return true, nil
	}

	for _, item := range order.Items {
		previous, current, err := r.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			r.revert(ctx, orderID, err)
			return false, err
		}
		movement := model.StockMovement{
			ProductID:     item.ProductID,
			SKU:           item.SKU,
			Type:          model.MovementTypeSale,
			Quantity:      -item.Quantity,
			PreviousStock: previous,
			NewStock:      current,
			Reason:        "order " + orderID,
			CreatedBy:     "system",
		}
		if err := r.movements.Insert(ctx, movement); err != nil {
			r.revert(ctx, orderID, err)
			return false, err
		}
	}

	return false, nil
}

// revert clears the paid flag after a partial failure. Not crash-safe: a
// process death between the paid-flip and here leaves the order paid with
// incomplete stock accounting, which operators must reconcile by hand.
func (r *leaseReconciler) revert(ctx context.Context, orderID string, cause error) {
	r.logger.Error("compensating reconciliation failed, reverting paid flag",
		slog.String("order_id", orderID), slog.String("cause", cause.Error()))
	if err := r.orders.RevertPaid(context.WithoutCancel(ctx), orderID); err != nil {
		r.logger.Error("paid flag revert failed, order state inconsistent",
			slog.String("order_id", orderID), slog.String("error", err.Error()))
	}
}

// PaymentUseCase coordinates payment reconciliation and gateway bookkeeping.
type PaymentUseCase struct {
	orders     repository.OrderRepository
	reconciler Reconciler
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, reconciler Reconciler) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, reconciler: reconciler}
}

// MarkPaid runs the reconciliation and returns the refreshed order.
// alreadyPaid reports an idempotent no-op; callers treat it as success.
func (u *PaymentUseCase) MarkPaid(ctx context.Context, orderID string, result *model.PaymentResult) (*model.Order, bool, error) {
	alreadyPaid, err := u.reconciler.MarkPaid(ctx, orderID, result)
	if err != nil {
		return nil, false, err
	}
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, alreadyPaid, err
	}
	return order, alreadyPaid, nil
}

// InitiateGatewayPayment records the gateway transaction id on the order so
// the status poller can reconcile it later.
func (u *PaymentUseCase) InitiateGatewayPayment(ctx context.Context, orderID, tranID string) (*model.Order, error) {
	if err := u.orders.SetGatewayTransaction(ctx, orderID, tranID); err != nil {
		return nil, err
	}
	if err := u.orders.AppendStatusHistory(ctx, orderID, model.StatusEvent{
		Status:     model.PaymentStatusPending,
		StatusCode: model.GatewayCodePending,
		Source:     model.StatusSourceManual,
		Details:    "gateway payment initiated",
	}); err != nil {
		return nil, err
	}
	return u.orders.GetByID(ctx, orderID)
}

// RecordGatewayStatus appends a status history entry observed from the
// gateway.
func (u *PaymentUseCase) RecordGatewayStatus(ctx context.Context, orderID string, event model.StatusEvent) error {
	return u.orders.AppendStatusHistory(ctx, orderID, event)
}

// Order fetches the current order state.
func (u *PaymentUseCase) Order(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}
