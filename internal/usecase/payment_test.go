package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/polkiloo/shopcore/internal/adapter/lease"
	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/test"
)

func paidOrderFixture(factory *test.FactoryStub) {
	factory.OrderRepo.Orders["o1"] = &model.Order{
		ID: "o1", UserID: "user-1",
		Items: []model.OrderItem{
			{ProductID: "p1", SKU: "LM-1", Quantity: 2},
			{ProductID: "p2", SKU: "KB-1", Quantity: 1},
		},
		TotalPrice: 111.90,
	}
	factory.ProductRepo.Products["p1"] = &model.Product{ID: "p1", SKU: "LM-1", CountInStock: 5}
	factory.ProductRepo.Products["p2"] = &model.Product{ID: "p2", SKU: "KB-1", CountInStock: 1}
}

func TestNewReconcilerSelectsStrategyByCapability(t *testing.T) {
	factory := test.NewFactoryStub()
	if _, ok := NewReconciler(factory, lease.NewLocalLease(), discardLogger()).(*txReconciler); !ok {
		t.Fatal("expected transactional reconciler for tx-capable store")
	}

	factory.Transactions = false
	if _, ok := NewReconciler(factory, lease.NewLocalLease(), discardLogger()).(*leaseReconciler); !ok {
		t.Fatal("expected lease reconciler for store without transactions")
	}
}

func TestTxReconcilerMapsAlreadyPaid(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	r := &txReconciler{orders: factory.OrderRepo}

	alreadyPaid, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1"})
	if err != nil || alreadyPaid {
		t.Fatalf("first reconciliation: alreadyPaid=%v err=%v", alreadyPaid, err)
	}

	alreadyPaid, err = r.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1"})
	if err != nil {
		t.Fatalf("repeated reconciliation must not error: %v", err)
	}
	if !alreadyPaid {
		t.Fatal("expected idempotent no-op to be reported")
	}
}

func newLeaseReconciler(factory *test.FactoryStub, leases lease.Lease) *leaseReconciler {
	return &leaseReconciler{
		orders:    factory.OrderRepo,
		products:  factory.ProductRepo,
		movements: factory.MovementRepo,
		leases:    leases,
		logger:    discardLogger(),
	}
}

func TestLeaseReconcilerMarksPaidAndWritesMovements(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	r := newLeaseReconciler(factory, lease.NewLocalLease())

	alreadyPaid, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1", Status: "COMPLETED"})
	if err != nil || alreadyPaid {
		t.Fatalf("unexpected result: alreadyPaid=%v err=%v", alreadyPaid, err)
	}
	if !factory.OrderRepo.Orders["o1"].IsPaid {
		t.Fatal("expected order marked paid")
	}
	if got := factory.ProductRepo.Products["p1"].CountInStock; got != 3 {
		t.Fatalf("expected stock 3 after decrement, got %d", got)
	}
	if len(factory.MovementRepo.Movements) != 2 {
		t.Fatalf("expected one SALE movement per item, got %d", len(factory.MovementRepo.Movements))
	}
	m := factory.MovementRepo.Movements[0]
	if m.Type != model.MovementTypeSale || m.Quantity != -2 || m.PreviousStock != 5 || m.NewStock != 3 {
		t.Fatalf("unexpected movement %+v", m)
	}
	if m.Reason != "order o1" || m.CreatedBy != "system" {
		t.Fatalf("unexpected movement attribution %+v", m)
	}
}

func TestLeaseReconcilerInsufficientStockMutatesNothing(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	factory.ProductRepo.Products["p2"].CountInStock = 0
	r := newLeaseReconciler(factory, lease.NewLocalLease())

	_, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1"})
	if !domainErrors.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if factory.OrderRepo.Orders["o1"].IsPaid {
		t.Fatal("order must stay unpaid")
	}
	if factory.ProductRepo.Products["p1"].CountInStock != 5 {
		t.Fatal("no stock may be decremented before validation passes")
	}
}

func TestLeaseReconcilerRevertsOnMovementFailure(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	boom := errors.New("movement insert failed")
	factory.MovementRepo.InsertFn = func(context.Context, model.StockMovement) error { return boom }
	r := newLeaseReconciler(factory, lease.NewLocalLease())

	_, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected movement failure surfaced, got %v", err)
	}
	if len(factory.OrderRepo.Reverted) != 1 {
		t.Fatalf("expected paid flag revert, got %v", factory.OrderRepo.Reverted)
	}
}

func TestLeaseReconcilerRejectsConcurrentAttempt(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	leases := lease.NewLocalLease()
	if ok, _ := leases.Acquire(context.Background(), "payment:o1", paymentLeaseTTL); !ok {
		t.Fatal("precondition: lease must be acquirable")
	}
	r := newLeaseReconciler(factory, leases)

	if _, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{}); !errors.Is(err, domainErrors.ErrReconcileBusy) {
		t.Fatalf("expected ErrReconcileBusy, got %v", err)
	}
}

func TestLeaseReconcilerAlreadyPaidShortCircuits(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	factory.OrderRepo.Orders["o1"].IsPaid = true
	r := newLeaseReconciler(factory, lease.NewLocalLease())

	alreadyPaid, err := r.MarkPaid(context.Background(), "o1", &model.PaymentResult{})
	if err != nil || !alreadyPaid {
		t.Fatalf("expected idempotent no-op, alreadyPaid=%v err=%v", alreadyPaid, err)
	}
	if len(factory.ProductRepo.Decrements) != 0 {
		t.Fatal("paid order must not touch stock")
	}
}

func TestPaymentUseCaseMarkPaidReturnsRefreshedOrder(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	uc := NewPaymentUseCase(factory.OrderRepo, &txReconciler{orders: factory.OrderRepo})

	order, alreadyPaid, err := uc.MarkPaid(context.Background(), "o1", &model.PaymentResult{ID: "tx-1"})
	if err != nil || alreadyPaid {
		t.Fatalf("unexpected result: alreadyPaid=%v err=%v", alreadyPaid, err)
	}
	if !order.IsPaid {
		t.Fatal("expected refreshed order to carry the paid flag")
	}
}

func TestPaymentUseCaseInitiateGatewayPayment(t *testing.T) {
	factory := test.NewFactoryStub()
	paidOrderFixture(factory)
	uc := NewPaymentUseCase(factory.OrderRepo, &txReconciler{orders: factory.OrderRepo})

	order, err := uc.InitiateGatewayPayment(context.Background(), "o1", "tran-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.GatewayTransactionID != "tran-42" {
		t.Fatalf("expected transaction id recorded, got %q", order.GatewayTransactionID)
	}
	if len(factory.OrderRepo.History) != 1 || factory.OrderRepo.History[0].Status != model.PaymentStatusPending {
		t.Fatalf("expected pending history entry, got %+v", factory.OrderRepo.History)
	}
}
