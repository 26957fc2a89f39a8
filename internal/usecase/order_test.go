package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/shopcore/internal/domain/errors"
	"github.com/polkiloo/shopcore/internal/domain/model"
	"github.com/polkiloo/shopcore/internal/test"
)

func newTestOrderUseCase(factory *test.FactoryStub) *OrderUseCase {
	pricing := NewPricingResolver(factory.ProductRepo, discardLogger())
	uc := NewOrderUseCase(factory, pricing, 0.069, discardLogger())
	uc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	return uc
}

func testCart() model.Cart {
	return model.Cart{
		Items: []model.OrderItem{{ProductID: "p1", Quantity: 2, Price: 50}},
		ShippingAddress: model.ShippingAddress{
			FullName: "Jordan Smith", Street: "1 Main St", City: "Springfield",
		},
	}
}

func seedCatalog(factory *test.FactoryStub) {
	factory.ProductRepo.Products["p1"] = &model.Product{ID: "p1", Name: "Lamp", SKU: "LM-1", Price: 50, CountInStock: 5}
	factory.SettingsRepo.Options = []model.DeliveryOption{
		{Name: "express", DaysToDeliver: 2, ShippingPrice: 25},
		{Name: "standard", DaysToDeliver: 7, ShippingPrice: 15},
	}
}

func TestOrderCreateComputesTotals(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	uc := newTestOrderUseCase(factory)

	cart := testCart()
	cart.AppliedPromotion = &model.AppliedPromotion{PromotionID: "promo1", Code: "SAVE10", DiscountAmount: 10}

	order, err := uc.Create(context.Background(), "user-1", cart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ItemsPrice != 100.00 {
		t.Fatalf("expected items price 100.00, got %v", order.ItemsPrice)
	}
	if order.ShippingPrice != 15 {
		t.Fatalf("expected default (last) delivery option, got %v", order.ShippingPrice)
	}
	if order.TaxPrice != 6.90 {
		t.Fatalf("expected tax 6.90, got %v", order.TaxPrice)
	}
	if order.TotalPrice != 111.90 {
		t.Fatalf("expected total 111.90, got %v", order.TotalPrice)
	}
	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if len(factory.OrderRepo.Created) != 1 {
		t.Fatalf("expected transactional create, got %d tx / %d best-effort", len(factory.OrderRepo.Created), len(factory.OrderRepo.BestEffort))
	}
}

func TestOrderCreateRequiresUser(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	uc := newTestOrderUseCase(factory)

	if _, err := uc.Create(context.Background(), "", testCart()); !errors.Is(err, domainErrors.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestOrderCreateSelectsDeliveryOptionByIndex(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	uc := newTestOrderUseCase(factory)

	index := 0
	cart := testCart()
	cart.DeliveryOptionIndex = &index

	order, err := uc.Create(context.Background(), "user-1", cart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingPrice != 25 {
		t.Fatalf("expected express shipping 25, got %v", order.ShippingPrice)
	}
	wantDate := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	if !order.ExpectedDeliveryDate.Equal(wantDate) {
		t.Fatalf("expected delivery %v, got %v", wantDate, order.ExpectedDeliveryDate)
	}
}

func TestOrderCreateFreeShippingPromotion(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	uc := newTestOrderUseCase(factory)

	cart := testCart()
	cart.AppliedPromotion = &model.AppliedPromotion{PromotionID: "promo2", Code: "FREESHIP", FreeShipping: true}

	order, err := uc.Create(context.Background(), "user-1", cart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingPrice != 0 {
		t.Fatalf("expected zero shipping, got %v", order.ShippingPrice)
	}
	if order.TotalPrice != 106.90 {
		t.Fatalf("expected total 106.90, got %v", order.TotalPrice)
	}
}

func TestOrderCreateNoDeliveryOptionsConfigured(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	factory.SettingsRepo.Options = nil
	uc := newTestOrderUseCase(factory)

	order, err := uc.Create(context.Background(), "user-1", testCart())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingPrice != 0 {
		t.Fatalf("expected shipping excluded, got %v", order.ShippingPrice)
	}
	wantDate := time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC)
	if !order.ExpectedDeliveryDate.Equal(wantDate) {
		t.Fatalf("expected default delivery estimate %v, got %v", wantDate, order.ExpectedDeliveryDate)
	}
}

func TestOrderCreateFallsBackWithoutTransactions(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	factory.OrderRepo.CreateFn = func(context.Context, *model.Order) error {
		return domainErrors.ErrNoTransactions
	}
	uc := newTestOrderUseCase(factory)

	if _, err := uc.Create(context.Background(), "user-1", testCart()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(factory.OrderRepo.BestEffort) != 1 {
		t.Fatalf("expected best-effort fallback, got %d calls", len(factory.OrderRepo.BestEffort))
	}
}

func TestOrderCreateUsesBestEffortWhenFactoryLacksTransactions(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	factory.Transactions = false
	uc := newTestOrderUseCase(factory)

	if _, err := uc.Create(context.Background(), "user-1", testCart()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(factory.OrderRepo.Created) != 0 || len(factory.OrderRepo.BestEffort) != 1 {
		t.Fatalf("expected only best-effort create, got %d tx / %d best-effort", len(factory.OrderRepo.Created), len(factory.OrderRepo.BestEffort))
	}
}

func TestOrderCreateRejectsEmptyCart(t *testing.T) {
	factory := test.NewFactoryStub()
	seedCatalog(factory)
	uc := newTestOrderUseCase(factory)

	cart := testCart()
	cart.Items = nil

	if _, err := uc.Create(context.Background(), "user-1", cart); !errors.Is(err, domainErrors.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if len(factory.OrderRepo.Created)+len(factory.OrderRepo.BestEffort) != 0 {
		t.Fatal("invalid order must not be persisted")
	}
}

func TestOrderDeleteHonorsLock(t *testing.T) {
	factory := test.NewFactoryStub()
	factory.OrderRepo.Orders["o1"] = &model.Order{ID: "o1", IsPaid: true}
	uc := newTestOrderUseCase(factory)

	if _, err := uc.Delete(context.Background(), "o1", "admin"); !errors.Is(err, domainErrors.ErrOrderLocked) {
		t.Fatalf("expected ErrOrderLocked, got %v", err)
	}

	factory.OrderRepo.Orders["o1"].IsDelivered = true
	order, err := uc.Delete(context.Background(), "o1", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "o1" {
		t.Fatalf("expected deleted order returned, got %+v", order)
	}
}

func TestValidateOrderTotalsMismatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	order := &model.Order{
		Items:                []model.OrderItem{{ProductID: "p1", Quantity: 1, Price: 10}},
		ShippingAddress:      model.ShippingAddress{FullName: "a", Street: "b", City: "c"},
		ItemsPrice:           10,
		ShippingPrice:        5,
		TotalPrice:           20,
		ExpectedDeliveryDate: now.AddDate(0, 0, 3),
	}
	if err := ValidateOrder(order, now); !errors.Is(err, domainErrors.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}

	order.TotalPrice = 15
	if err := ValidateOrder(order, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
