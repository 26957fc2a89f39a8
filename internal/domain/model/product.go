package model

import "time"

// VariantModifier adjusts a product's base price for a selected variant,
// e.g. a storage or RAM option.
type VariantModifier struct {
	Kind          string
	Value         string
	PriceModifier float64
}

// Product is catalog state referenced by the pipeline. Stock is the
// contended resource: every unit sold must leave a matching StockMovement.
type Product struct {
	ID            string
	Name          string
	Slug          string
	Image         string
	Category      string
	SKU           string
	Price         float64
	ListPrice     float64
	SaleStartDate *time.Time
	SaleEndDate   *time.Time
	Variants      []VariantModifier
	CountInStock  int
	NumSales      int
}

// OnSale reports whether now falls inside the product's sale window.
func (p Product) OnSale(now time.Time) bool {
	if p.SaleStartDate == nil || p.SaleEndDate == nil {
		return false
	}
	return !now.Before(*p.SaleStartDate) && !now.After(*p.SaleEndDate)
}
