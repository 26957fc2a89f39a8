package model

import "time"

// MovementType classifies a stock movement ledger entry.
type MovementType string

const (
	MovementTypeSet        MovementType = "SET"
	MovementTypeAdjust     MovementType = "ADJUST"
	MovementTypeSale       MovementType = "SALE"
	MovementTypeReturn     MovementType = "RETURN"
	MovementTypeCorrection MovementType = "CORRECTION"
)

// StockMovement is an append-only audit row recording a single inventory
// delta. Invariant: NewStock = PreviousStock + Quantity and NewStock >= 0.
type StockMovement struct {
	ID            int64
	ProductID     string
	SKU           string
	Type          MovementType
	Quantity      int
	PreviousStock int
	NewStock      int
	Reason        string
	CreatedBy     string
	CreatedAt     time.Time
}
