package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Orders() OrderRepository
	Products() ProductRepository
	Movements() StockMovementRepository
	Promotions() PromotionRepository
	Settings() SettingsRepository

	// SupportsTransactions reports whether the backing store can run
	// multi-statement transactions. Reconciliation strategy selection keys
	// off this capability rather than failure-driven branching.
	SupportsTransactions() bool
}
