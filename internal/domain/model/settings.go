package model

// DeliveryOption is one configured delivery choice. Options are ordered;
// the last option is the default when the client does not pick one.
type DeliveryOption struct {
	Name          string
	DaysToDeliver int
	ShippingPrice float64
}
