package model

// Gateway transaction status codes as reported by the payment provider.
const (
	GatewayCodeSuccess   = 0
	GatewayCodeCancelled = 1
	GatewayCodeFailed    = 2
	GatewayCodeDeclined  = 3
	GatewayCodePending   = 4
)

// GatewayTransaction is the payment gateway's view of one transaction.
type GatewayTransaction struct {
	TranID     string
	StatusCode int
	Amount     float64
	PayerEmail string
}

// Status maps the gateway status code onto the order payment status enum.
func (t GatewayTransaction) Status() PaymentStatus {
	switch t.StatusCode {
	case GatewayCodeSuccess:
		return PaymentStatusCompleted
	case GatewayCodeCancelled:
		return PaymentStatusCancelled
	case GatewayCodeFailed, GatewayCodeDeclined:
		return PaymentStatusFailed
	case GatewayCodePending:
		return PaymentStatusPending
	default:
		return PaymentStatusProcessing
	}
}
