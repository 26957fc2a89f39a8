package model

import (
	"testing"
	"time"
)

func TestMovementTypeValues(t *testing.T) {
	cases := []struct {
		name  string
		got   MovementType
		value string
	}{
		{"set", MovementTypeSet, "SET"},
		{"adjust", MovementTypeAdjust, "ADJUST"},
		{"sale", MovementTypeSale, "SALE"},
		{"return", MovementTypeReturn, "RETURN"},
		{"correction", MovementTypeCorrection, "CORRECTION"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestGatewayTransactionStatus(t *testing.T) {
	cases := []struct {
		code   int
		status PaymentStatus
	}{
		{GatewayCodeSuccess, PaymentStatusCompleted},
		{GatewayCodeCancelled, PaymentStatusCancelled},
		{GatewayCodeFailed, PaymentStatusFailed},
		{GatewayCodeDeclined, PaymentStatusFailed},
		{GatewayCodePending, PaymentStatusPending},
		{99, PaymentStatusProcessing},
	}

	for _, tc := range cases {
		tx := GatewayTransaction{StatusCode: tc.code}
		if tx.Status() != tc.status {
			t.Fatalf("code %d: expected %s, got %s", tc.code, tc.status, tx.Status())
		}
	}
}

func TestProductOnSale(t *testing.T) {
	now := time.Now()
	hour := time.Hour

	start := now.Add(-hour)
	end := now.Add(hour)

	cases := []struct {
		name    string
		product Product
		want    bool
	}{
		{"no window", Product{}, false},
		{"inside window", Product{SaleStartDate: &start, SaleEndDate: &end}, true},
		{"before window", Product{SaleStartDate: &end, SaleEndDate: &end}, false},
		{"after window", Product{SaleStartDate: &start, SaleEndDate: &start}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.product.OnSale(now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
