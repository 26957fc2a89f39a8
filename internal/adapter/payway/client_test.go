package payway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewHTTPClient("/relative", "m", "k", time.Second, discardLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCheckTransactionSuccess(t *testing.T) {
	const (
		merchantID = "merchant-1"
		apiKey     = "api-key"
		tranID     = "TXN-7"
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("merchant_id") != merchantID || r.PostForm.Get("tran_id") != tranID {
			t.Errorf("unexpected form values: %v", r.PostForm)
		}

		mac := hmac.New(sha512.New, []byte(apiKey))
		mac.Write([]byte(merchantID + tranID))
		expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		if r.PostForm.Get("hash") != expected {
			t.Errorf("request hash mismatch")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":0,"amount":111.90,"tran_id":"TXN-7","email":"buyer@example.com"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, merchantID, apiKey, time.Second, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx, err := client.CheckTransaction(context.Background(), tranID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.StatusCode != model.GatewayCodeSuccess {
		t.Fatalf("unexpected status code %d", tx.StatusCode)
	}
	if tx.Amount != 111.90 {
		t.Fatalf("unexpected amount %v", tx.Amount)
	}
	if tx.Status() != model.PaymentStatusCompleted {
		t.Fatalf("unexpected status %s", tx.Status())
	}
}

func TestCheckTransactionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "m", "k", time.Second, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.CheckTransaction(context.Background(), "TXN"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestCheckTransactionBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "m", "k", time.Second, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.CheckTransaction(context.Background(), "TXN"); err == nil {
		t.Fatal("expected decode error")
	}
}
