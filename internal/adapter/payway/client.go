package payway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/polkiloo/shopcore/internal/domain/model"
)

// Client exposes operations to query the payment gateway.
type Client interface {
	CheckTransaction(ctx context.Context, tranID string) (*model.GatewayTransaction, error)
}

// HTTPClient implements Client via the gateway HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	merchantID string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// response mirrors the JSON payload of the check-transaction endpoint.
type response struct {
	Status int     `json:"status"`
	Amount float64 `json:"amount"`
	TranID string  `json:"tran_id"`
	Email  string  `json:"email,omitempty"`
}

// NewHTTPClient creates the gateway client. The timeout bounds every
// status-check call so a hung gateway cannot stall a poll tick.
func NewHTTPClient(baseURL, merchantID, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:    parsed,
		merchantID: merchantID,
		apiKey:     apiKey,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// requestHash authenticates the request: base64 of an HMAC-SHA512 over
// merchant id concatenated with the transaction id, keyed by the API key.
func (c *HTTPClient) requestHash(tranID string) string {
	mac := hmac.New(sha512.New, []byte(c.apiKey))
	mac.Write([]byte(c.merchantID + tranID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// CheckTransaction queries the gateway for the state of one transaction.
func (c *HTTPClient) CheckTransaction(ctx context.Context, tranID string) (*model.GatewayTransaction, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/payment-gateway/v1/payments/check-transaction")

	form := url.Values{}
	form.Set("merchant_id", c.merchantID)
	form.Set("tran_id", tranID)
	form.Set("hash", c.requestHash(tranID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("gateway error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &model.GatewayTransaction{
		TranID:     data.TranID,
		StatusCode: data.Status,
		Amount:     data.Amount,
		PayerEmail: data.Email,
	}, nil
}
