package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/workbridge/engagements/internal/config"
)

// Client talks to the payment capture provider. The provider guarantees
// idempotency per hold reference, so capture and refund may be safely
// re-sent for the same hold.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type holdRequest struct {
	Amount   float64 `json:"amount"`
	PayerRef string  `json:"payer_ref"`
}

type holdResponse struct {
	HoldRef string `json:"hold_ref"`
	Error   string `json:"error"`
}

type receiptResponse struct {
	ReceiptRef string `json:"receipt_ref"`
	Error      string `json:"error"`
}

// Authorize places a hold on the payer's funds and returns the hold
// reference.
func (c *Client) Authorize(ctx context.Context, amount float64, payerRef string) (string, error) {
	body, err := json.Marshal(holdRequest{Amount: amount, PayerRef: payerRef})
	if err != nil {
		return "", err
	}

	var resp holdResponse
	if err := c.post(ctx, "/v1/holds", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if resp.HoldRef == "" {
		return "", fmt.Errorf("gateway returned no hold reference")
	}
	return resp.HoldRef, nil
}

// Capture settles the held funds to the payee.
func (c *Client) Capture(ctx context.Context, holdRef string) (string, error) {
	var resp receiptResponse
	if err := c.post(ctx, "/v1/holds/"+holdRef+"/capture", nil, &resp); err != nil {
		return "", err
	}
	return resp.ReceiptRef, nil
}

// Refund returns the held funds to the payer.
func (c *Client) Refund(ctx context.Context, holdRef string) (string, error) {
	var resp receiptResponse
	if err := c.post(ctx, "/v1/holds/"+holdRef+"/refund", nil, &resp); err != nil {
		return "", err
	}
	return resp.ReceiptRef, nil
}

func (c *Client) post(ctx context.Context, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := extractError(payload)
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("gateway %s: %s", path, detail)
	}
	return json.Unmarshal(payload, out)
}

func extractError(payload []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Error
}
