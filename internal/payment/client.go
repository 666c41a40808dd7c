package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the payment provider's charge endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a gateway client for the provider at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeRequest struct {
	AmountCents int    `json:"amount_cents"`
	PayerEmail  string `json:"payer_email"`
	Description string `json:"description"`
}

// Charge posts one charge and decodes the settlement outcome. Non-2xx
// responses are transport errors, not declines.
func (c *Client) Charge(ctx context.Context, amountCents int, payerEmail, description string) (Result, error) {
	body, err := json.Marshal(chargeRequest{
		AmountCents: amountCents,
		PayerEmail:  payerEmail,
		Description: description,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("payment provider returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode charge response: %w", err)
	}

	return result, nil
}
