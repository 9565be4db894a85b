package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultPaymentBaseURL = "https://api.mayar.id/ks/v1"

// PaymentClient talks to the Mayar payment-link API.
type PaymentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPaymentClient builds a client from MAYAR_BASE_URL and MAYAR_API_KEY.
func NewPaymentClient() *PaymentClient {
	baseURL := os.Getenv("MAYAR_BASE_URL")
	if baseURL == "" {
		baseURL = defaultPaymentBaseURL
	}

	return &PaymentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("MAYAR_API_KEY"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// PaymentCustomer identifies the payer on the provider side.
type PaymentCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PaymentLinkRequest is the provider payload for creating a payment link.
// Metadata carries the booking id as opaque correlation data.
type PaymentLinkRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Amount      int64             `json:"amount"` // whole currency units
	Customer    PaymentCustomer   `json:"customer"`
	ReturnURL   string            `json:"return_url"`
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata"`
}

// PaymentLink is the provider's handle for a created payment link.
type PaymentLink struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

type paymentLinkResponse struct {
	Data PaymentLink `json:"data"`
}

type paymentErrorResponse struct {
	Message string `json:"message"`
}

// CreatePaymentLink asks the provider for a hosted payment page.
func (c *PaymentClient) CreatePaymentLink(ctx context.Context, link PaymentLinkRequest) (*PaymentLink, error) {
	body, err := json.Marshal(link)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	url := c.baseURL + "/payment-links"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp paymentErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return nil, fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("payment provider error: unexpected status %d", resp.StatusCode)
	}

	var result paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Data.ID == "" || result.Data.Link == "" {
		return nil, fmt.Errorf("payment provider returned incomplete link data")
	}

	return &result.Data, nil
}
