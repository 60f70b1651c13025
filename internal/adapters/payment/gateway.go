// Package payment implements the PaymentGateway port.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"eventregistry/internal/domain"
)

// GatewayConfig holds configuration for creating a payment gateway.
// Provider "http" posts charges to Endpoint; "noop" approves everything.
type GatewayConfig struct {
	Provider string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewGateway creates a payment gateway from config.
func NewGateway(config GatewayConfig) (domain.PaymentGateway, error) {
	switch config.Provider {
	case "http":
		if config.Endpoint == "" {
			return nil, fmt.Errorf("payment endpoint is required for the http provider")
		}
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return &httpGateway{
			endpoint: config.Endpoint,
			apiKey:   config.APIKey,
			client:   &http.Client{Timeout: timeout},
		}, nil
	case "noop":
		return &noopGateway{}, nil
	default:
		log.Printf("[PAYMENT] Unknown payment provider %q, using noop", config.Provider)
		return &noopGateway{}, nil
	}
}

type chargeRequest struct {
	RegistrationID string `json:"registration_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

type chargeResponse struct {
	Outcome string `json:"outcome"`
}

type httpGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func (g *httpGateway) Charge(ctx context.Context, reg *domain.Registration, amount int64) (domain.PaymentOutcome, error) {
	body, err := json.Marshal(chargeRequest{
		RegistrationID: reg.ID,
		Amount:         amount,
		Currency:       "USD",
	})
	if err != nil {
		return domain.PaymentFailure, fmt.Errorf("marshal charge request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.PaymentFailure, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.PaymentFailure, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.PaymentFailure, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.PaymentFailure, fmt.Errorf("decode charge response: %w", err)
	}
	switch domain.PaymentOutcome(out.Outcome) {
	case domain.PaymentSuccess, domain.PaymentFailure, domain.PaymentCanceled:
		return domain.PaymentOutcome(out.Outcome), nil
	default:
		return domain.PaymentFailure, fmt.Errorf("unknown gateway outcome %q", out.Outcome)
	}
}

// noopGateway approves every charge. Used in development and tests.
type noopGateway struct{}

func (n *noopGateway) Charge(ctx context.Context, reg *domain.Registration, amount int64) (domain.PaymentOutcome, error) {
	log.Printf("[PAYMENT] Charge approved (noop): registration=%s amount=%d", reg.ID, amount)
	return domain.PaymentSuccess, nil
}
