package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"coinpilot/internal/model"
)

// RESTSink submits orders to a venue-gateway REST API.
type RESTSink struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTSink creates a sink with a bounded request timeout and optional
// proxy support.
func NewRESTSink(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTSink {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTSink{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (s *RESTSink) Name() string { return "rest" }

func (s *RESTSink) SubmitOrder(ctx context.Context, order model.Order) (string, error) {
	payload := map[string]interface{}{
		"symbol": order.Symbol,
		"side":   string(order.Side),
		"size":   order.Size,
		"price":  order.Price,
		"venue":  order.Venue,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit order: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	var result struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if result.OrderID == "" {
		return "", fmt.Errorf("venue returned no order id")
	}
	return result.OrderID, nil
}
