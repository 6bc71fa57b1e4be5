package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"coinpilot/internal/model"
)

// RESTProvider implements Provider against a venue-gateway REST API.
type RESTProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTProvider creates a provider with a bounded request timeout and
// optional proxy support.
func NewRESTProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (p *RESTProvider) Name() string { return "rest" }

func (p *RESTProvider) Price(symbol, venue string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s&venue=%s",
		p.BaseURL, url.QueryEscape(symbol), url.QueryEscape(venue))
	var result struct {
		Price float64 `json:"price"`
	}
	if err := p.getJSON(endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	return result.Price, nil
}

func (p *RESTProvider) Balance(token, venue string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/balance?token=%s&venue=%s",
		p.BaseURL, url.QueryEscape(token), url.QueryEscape(venue))
	var result struct {
		Balance float64 `json:"balance"`
	}
	if err := p.getJSON(endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	return result.Balance, nil
}

// History fetches the last window OHLCV bars and returns their closes.
func (p *RESTProvider) History(symbol, venue string, window int) ([]float64, error) {
	endpoint := fmt.Sprintf("%s/api/v1/history?symbol=%s&venue=%s&limit=%d",
		p.BaseURL, url.QueryEscape(symbol), url.QueryEscape(venue), window)
	var result struct {
		Bars []model.Candle `json:"bars"`
	}
	if err := p.getJSON(endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return model.Closes(result.Bars), nil
}

func (p *RESTProvider) getJSON(endpoint string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
