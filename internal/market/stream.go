package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamClient keeps a websocket connection to a venue ticker feed and caches
// the latest price plus a rolling history per symbol. It reconnects with
// backoff when the feed drops.
type StreamClient struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration
	HistoryDepth int

	mu     sync.Mutex
	conn   *websocket.Conn
	latest map[string]float64
	series map[string][]float64
}

// tick is the expected feed message shape.
type tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// NewStreamClient creates a client for the given websocket URL.
func NewStreamClient(url string) *StreamClient {
	return &StreamClient{
		URL:          url,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		PingInterval: 20 * time.Second,
		HistoryDepth: 500,
		latest:       make(map[string]float64),
		series:       make(map[string][]float64),
	}
}

// Run dials the feed, subscribes to the symbols, and pumps ticks into the
// cache until the context is canceled. Connection loss triggers a redial.
func (c *StreamClient) Run(ctx context.Context, symbols []string) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.connect(ctx, symbols); err != nil {
			log.Printf("[WARN] stream connect: %v, retrying in %s", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		c.readLoop(ctx)
	}
}

func (c *StreamClient) connect(ctx context.Context, symbols []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	sub := map[string]interface{}{"op": "subscribe", "symbols": symbols}
	payload, err := json.Marshal(sub)
	if err != nil {
		conn.Close()
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	log.Printf("[INFO] stream connected: %s", c.URL)
	return nil
}

func (c *StreamClient) readLoop(ctx context.Context) {
	conn := c.conn
	defer conn.Close()

	pinger := time.NewTicker(c.PingInterval)
	defer pinger.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-pinger.C:
				conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[WARN] stream read: %v", err)
			}
			return
		}
		var t tick
		if err := json.Unmarshal(raw, &t); err != nil || t.Symbol == "" || t.Price <= 0 {
			continue
		}
		c.record(t)
	}
}

func (c *StreamClient) record(t tick) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest[t.Symbol] = t.Price
	s := append(c.series[t.Symbol], t.Price)
	if len(s) > c.HistoryDepth {
		s = s[len(s)-c.HistoryDepth:]
	}
	c.series[t.Symbol] = s
}

// Latest returns the most recent cached price for the symbol.
func (c *StreamClient) Latest(symbol string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.latest[symbol]
	return p, ok
}

// Series returns up to window cached prices for the symbol.
func (c *StreamClient) Series(symbol string, window int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.series[symbol]
	if len(s) > window {
		s = s[len(s)-window:]
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// StreamProvider serves prices and history from a live stream cache and
// delegates balance lookups to an inner provider.
type StreamProvider struct {
	Stream *StreamClient
	Inner  Provider
}

func NewStreamProvider(stream *StreamClient, inner Provider) *StreamProvider {
	return &StreamProvider{Stream: stream, Inner: inner}
}

func (p *StreamProvider) Name() string { return "stream" }

func (p *StreamProvider) Price(symbol, _ string) (float64, error) {
	price, ok := p.Stream.Latest(symbol)
	if !ok {
		return 0, fmt.Errorf("no tick received yet for %s", symbol)
	}
	return price, nil
}

func (p *StreamProvider) Balance(token, venue string) (float64, error) {
	return p.Inner.Balance(token, venue)
}

func (p *StreamProvider) History(symbol, venue string, window int) ([]float64, error) {
	s := p.Stream.Series(symbol, window)
	if len(s) >= window {
		return s, nil
	}
	// Cold cache: fall back to the inner provider until the stream warms up.
	return p.Inner.History(symbol, venue, window)
}
