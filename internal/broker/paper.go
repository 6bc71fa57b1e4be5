package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"coinpilot/internal/model"
)

// Settler settles the cash effect of paper fills; the paper market provider
// implements it.
type Settler interface {
	AdjustBalance(delta float64)
}

// PaperSink fills every order immediately against an in-memory book and
// settles cash with the paper venue: a buy debits the order size, a sell
// credits the size scaled by the price move since entry.
type PaperSink struct {
	mu      sync.Mutex
	settler Settler
	book    map[string]entry // symbol@venue -> open paper entry
	fills   []model.Fill
	failAll bool
}

type entry struct {
	price float64
	size  float64
}

// NewPaperSink creates a sink settling against the given venue account.
func NewPaperSink(settler Settler) *PaperSink {
	return &PaperSink{
		settler: settler,
		book:    make(map[string]entry),
	}
}

func (s *PaperSink) Name() string { return "paper" }

func (s *PaperSink) SubmitOrder(_ context.Context, order model.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return "", fmt.Errorf("paper sink rejecting orders")
	}
	if order.Size <= 0 || order.Price <= 0 {
		return "", fmt.Errorf("invalid order: size=%v price=%v", order.Size, order.Price)
	}

	k := order.Symbol + "@" + order.Venue
	switch order.Side {
	case model.Buy:
		s.book[k] = entry{price: order.Price, size: order.Size}
		if s.settler != nil {
			s.settler.AdjustBalance(-order.Size)
		}
	case model.Sell:
		e, open := s.book[k]
		if !open {
			return "", fmt.Errorf("no open paper position for %s", k)
		}
		delete(s.book, k)
		if s.settler != nil {
			s.settler.AdjustBalance(e.size * order.Price / e.price)
		}
	default:
		return "", fmt.Errorf("unknown order side %q", order.Side)
	}

	id := uuid.NewString()
	s.fills = append(s.fills, model.Fill{OrderID: id, Order: order, Time: time.Now()})
	return id, nil
}

// Fills returns a copy of all recorded fills, oldest first.
func (s *PaperSink) Fills() []model.Fill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Fill, len(s.fills))
	copy(out, s.fills)
	return out
}

// FailAll toggles order rejection; used to exercise transient-failure paths.
func (s *PaperSink) FailAll(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = fail
}
