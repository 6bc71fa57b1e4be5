package broker

import (
	"context"
	"testing"

	"coinpilot/internal/model"
)

type fakeSettler struct{ balance float64 }

func (f *fakeSettler) AdjustBalance(delta float64) { f.balance += delta }

func TestPaperSinkRoundTrip(t *testing.T) {
	settler := &fakeSettler{balance: 1000}
	s := NewPaperSink(settler)
	ctx := context.Background()

	buy := model.Order{Symbol: "BTC/USDT", Side: model.Buy, Size: 200, Price: 100, Venue: "paper"}
	id, err := s.SubmitOrder(ctx, buy)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if id == "" {
		t.Fatal("empty order id")
	}
	if settler.balance != 800 {
		t.Errorf("buy should debit the size: balance %v", settler.balance)
	}

	// Sell at +10%: credit 200 * 110/100 = 220.
	sell := model.Order{Symbol: "BTC/USDT", Side: model.Sell, Size: 200, Price: 110, Venue: "paper"}
	if _, err := s.SubmitOrder(ctx, sell); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if settler.balance != 1020 {
		t.Errorf("sell should credit the scaled size: balance %v", settler.balance)
	}

	fills := s.Fills()
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	if fills[0].Order.Side != model.Buy || fills[1].Order.Side != model.Sell {
		t.Errorf("fills out of order: %+v", fills)
	}
	if fills[0].OrderID == fills[1].OrderID {
		t.Error("order ids must be unique")
	}
}

func TestPaperSinkSellWithoutPosition(t *testing.T) {
	s := NewPaperSink(nil)
	order := model.Order{Symbol: "BTC/USDT", Side: model.Sell, Size: 10, Price: 100, Venue: "paper"}
	if _, err := s.SubmitOrder(context.Background(), order); err == nil {
		t.Error("expected error selling a flat book")
	}
}

func TestPaperSinkRejectsInvalidOrders(t *testing.T) {
	s := NewPaperSink(nil)
	ctx := context.Background()
	if _, err := s.SubmitOrder(ctx, model.Order{Symbol: "X", Side: model.Buy, Size: 0, Price: 100}); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := s.SubmitOrder(ctx, model.Order{Symbol: "X", Side: "short", Size: 1, Price: 100}); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestPaperSinkFailAll(t *testing.T) {
	s := NewPaperSink(nil)
	s.FailAll(true)
	order := model.Order{Symbol: "BTC/USDT", Side: model.Buy, Size: 10, Price: 100, Venue: "paper"}
	if _, err := s.SubmitOrder(context.Background(), order); err == nil {
		t.Error("expected rejection while failing")
	}
	s.FailAll(false)
	if _, err := s.SubmitOrder(context.Background(), order); err != nil {
		t.Errorf("expected fill after recovery: %v", err)
	}
}
