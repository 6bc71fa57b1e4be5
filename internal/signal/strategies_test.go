package signal

import "testing"

func rising(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestMomentum_Crossover(t *testing.T) {
	m := NewMomentum(3, 10)

	up := rising(20, 100)
	if !m.ShouldEnter("ETH/USD", up[len(up)-1], up) {
		t.Error("expected entry while short average leads in an uptrend")
	}
	if m.ShouldExit("ETH/USD", up[len(up)-1], up) {
		t.Error("expected no exit in an uptrend")
	}

	down := declining(20, 100)
	if !m.ShouldExit("ETH/USD", down[len(down)-1], down) {
		t.Error("expected exit while short average trails in a downtrend")
	}
	if m.ShouldEnter("ETH/USD", down[len(down)-1], down) {
		t.Error("expected no entry in a downtrend")
	}
}

func TestMomentum_InsufficientHistory(t *testing.T) {
	m := NewMomentum(3, 10)
	if m.ShouldEnter("ETH/USD", 100, rising(5, 100)) {
		t.Error("expected no signal with history shorter than the long window")
	}
}

func TestReversal_OversoldEntry(t *testing.T) {
	r := NewReversal(14, 70, 30)
	down := declining(14, 87)
	if !r.ShouldEnter("SOL/USD", down[len(down)-1], down) {
		t.Error("expected entry on deeply oversold CCI/RSI")
	}
	if r.ShouldExit("SOL/USD", down[len(down)-1], down) {
		t.Error("expected no exit while oversold")
	}
}

func TestReversal_OverboughtExit(t *testing.T) {
	r := NewReversal(14, 70, 30)
	up := rising(14, 87)
	if !r.ShouldExit("SOL/USD", up[len(up)-1], up) {
		t.Error("expected exit on deeply overbought CCI/RSI")
	}
	if r.ShouldEnter("SOL/USD", up[len(up)-1], up) {
		t.Error("expected no entry while overbought")
	}
}
