package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_cycles_total", Help: "Completed decision cycles"})
	ordersAttempted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_orders_attempted_total", Help: "Orders the bot tried to place"})
	ordersFilled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_orders_filled_total", Help: "Orders accepted by the execution sink"}, []string{"side"})
	ordersRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_orders_rejected_total", Help: "Orders the execution sink did not fill"})
	pairsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_pairs_skipped_total", Help: "Pairs skipped in a cycle"}, []string{"reason"})
	haltsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_halts_total", Help: "Drawdown halts triggered"})
	balanceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_account_balance", Help: "Last settled account balance"})
	drawdownGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_drawdown", Help: "Current drawdown from the high-water mark"})
	openPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_open_positions", Help: "Currently open positions"})
)

func init() {
	prometheus.MustRegister(
		cyclesTotal, ordersAttempted, ordersFilled, ordersRejected,
		pairsSkipped, haltsTotal, balanceGauge, drawdownGauge, openPositions,
	)
}

func CycleDone()                { cyclesTotal.Inc() }
func OrderAttempted()           { ordersAttempted.Inc() }
func OrderFilled(side string)   { ordersFilled.WithLabelValues(side).Inc() }
func OrderRejected()            { ordersRejected.Inc() }
func PairSkipped(reason string) { pairsSkipped.WithLabelValues(reason).Inc() }
func HaltTriggered()            { haltsTotal.Inc() }

func SetAccount(balance, drawdown float64, positions int) {
	balanceGauge.Set(balance)
	drawdownGauge.Set(drawdown)
	openPositions.Set(float64(positions))
}

// Serve exposes /metrics on addr. It returns immediately; the server runs
// until the process exits.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[WARN] metrics server: %v", err)
		}
	}()
}
