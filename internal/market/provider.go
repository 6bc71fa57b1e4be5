package market

// Provider supplies prices, balances, and price history for symbols on a
// venue. Failures surface as a zero value plus an error; callers treat the
// pair as unavailable for the cycle and move on.
type Provider interface {
	Price(symbol, venue string) (float64, error)
	Balance(token, venue string) (float64, error)
	History(symbol, venue string, window int) ([]float64, error)
	Name() string
}
