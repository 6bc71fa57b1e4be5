package broker

import (
	"context"

	"coinpilot/internal/model"
)

// Sink accepts orders for execution. A non-nil error means the order was not
// filled; callers never assume partial fills. The returned identifier is
// opaque.
type Sink interface {
	SubmitOrder(ctx context.Context, order model.Order) (string, error)
	Name() string
}
