package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrWaitDeadline is returned when an order has not reached a terminal
// state within the configured number of polling iterations. Callers must
// treat the wait as inconclusive, not as a failure of the order itself.
var ErrWaitDeadline = errors.New("order did not reach a final state within the polling limit")

// ErrOrderFailed is returned when polling observes a failed or cancelled
// order state.
var ErrOrderFailed = errors.New("order reached a failed state")

// Wait polls an order at a fixed interval until it reaches a terminal
// state. It returns the order on success or partial completion, an error
// wrapping ErrOrderFailed on failure or cancelation, and an error wrapping
// ErrWaitDeadline if maxIters fetches pass without a terminal state.
func (c *Client) Wait(ctx context.Context, orderID string, interval time.Duration, maxIters int) (*Order, error) {
	var last *Order

	for i := 0; i < maxIters; i++ {
		order, err := c.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		last = order

		switch order.State {
		case StateSuccess:
			c.logger.InfoContext(ctx, "order succeeded",
				slog.String("order_id", orderID),
			)
			return order, nil

		case StatePartial:
			// Some assets were delivered, some failed. Still downloadable.
			c.logger.WarnContext(ctx, "order completed partially",
				slog.String("order_id", orderID),
				slog.Any("error_hints", order.ErrorHints),
			)
			return order, nil

		case StateFailed, StateCancelled:
			c.logger.ErrorContext(ctx, "order did not complete",
				slog.String("order_id", orderID),
				slog.String("state", order.State),
				slog.Any("error_hints", order.ErrorHints),
			)
			return nil, fmt.Errorf("order %s: state %s: %w", orderID, order.State, ErrOrderFailed)
		}

		c.logger.DebugContext(ctx, "order not finished",
			slog.String("order_id", orderID),
			slog.String("state", order.State),
			slog.Int("iteration", i+1),
			slog.Int("max_iterations", maxIters),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}

	state := "unknown"
	if last != nil {
		state = last.State
	}
	return nil, fmt.Errorf("order %s still %s after %d iterations: %w", orderID, state, maxIters, ErrWaitDeadline)
}
