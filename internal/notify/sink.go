// Package notify defines the outbound message-delivery boundary. Delivery is
// best-effort: callers log failures and move on, they never retry or roll
// anything back.
package notify

import "context"

// Sink delivers a text message to a contact address. No delivery guarantee.
type Sink interface {
	Send(ctx context.Context, address, text string) error
}
