// Package orders models vendor orders and their fulfillments, and derives the
// quantities and eligibility rules the order pages rely on.
package orders

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound indicates the order or fulfillment does not exist.
	ErrNotFound = errors.New("orders: not found")
	// ErrAlreadyShipped is returned when canceling a shipped fulfillment.
	ErrAlreadyShipped = errors.New("orders: fulfillment already shipped")
)

// Service exposes order detail and fulfillment mutations for the vendor UI.
type Service interface {
	// Get loads a single order with items, fulfillments and payment data.
	Get(ctx context.Context, token, orderID string) (*Order, error)

	// CancelFulfillment cancels a fulfillment that has not shipped.
	CancelFulfillment(ctx context.Context, token, orderID, fulfillmentID string) error

	// MarkShipped records a shipment covering the fulfillment's items.
	MarkShipped(ctx context.Context, token, orderID, fulfillmentID string, items []FulfillmentItem) error

	// MarkDelivered marks a fulfillment as delivered (or picked up).
	MarkDelivered(ctx context.Context, token, orderID, fulfillmentID string) error

	// Label streams the courier shipping label. The caller closes the body.
	Label(ctx context.Context, token, orderID, fulfillmentID string) (io.ReadCloser, string, error)
}
