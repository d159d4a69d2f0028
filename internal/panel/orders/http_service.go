package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

// DetailFields is the field projection requested for the order page.
const DetailFields = "id,display_id,email,status,payment_status,fulfillment_status,currency_code,total,created_at," +
	"*items,*items.variant,*items.variant.options,*items.detail," +
	"*fulfillments,*fulfillments.items,*fulfillments.labels," +
	"*shipping_methods,*shipping_methods.shipping_option,*split_order_payment"

// HTTPService implements Service over the backend vendor API.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs an HTTPService.
func NewHTTPService(client *backend.Client) (*HTTPService, error) {
	if client == nil {
		return nil, errors.New("orders: backend client is required")
	}
	return &HTTPService{client: client}, nil
}

// Get implements Service.
func (s *HTTPService) Get(ctx context.Context, token, orderID string) (*Order, error) {
	var payload struct {
		Order Order `json:"order"`
	}
	err := s.client.GetJSON(ctx, "orders.get", token, orderPath(orderID), url.Values{"fields": {DetailFields}}, &payload)
	if err != nil {
		return nil, mapError(err)
	}
	return &payload.Order, nil
}

// CancelFulfillment implements Service.
func (s *HTTPService) CancelFulfillment(ctx context.Context, token, orderID, fulfillmentID string) error {
	endpoint := fulfillmentPath(orderID, fulfillmentID) + "/cancel"
	if err := s.client.SendJSON(ctx, "orders.cancel_fulfillment", http.MethodPost, token, endpoint, struct{}{}, nil); err != nil {
		return mapError(err)
	}
	return nil
}

// MarkShipped implements Service.
func (s *HTTPService) MarkShipped(ctx context.Context, token, orderID, fulfillmentID string, items []FulfillmentItem) error {
	type shipmentItem struct {
		ID       string  `json:"id"`
		Quantity float64 `json:"quantity"`
	}
	body := struct {
		Items []shipmentItem `json:"items"`
	}{Items: make([]shipmentItem, 0, len(items))}
	for _, item := range items {
		body.Items = append(body.Items, shipmentItem{ID: item.LineItemID, Quantity: item.Quantity.Float()})
	}
	endpoint := fulfillmentPath(orderID, fulfillmentID) + "/shipments"
	if err := s.client.SendJSON(ctx, "orders.mark_shipped", http.MethodPost, token, endpoint, body, nil); err != nil {
		return mapError(err)
	}
	return nil
}

// MarkDelivered implements Service.
func (s *HTTPService) MarkDelivered(ctx context.Context, token, orderID, fulfillmentID string) error {
	endpoint := fulfillmentPath(orderID, fulfillmentID) + "/mark-as-delivered"
	if err := s.client.SendJSON(ctx, "orders.mark_delivered", http.MethodPost, token, endpoint, struct{}{}, nil); err != nil {
		return mapError(err)
	}
	return nil
}

// Label implements Service.
func (s *HTTPService) Label(ctx context.Context, token, orderID, fulfillmentID string) (io.ReadCloser, string, error) {
	body, contentType, err := s.client.Stream(ctx, "orders.label", token, fulfillmentPath(orderID, fulfillmentID)+"/postex-label")
	if err != nil {
		return nil, "", mapError(err)
	}
	if contentType == "" {
		contentType = "application/pdf"
	}
	return body, contentType, nil
}

func orderPath(orderID string) string {
	return "/vendor/orders/" + url.PathEscape(strings.TrimSpace(orderID))
}

func fulfillmentPath(orderID, fulfillmentID string) string {
	return orderPath(orderID) + "/fulfillments/" + url.PathEscape(strings.TrimSpace(fulfillmentID))
}

func mapError(err error) error {
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
