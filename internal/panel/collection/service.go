package collection

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

const endpoint = "/vendor/orders/postex-collection"

// CandidateFields is the projection requested for the candidate list.
const CandidateFields = "id,display_id,email,status,total,currency_code,items_summary,created_at," +
	"*items,*items.detail,*shipping_methods,*shipping_methods.shipping_option"

// Service lists collection candidates and submits collection requests.
type Service interface {
	// Candidates returns the orders the courier can collect.
	Candidates(ctx context.Context, token string) ([]orders.Order, error)

	// Request submits one batch collection for orderIDs. key is sent as the
	// idempotency key.
	Request(ctx context.Context, token, key string, orderIDs []string) (Result, error)
}

// Guard re-applies the eligibility predicate to a backend-filtered list.
// Orders delivered without items or shipping methods are trusted as is.
func Guard(list []orders.Order, courier status.Courier) []orders.Order {
	out := make([]orders.Order, 0, len(list))
	for _, o := range list {
		if len(o.Items) == 0 && len(o.ShippingMethods) == 0 {
			if !o.IsCanceled() {
				out = append(out, o)
			}
			continue
		}
		if orders.IsCollectionEligible(o, courier) {
			out = append(out, o)
		}
	}
	return out
}

// HTTPService implements Service over the backend vendor API.
type HTTPService struct {
	client  *backend.Client
	courier status.Courier
}

// NewHTTPService constructs an HTTPService.
func NewHTTPService(client *backend.Client, courier status.Courier) (*HTTPService, error) {
	if client == nil {
		return nil, errors.New("collection: backend client is required")
	}
	return &HTTPService{client: client, courier: courier}, nil
}

// Candidates implements Service.
func (s *HTTPService) Candidates(ctx context.Context, token string) ([]orders.Order, error) {
	var payload struct {
		Orders []orders.Order `json:"orders"`
	}
	if err := s.client.GetJSON(ctx, "collection.candidates", token, endpoint, url.Values{"fields": {CandidateFields}}, &payload); err != nil {
		return nil, err
	}
	return Guard(payload.Orders, s.courier), nil
}

// Request implements Service.
func (s *HTTPService) Request(ctx context.Context, token, key string, orderIDs []string) (Result, error) {
	body := struct {
		OrderIDs []string `json:"order_ids"`
	}{OrderIDs: orderIDs}

	var result Result
	var opts []backend.RequestOption
	if key != "" {
		opts = append(opts, backend.WithIdempotencyKey(key))
	}
	if err := s.client.SendJSON(ctx, "collection.request", http.MethodPost, token, endpoint, body, &result, opts...); err != nil {
		return Result{}, err
	}
	return result, nil
}

// StaticService serves collection data from an in-memory order list.
type StaticService struct {
	mu      sync.Mutex
	orders  []orders.Order
	courier status.Courier

	// Respond, when set, produces the result for a request.
	Respond func(orderIDs []string) (Result, error)
	// Requests records every submitted batch.
	Requests [][]string
}

// NewStaticService filters list with the shared eligibility predicate.
func NewStaticService(list []orders.Order, courier status.Courier) *StaticService {
	return &StaticService{orders: list, courier: courier}
}

// Candidates implements Service.
func (s *StaticService) Candidates(context.Context, string) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return orders.FilterCollectionEligible(s.orders, s.courier), nil
}

// Request implements Service. Without Respond every order yields a shipment.
func (s *StaticService) Request(_ context.Context, _ string, _ string, orderIDs []string) (Result, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, append([]string(nil), orderIDs...))
	respond := s.Respond
	s.mu.Unlock()

	if respond != nil {
		return respond(orderIDs)
	}
	var r Result
	for _, id := range orderIDs {
		r.Shipments = append(r.Shipments, Shipment{
			OrderID:        id,
			FulfillmentID:  "ful_" + id,
			TrackingNumber: "PX-" + id,
			LabelURL:       endpoint + "/labels/" + url.PathEscape(id) + ".pdf",
		})
	}
	return r, nil
}

// RequestCount returns how many batches were submitted.
func (s *StaticService) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// Submit runs one collection request for the workflow's current selection.
// An empty selection fails without calling svc; a failed call leaves the
// workflow browsing with its selection intact.
func Submit(ctx context.Context, w *Workflow, svc Service, token string) (Result, error) {
	sub, err := w.Begin()
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if p := recover(); p != nil {
			w.Fail(sub.Key)
			panic(p)
		}
	}()
	result, err := svc.Request(ctx, token, sub.Key, sub.OrderIDs)
	if err != nil {
		w.Fail(sub.Key)
		return Result{}, err
	}
	w.Complete(sub.Key, result)
	return result, nil
}
