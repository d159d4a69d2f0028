package orders

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

// StaticService serves deterministic orders for local development and tests.
type StaticService struct {
	mu     sync.Mutex
	orders map[string]*Order
	// Calls records mutations as "<op>:<orderID>/<fulfillmentID>".
	Calls []string
}

// NewStaticService returns a StaticService seeded with sample orders.
func NewStaticService() *StaticService {
	return NewStaticServiceWith(SampleOrders(time.Now())...)
}

// NewStaticServiceWith returns a StaticService holding exactly the given orders.
func NewStaticServiceWith(list ...Order) *StaticService {
	s := &StaticService{orders: map[string]*Order{}}
	for i := range list {
		o := list[i]
		s.orders[o.ID] = &o
	}
	return s
}

// Get implements Service.
func (s *StaticService) Get(_ context.Context, _ string, orderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

// List returns every order sorted by id.
func (s *StaticService) List() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sortByID(out)
	return out
}

// CancelFulfillment implements Service.
func (s *StaticService) CancelFulfillment(_ context.Context, _ string, orderID, fulfillmentID string) error {
	return s.mutate("cancel", orderID, fulfillmentID, func(f *Fulfillment, now time.Time) error {
		if f.ShippedAt != nil {
			return ErrAlreadyShipped
		}
		f.CanceledAt = &now
		return nil
	})
}

// MarkShipped implements Service.
func (s *StaticService) MarkShipped(_ context.Context, _ string, orderID, fulfillmentID string, _ []FulfillmentItem) error {
	return s.mutate("ship", orderID, fulfillmentID, func(f *Fulfillment, now time.Time) error {
		f.ShippedAt = &now
		return nil
	})
}

// MarkDelivered implements Service.
func (s *StaticService) MarkDelivered(_ context.Context, _ string, orderID, fulfillmentID string) error {
	return s.mutate("deliver", orderID, fulfillmentID, func(f *Fulfillment, now time.Time) error {
		f.DeliveredAt = &now
		return nil
	})
}

// Label implements Service.
func (s *StaticService) Label(_ context.Context, _ string, orderID, fulfillmentID string) (io.ReadCloser, string, error) {
	if _, err := s.find(orderID, fulfillmentID); err != nil {
		return nil, "", err
	}
	doc := "%PDF-1.4\n% label " + orderID + "/" + fulfillmentID + "\n%%EOF\n"
	return io.NopCloser(strings.NewReader(doc)), "application/pdf", nil
}

func (s *StaticService) find(orderID, fulfillmentID string) (*Fulfillment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	for i := range o.Fulfillments {
		if o.Fulfillments[i].ID == fulfillmentID {
			return &o.Fulfillments[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *StaticService) mutate(op, orderID, fulfillmentID string, fn func(*Fulfillment, time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	for i := range o.Fulfillments {
		if o.Fulfillments[i].ID != fulfillmentID {
			continue
		}
		if err := fn(&o.Fulfillments[i], time.Now()); err != nil {
			return err
		}
		s.Calls = append(s.Calls, op+":"+orderID+"/"+fulfillmentID)
		return nil
	}
	return ErrNotFound
}

func sortByID(list []Order) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// SampleOrders returns representative orders relative to now.
func SampleOrders(now time.Time) []Order {
	qty := func(v float64) *Amount { a := Amount(v); return &a }
	ptr := func(t time.Time) *time.Time { return &t }
	postex := []ShippingMethod{{ID: "sm_1", Name: "پستکس", ShippingOption: &ShippingOption{ID: "so_postex", ProviderID: "postex_postex"}}}

	return []Order{
		{
			ID: "order_01JAXK3M7Q", DisplayID: 1052, Email: "sara@example.ir", CurrencyCode: "irr",
			Status: status.OrderPending, PaymentStatus: status.PaymentCaptured, FulfillmentStatus: status.FulfillmentNotFulfilled,
			Total: 1850000, ItemsSummary: "2× تی‌شرت نخی", CreatedAt: now.Add(-9 * time.Hour),
			Items: []LineItem{
				{ID: "item_1", Title: "تی‌شرت نخی", VariantSKU: "TS-001", UnitPrice: 925000, Subtotal: 1850000, Quantity: qty(2), RequiresShipping: true, Detail: &LineItemDetail{FulfilledQuantity: qty(0)}},
			},
			ShippingMethods: postex,
			SplitPayment:    &SplitPayment{AuthorizedAmount: 1850000, CapturedAmount: 1850000, Status: status.PaymentCaptured, CurrencyCode: "irr"},
		},
		{
			ID: "order_01JAXK4B2R", DisplayID: 1053, Email: "reza@example.ir", CurrencyCode: "irr",
			Status: status.OrderPending, PaymentStatus: status.PaymentAuthorized, FulfillmentStatus: status.FulfillmentPartiallyFulfilled,
			Total: 3200000, ItemsSummary: "1× کتاب، 3× دفتر", CreatedAt: now.Add(-6 * time.Hour),
			Items: []LineItem{
				{ID: "item_2", Title: "کتاب", UnitPrice: 1400000, Subtotal: 1400000, Quantity: qty(1), RequiresShipping: true, Detail: &LineItemDetail{FulfilledQuantity: qty(1)}},
				{ID: "item_3", Title: "دفتر", UnitPrice: 600000, Subtotal: 1800000, Quantity: qty(3), RequiresShipping: true, Detail: &LineItemDetail{FulfilledQuantity: qty(1)}},
			},
			Fulfillments: []Fulfillment{
				{
					ID: "ful_01", ProviderID: "postex_postex", LocationID: "sloc_tehran", ShippingOptionTypeID: "postex-pickup",
					RequiresShipping: true, CreatedAt: now.Add(-5 * time.Hour),
					Items:  []FulfillmentItem{{LineItemID: "item_2", Title: "کتاب", Quantity: 1}, {LineItemID: "item_3", Title: "دفتر", Quantity: 1}},
					Labels: []Label{{TrackingNumber: "PX-884201", TrackingURL: "https://postex.ir/tracking/PX-884201"}},
				},
			},
			ShippingMethods: postex,
			SplitPayment:    &SplitPayment{AuthorizedAmount: 3200000, CapturedAmount: 2000000, Status: status.PaymentPartiallyCaptured, CurrencyCode: "irr"},
		},
		{
			ID: "order_01JAXK5C9S", DisplayID: 1054, Email: "mina@example.ir", CurrencyCode: "irr",
			Status: status.OrderCompleted, PaymentStatus: status.PaymentCaptured, FulfillmentStatus: status.FulfillmentDelivered,
			Total: 540000, CreatedAt: now.Add(-72 * time.Hour),
			Items: []LineItem{
				{ID: "item_4", Title: "ماگ", UnitPrice: 540000, Subtotal: 540000, Quantity: qty(1), RequiresShipping: true, Detail: &LineItemDetail{FulfilledQuantity: qty(1)}},
			},
			Fulfillments: []Fulfillment{
				{
					ID: "ful_02", ProviderID: "manual_manual", RequiresShipping: true, CreatedAt: now.Add(-70 * time.Hour),
					ShippedAt: ptr(now.Add(-60 * time.Hour)), DeliveredAt: ptr(now.Add(-48 * time.Hour)),
					Items:  []FulfillmentItem{{LineItemID: "item_4", Title: "ماگ", Quantity: 1}},
					Labels: []Label{{TrackingNumber: "MN-1", TrackingURL: "#"}},
				},
			},
			ShippingMethods: []ShippingMethod{{ID: "sm_2", Name: "ارسال دستی", ShippingOption: &ShippingOption{ID: "so_manual", ProviderID: "manual_manual"}}},
		},
	}
}
