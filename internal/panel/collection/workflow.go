// Package collection implements the courier collection workflow: selecting
// eligible orders, submitting one batch request and presenting the per-order
// outcome.
package collection

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrEmptySelection is returned by Begin when nothing is selected.
	ErrEmptySelection = errors.New("collection: no orders selected")
	// ErrSubmissionInFlight is returned by Begin while a request is pending.
	ErrSubmissionInFlight = errors.New("collection: submission already in flight")
)

// Phase is the workflow state.
type Phase int

const (
	// Browsing is the initial state: orders can be selected.
	Browsing Phase = iota
	// Submitting means a batch request is in flight.
	Submitting
	// Resulted means the last response is displayed.
	Resulted
)

func (p Phase) String() string {
	switch p {
	case Browsing:
		return "browsing"
	case Submitting:
		return "submitting"
	case Resulted:
		return "resulted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Shipment is a successfully created courier shipment.
type Shipment struct {
	OrderID        string `json:"order_id"`
	FulfillmentID  string `json:"fulfillment_id"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// ShipmentError is a per-order failure.
type ShipmentError struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// Result is the backend response to a collection request. Shipments and
// Errors may both be populated.
type Result struct {
	Shipments []Shipment      `json:"shipments"`
	Errors    []ShipmentError `json:"errors"`
}

// Submission is what Begin hands to the caller for the network call.
type Submission struct {
	Key      string
	OrderIDs []string
}

// Workflow is one user's collection state. It is safe for concurrent use.
type Workflow struct {
	mu        sync.Mutex
	phase     Phase
	selection Selection
	result    *Result
	pending   string
}

// NewWorkflow returns a workflow in the Browsing phase.
func NewWorkflow() *Workflow {
	return &Workflow{}
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// ToggleSelect flips membership of orderID.
func (w *Workflow) ToggleSelect(orderID string) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selection.Toggle(orderID)
}

// ToggleAll clears the selection when every eligible order is selected,
// otherwise selects all eligible ids in view order.
func (w *Workflow) ToggleAll(eligible []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection.Len() == len(eligible) {
		w.selection.Clear()
		return
	}
	w.selection.SetAll(eligible)
}

// Retain drops selected ids that are no longer in view.
func (w *Workflow) Retain(visible []string) {
	keep := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		keep[id] = struct{}{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := w.selection.IDs()
	filtered := ids[:0]
	for _, id := range ids {
		if _, ok := keep[id]; ok {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) != w.selection.Len() {
		w.selection.SetAll(filtered)
	}
}

// Selected returns the selected ids in insertion order.
func (w *Workflow) Selected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.IDs()
}

// IsSelected reports whether orderID is selected.
func (w *Workflow) IsSelected(orderID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Has(orderID)
}

// AllSelected reports whether the selection covers every eligible order.
func (w *Workflow) AllSelected(eligible int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return eligible > 0 && w.selection.Len() == eligible
}

// CanRequest reports whether the request button is enabled.
func (w *Workflow) CanRequest() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase == Browsing && w.selection.Len() > 0
}

// Begin moves to Submitting and returns the ordered ids with a fresh
// idempotency key. Any previous result is discarded.
func (w *Workflow) Begin() (Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == Submitting {
		return Submission{}, ErrSubmissionInFlight
	}
	if w.selection.Len() == 0 {
		return Submission{}, ErrEmptySelection
	}
	w.result = nil
	w.phase = Submitting
	w.pending = ulid.Make().String()
	return Submission{Key: w.pending, OrderIDs: w.selection.IDs()}, nil
}

// Complete stores the response verbatim and moves to Resulted. A completion
// for a submission other than the pending one is ignored.
func (w *Workflow) Complete(key string, result Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != Submitting || key != w.pending {
		return
	}
	w.result = &result
	w.phase = Resulted
	w.pending = ""
}

// Fail returns to Browsing with the selection intact.
func (w *Workflow) Fail(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != Submitting || key != w.pending {
		return
	}
	w.phase = Browsing
	w.pending = ""
}

// Result returns a copy of the stored result, or nil.
func (w *Workflow) Result() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil
	}
	copied := Result{
		Shipments: append([]Shipment(nil), w.result.Shipments...),
		Errors:    append([]ShipmentError(nil), w.result.Errors...),
	}
	return &copied
}

// SelectMore clears the result and the selection and returns to Browsing.
func (w *Workflow) SelectMore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == Submitting {
		return
	}
	w.result = nil
	w.selection.Clear()
	w.phase = Browsing
}
