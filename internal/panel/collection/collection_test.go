package collection

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
)

type keyTranslator struct{}

func (keyTranslator) T(key string, args ...any) string {
	if len(args) == 2 {
		b, _ := json.Marshal(args[1])
		return key + "=" + string(b)
	}
	return key
}

func TestSelectionKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	var s Selection
	require.True(t, s.Toggle("c"))
	require.True(t, s.Toggle("a"))
	require.True(t, s.Toggle("b"))
	require.False(t, s.Toggle("a"))
	require.True(t, s.Toggle("a"))
	require.Equal(t, []string{"c", "b", "a"}, s.IDs())
	require.True(t, s.Has("b"))

	s.SetAll([]string{"x", "y", "x"})
	require.Equal(t, []string{"x", "y"}, s.IDs())
	s.Clear()
	require.Zero(t, s.Len())
}

func TestToggleAll(t *testing.T) {
	t.Parallel()

	w := NewWorkflow()
	eligible := []string{"o1", "o2", "o3"}

	w.ToggleAll(eligible)
	require.Equal(t, eligible, w.Selected())
	require.True(t, w.AllSelected(len(eligible)))

	w.ToggleAll(eligible)
	require.Empty(t, w.Selected())

	w.ToggleSelect("o2")
	w.ToggleAll(eligible)
	require.Equal(t, eligible, w.Selected())
}

func TestEmptyRequestNeverCallsBackend(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(nil, status.DefaultCourier)
	w := NewWorkflow()

	_, err := Submit(context.Background(), w, svc, "tok")
	require.True(t, errors.Is(err, ErrEmptySelection))
	require.Zero(t, svc.RequestCount())
	require.Equal(t, Browsing, w.Phase())
}

func TestPartialResultIsKeptUntilSelectMore(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(nil, status.DefaultCourier)
	svc.Respond = func(ids []string) (Result, error) {
		return Result{
			Shipments: []Shipment{
				{OrderID: "o1", TrackingNumber: "T1", LabelURL: "/labels/o1.pdf"},
				{OrderID: "o2", TrackingNumber: "T2", LabelURL: "/labels/o2.pdf"},
			},
			Errors: []ShipmentError{{OrderID: "o3", Message: "address incomplete"}},
		}, nil
	}

	w := NewWorkflow()
	w.ToggleSelect("o1")
	w.ToggleSelect("o2")
	w.ToggleSelect("o3")

	result, err := Submit(context.Background(), w, svc, "tok")
	require.NoError(t, err)
	require.Equal(t, Resulted, w.Phase())
	require.Equal(t, [][]string{{"o1", "o2", "o3"}}, svc.Requests)

	notes := Notifications(result, keyTranslator{})
	require.Equal(t, []Notification{
		{Tone: ToneSuccess, Message: "orders.postexCollection.toast.success=2"},
		{Tone: ToneDanger, Message: "o3: address incomplete"},
	}, notes)

	// The result and selection survive further reads.
	require.Len(t, w.Result().Shipments, 2)
	require.Len(t, w.Selected(), 3)

	w.SelectMore()
	require.Nil(t, w.Result())
	require.Empty(t, w.Selected())
	require.Equal(t, Browsing, w.Phase())
}

func TestFailureKeepsSelection(t *testing.T) {
	t.Parallel()

	svc := NewStaticService(nil, status.DefaultCourier)
	svc.Respond = func([]string) (Result, error) { return Result{}, errors.New("gateway down") }

	w := NewWorkflow()
	w.ToggleSelect("o1")
	_, err := Submit(context.Background(), w, svc, "tok")
	require.EqualError(t, err, "gateway down")
	require.Equal(t, Browsing, w.Phase())
	require.Nil(t, w.Result())
	require.Equal(t, []string{"o1"}, w.Selected())
	require.True(t, w.CanRequest())
}

func TestOnlyOneSubmissionInFlight(t *testing.T) {
	t.Parallel()

	w := NewWorkflow()
	w.ToggleSelect("o1")

	first, err := w.Begin()
	require.NoError(t, err)
	require.NotEmpty(t, first.Key)
	require.False(t, w.CanRequest())

	_, err = w.Begin()
	require.True(t, errors.Is(err, ErrSubmissionInFlight))

	w.Complete("stale", Result{})
	require.Equal(t, Submitting, w.Phase())

	w.Complete(first.Key, Result{Shipments: []Shipment{{OrderID: "o1"}}})
	require.Equal(t, Resulted, w.Phase())

	second, err := w.Begin()
	require.NoError(t, err)
	require.NotEqual(t, first.Key, second.Key)
	require.Nil(t, w.Result(), "a new submission clears the previous result")
}

func TestConcurrentSubmitsIssueOneRequest(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	svc := NewStaticService(nil, status.DefaultCourier)
	svc.Respond = func(ids []string) (Result, error) {
		<-release
		return Result{}, nil
	}

	w := NewWorkflow()
	w.ToggleSelect("o1")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Submit(context.Background(), w, svc, "tok")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return w.Phase() == Submitting }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(errs) == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	var inFlight int
	for err := range errs {
		if errors.Is(err, ErrSubmissionInFlight) {
			inFlight++
		}
	}
	require.Equal(t, 1, inFlight)
	require.Equal(t, 1, svc.RequestCount())
}

func TestRetainDropsVanishedOrders(t *testing.T) {
	t.Parallel()

	w := NewWorkflow()
	w.ToggleAll([]string{"a", "b", "c"})
	w.Retain([]string{"c", "a"})
	require.Equal(t, []string{"a", "c"}, w.Selected())
}

func TestLabelURLs(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://api.example.ir/labels/1.pdf", ResolveLabelURL("https://api.example.ir/", "/labels/1.pdf"))
	require.Equal(t, "https://cdn.example.ir/x.pdf", ResolveLabelURL("https://api.example.ir", "https://cdn.example.ir/x.pdf"))
	require.Empty(t, ResolveLabelURL("https://api.example.ir", ""))

	r := Result{Shipments: []Shipment{{LabelURL: "/a.pdf"}, {LabelURL: ""}, {LabelURL: "/b.pdf"}}}
	require.Equal(t, []string{"https://api.example.ir/a.pdf", "https://api.example.ir/b.pdf"}, LabelURLs(r, "https://api.example.ir/"))
}

func TestStoreIsPerSession(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)

	a := store.Get("s1")
	a.ToggleSelect("o1")
	require.Same(t, a, store.Get("s1"))
	require.Empty(t, store.Get("s2").Selected())
	require.Equal(t, 2, store.Len())

	store.Drop("s1")
	require.Equal(t, 1, store.Len())
	require.Empty(t, store.Get("s1").Selected())
}

func TestStoreEvictsIdleWorkflows(t *testing.T) {
	t.Parallel()

	store := NewStore(20 * time.Millisecond)
	store.Get("s1").ToggleSelect("o1")

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.Empty(t, store.Get("s1").Selected())
}

func TestStoreKeepsWorkflowMidSubmission(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	wf := store.Get("s1")
	wf.ToggleSelect("o1")
	_, err := wf.Begin()
	require.NoError(t, err)

	store.items.Delete("s1")
	require.Same(t, wf, store.Get("s1"), "in-flight workflows survive eviction")

	store.Drop("s1")
	require.Zero(t, store.Len())
}

func TestSubmitPanicReleasesWorkflow(t *testing.T) {
	t.Parallel()

	wf := NewWorkflow()
	wf.ToggleSelect("o1")
	svc := NewStaticService(nil, status.DefaultCourier)
	svc.Respond = func([]string) (Result, error) { panic("boom") }

	require.PanicsWithValue(t, "boom", func() {
		_, _ = Submit(context.Background(), wf, svc, "tok")
	})
	require.Equal(t, Browsing, wf.Phase())
	require.Equal(t, []string{"o1"}, wf.Selected())
	_, err := wf.Begin()
	require.NoError(t, err)
}

func TestGuard(t *testing.T) {
	t.Parallel()

	one := orders.Amount(1)
	full := orders.Order{
		ID:              "full",
		Status:          status.OrderPending,
		Items:           []orders.LineItem{{Quantity: &one, RequiresShipping: true}},
		ShippingMethods: []orders.ShippingMethod{{ShippingOption: &orders.ShippingOption{ProviderID: "postex_postex"}}},
	}
	manual := full
	manual.ID = "manual"
	manual.ShippingMethods = []orders.ShippingMethod{{ShippingOption: &orders.ShippingOption{ProviderID: "manual_manual"}}}
	projected := orders.Order{ID: "projected", Status: status.OrderPending}
	canceled := orders.Order{ID: "canceled", Status: status.OrderCanceled}

	got := Guard([]orders.Order{full, manual, projected, canceled}, status.DefaultCourier)
	require.Equal(t, []string{"full", "projected"}, orders.IDs(got))
}

func TestHTTPService(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotBody struct {
		OrderIDs []string `json:"order_ids"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vendor/orders/postex-collection", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, CandidateFields, r.URL.Query().Get("fields"))
			_, _ = io.WriteString(w, `{"orders":[{"id":"o1","status":"pending"},{"id":"o2","status":"canceled"}]}`)
		case http.MethodPost:
			gotKey = r.Header.Get("Idempotency-Key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = io.WriteString(w, `{"shipments":[{"order_id":"o1","fulfillment_id":"f1","tracking_number":"T1","label_url":"/l/o1"}],"errors":[{"order_id":"o9","message":"nope"}]}`)
		}
	}))
	t.Cleanup(ts.Close)

	client, err := backend.New(ts.URL, backend.Options{HTTPClient: ts.Client()})
	require.NoError(t, err)
	svc, err := NewHTTPService(client, status.DefaultCourier)
	require.NoError(t, err)

	candidates, err := svc.Candidates(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, []string{"o1"}, orders.IDs(candidates))

	result, err := svc.Request(context.Background(), "tok", "01KEY", []string{"o1", "o9"})
	require.NoError(t, err)
	require.Equal(t, "01KEY", gotKey)
	require.Equal(t, []string{"o1", "o9"}, gotBody.OrderIDs)
	require.Len(t, result.Shipments, 1)
	require.Equal(t, "T1", result.Shipments[0].TrackingNumber)
	require.Len(t, result.Errors, 1)
}
