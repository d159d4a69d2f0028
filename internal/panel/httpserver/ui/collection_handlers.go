package ui

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/collection"
	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	collectiontpl "github.com/MKdir98/vendor-panel/internal/panel/templates/collection"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// CollectionPage renders the Postex collection page.
func (h *Handlers) CollectionPage(w http.ResponseWriter, r *http.Request) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	list, wf, err := h.collectionState(r, tok)
	if err != nil {
		observability.FromContext(r.Context()).Error("collection: load candidates failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}
	chrome := Chrome(r, layout.NavCollection)
	Render(w, r, http.StatusOK, collectiontpl.Page(chrome, h.collectionData(r, list, wf)))
}

// CollectionToggle flips one order in the selection.
func (h *Handlers) CollectionToggle(w http.ResponseWriter, r *http.Request) {
	h.collectionUpdate(w, r, func(r *http.Request, list []orders.Order, wf *collection.Workflow) {
		id := strings.TrimSpace(r.PostFormValue("order_id"))
		for _, o := range list {
			if o.ID == id {
				wf.ToggleSelect(id)
				return
			}
		}
	})
}

// CollectionToggleAll selects every candidate, or clears a full selection.
func (h *Handlers) CollectionToggleAll(w http.ResponseWriter, r *http.Request) {
	h.collectionUpdate(w, r, func(_ *http.Request, list []orders.Order, wf *collection.Workflow) {
		wf.ToggleAll(orders.IDs(list))
	})
}

// CollectionSelectMore discards the last result and returns to the list.
func (h *Handlers) CollectionSelectMore(w http.ResponseWriter, r *http.Request) {
	h.collectionUpdate(w, r, func(_ *http.Request, _ []orders.Order, wf *collection.Workflow) {
		wf.SelectMore()
	})
}

// CollectionRequest submits the selected orders as one collection request.
func (h *Handlers) CollectionRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	l := custommw.LocalizerFromContext(ctx)
	logger := observability.FromContext(ctx)

	if wf := h.store.Get(sessionID(r)); wf.Phase() == collection.Browsing && len(wf.Selected()) == 0 {
		addToasts(w, toast{Message: l.T("orders.postexCollection.error.noSelection"), Tone: toneDanger})
		if !custommw.IsHTMXRequest(ctx) {
			http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(ctx), "/orders/collection"), http.StatusSeeOther)
			return
		}
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusOK)
		return
	}

	list, wf, err := h.collectionState(r, tok)
	if err != nil {
		logger.Error("collection: load candidates failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}

	result, err := collection.Submit(ctx, wf, h.collection, tok)
	switch {
	case errors.Is(err, collection.ErrEmptySelection):
		addToasts(w, toast{Message: l.T("orders.postexCollection.error.noSelection"), Tone: toneDanger})
	case errors.Is(err, collection.ErrSubmissionInFlight):
		addToasts(w, toast{Message: l.T("orders.postexCollection.error.inFlight"), Tone: toneWarning})
	case err != nil:
		logger.Warn("collection: request failed", zap.Int("orders", len(wf.Selected())), zap.Error(err))
		h.metrics.ObserveCollection("error", 0)
		addToasts(w, toast{Message: backendMessage(l, err, "orders.postexCollection.error.failed"), Tone: toneDanger})
	default:
		outcome := "success"
		if len(result.Errors) > 0 {
			outcome = "partial"
		}
		logger.Info("collection: request completed",
			zap.Int("shipments", len(result.Shipments)),
			zap.Int("errors", len(result.Errors)),
		)
		h.metrics.ObserveCollection(outcome, len(result.Shipments))
		addToasts(w, notificationToasts(collection.Notifications(result, l))...)

		if refreshed, err := h.collection.Candidates(ctx, tok); err == nil {
			list = refreshed
		} else {
			logger.Warn("collection: refresh candidates failed", zap.Error(err))
		}
	}

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(ctx), "/orders/collection"), http.StatusSeeOther)
		return
	}
	Render(w, r, http.StatusOK, collectiontpl.Panel(h.collectionData(r, list, wf)))
}

type collectionMutation func(r *http.Request, list []orders.Order, wf *collection.Workflow)

func (h *Handlers) collectionUpdate(w http.ResponseWriter, r *http.Request, mutate collectionMutation) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	list, wf, err := h.collectionState(r, tok)
	if err != nil {
		observability.FromContext(r.Context()).Error("collection: load candidates failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}
	mutate(r, list, wf)

	if !custommw.IsHTMXRequest(r.Context()) {
		http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(r.Context()), "/orders/collection"), http.StatusSeeOther)
		return
	}
	Render(w, r, http.StatusOK, collectiontpl.Panel(h.collectionData(r, list, wf)))
}

// collectionState loads the candidates and the session's workflow, dropping
// selected ids that are no longer candidates.
func (h *Handlers) collectionState(r *http.Request, tok string) ([]orders.Order, *collection.Workflow, error) {
	list, err := h.collection.Candidates(r.Context(), tok)
	if err != nil {
		return nil, nil, err
	}
	wf := h.store.Get(sessionID(r))
	if wf.Phase() == collection.Browsing {
		wf.Retain(orders.IDs(list))
	}
	return list, wf, nil
}

func (h *Handlers) collectionData(r *http.Request, list []orders.Order, wf *collection.Workflow) collectiontpl.PanelData {
	ctx := r.Context()
	return collectiontpl.Build(collectiontpl.Input{
		L:         custommw.LocalizerFromContext(ctx),
		BasePath:  custommw.BasePathFromContext(ctx),
		Orders:    list,
		Workflow:  wf,
		LabelBase: h.labelBase,
	})
}

// DropCollection forgets the collection workflow of a session.
func (h *Handlers) DropCollection(sessionID string) {
	if sessionID != "" {
		h.store.Drop(sessionID)
	}
}
