package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
	orderstpl "github.com/MKdir98/vendor-panel/internal/panel/templates/orders"
)

// OrderDetail renders the order page with its fulfillment section.
func (h *Handlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	in, err := h.loadDetail(r.Context(), tok, chi.URLParam(r, "orderID"))
	if err != nil {
		h.renderOrderError(w, r, err)
		return
	}
	chrome := Chrome(r, layout.NavCollection)
	Render(w, r, http.StatusOK, orderstpl.Detail(chrome, orderstpl.BuildDetail(in)))
}

// FulfillmentCancel cancels a fulfillment unless it has already shipped.
func (h *Handlers) FulfillmentCancel(w http.ResponseWriter, r *http.Request) {
	h.fulfillmentAction(w, r, func(ctx context.Context, tok string, o *orders.Order, f orders.Fulfillment, l *i18n.Localizer) (toast, error) {
		if status.Actions(f.Markers(), h.courier).CancelBlocked {
			return toast{Message: l.T("orders.fulfillment.toast.fulfillmentShipped"), Tone: toneWarning}, nil
		}
		err := h.orders.CancelFulfillment(ctx, tok, o.ID, f.ID)
		if errors.Is(err, orders.ErrAlreadyShipped) {
			return toast{Message: l.T("orders.fulfillment.toast.fulfillmentShipped"), Tone: toneWarning}, nil
		}
		if err != nil {
			return toast{}, err
		}
		return toast{Message: l.T("orders.fulfillment.toast.canceled"), Tone: toneSuccess}, nil
	})
}

// FulfillmentShip records a shipment covering the fulfillment's items.
func (h *Handlers) FulfillmentShip(w http.ResponseWriter, r *http.Request) {
	h.fulfillmentAction(w, r, func(ctx context.Context, tok string, o *orders.Order, f orders.Fulfillment, l *i18n.Localizer) (toast, error) {
		if err := h.orders.MarkShipped(ctx, tok, o.ID, f.ID, f.LineItems()); err != nil {
			return toast{}, err
		}
		return toast{Message: l.T("orders.fulfillment.toast.shipped"), Tone: toneSuccess}, nil
	})
}

// FulfillmentDeliver marks a fulfillment delivered, or picked up for pickup
// fulfillments.
func (h *Handlers) FulfillmentDeliver(w http.ResponseWriter, r *http.Request) {
	h.fulfillmentAction(w, r, func(ctx context.Context, tok string, o *orders.Order, f orders.Fulfillment, l *i18n.Localizer) (toast, error) {
		if err := h.orders.MarkDelivered(ctx, tok, o.ID, f.ID); err != nil {
			return toast{}, err
		}
		key := "orders.fulfillment.toast.fulfillmentDelivered"
		if status.Card(f.Markers(), h.courier).Pickup {
			key = "orders.fulfillment.toast.fulfillmentPickedUp"
		}
		return toast{Message: l.T(key), Tone: toneSuccess}, nil
	})
}

// FulfillmentLabel streams the courier label for printing.
func (h *Handlers) FulfillmentLabel(w http.ResponseWriter, r *http.Request) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	orderID := chi.URLParam(r, "orderID")
	fulfillmentID := chi.URLParam(r, "fulfillmentID")

	body, contentType, err := h.orders.Label(r.Context(), tok, orderID, fulfillmentID)
	if err != nil {
		observability.FromContext(r.Context()).Warn("orders: fetch label failed",
			zap.String("order_id", orderID),
			zap.String("fulfillment_id", fulfillmentID),
			zap.Error(err),
		)
		h.renderOrderError(w, r, err)
		return
	}
	defer body.Close()

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="label-`+url.PathEscape(fulfillmentID)+`.pdf"`)
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Header().Del("Pragma")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		observability.FromContext(r.Context()).Warn("orders: stream label interrupted", zap.Error(err))
	}
}

type fulfillmentOp func(ctx context.Context, tok string, o *orders.Order, f orders.Fulfillment, l *i18n.Localizer) (toast, error)

func (h *Handlers) fulfillmentAction(w http.ResponseWriter, r *http.Request, op fulfillmentOp) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	l := custommw.LocalizerFromContext(ctx)
	orderID := chi.URLParam(r, "orderID")
	fulfillmentID := chi.URLParam(r, "fulfillmentID")

	order, err := h.orders.Get(ctx, tok, orderID)
	if err != nil {
		h.renderOrderError(w, r, err)
		return
	}
	var target *orders.Fulfillment
	for i := range order.Fulfillments {
		if order.Fulfillments[i].ID == fulfillmentID {
			target = &order.Fulfillments[i]
			break
		}
	}
	if target == nil {
		NotFound(w, r)
		return
	}

	result, err := op(ctx, tok, order, *target, l)
	if err != nil {
		observability.FromContext(ctx).Warn("orders: fulfillment action failed",
			zap.String("order_id", orderID),
			zap.String("fulfillment_id", fulfillmentID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		result = toast{Message: backendMessage(l, err, "errors.generic"), Tone: toneDanger}
	}

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(ctx), "/orders/"+url.PathEscape(orderID)), http.StatusSeeOther)
		return
	}

	in, err := h.loadDetail(ctx, tok, orderID)
	if err != nil {
		h.renderOrderError(w, r, err)
		return
	}
	addToasts(w, result)
	Render(w, r, http.StatusOK, orderstpl.Section(orderstpl.BuildSection(in)))
}

// loadDetail fetches the order and the seller's stock locations concurrently.
// Locations only label the "shipping from" line, so failing to load them is
// not fatal.
func (h *Handlers) loadDetail(ctx context.Context, tok, orderID string) (orderstpl.DetailInput, error) {
	var (
		order   *orders.Order
		stocked []locations.StockLocation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := h.orders.Get(gctx, tok, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	g.Go(func() error {
		list, err := h.stock.List(gctx, tok)
		if err != nil {
			observability.FromContext(ctx).Warn("orders: load stock locations failed", zap.Error(err))
			return nil
		}
		stocked = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return orderstpl.DetailInput{}, err
	}
	locByID := make(map[string]locations.StockLocation, len(stocked))
	for _, loc := range stocked {
		locByID[loc.ID] = loc
	}

	return orderstpl.DetailInput{
		L:         custommw.LocalizerFromContext(ctx),
		Order:     *order,
		Locations: locByID,
		Courier:   h.courier,
		BasePath:  custommw.BasePathFromContext(ctx),
	}, nil
}

func (h *Handlers) renderOrderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, orders.ErrNotFound) {
		RenderError(w, r, http.StatusNotFound, "orders.detail.notFound")
		return
	}
	observability.FromContext(r.Context()).Error("orders: backend request failed", zap.Error(err))
	RenderError(w, r, backendStatus(err), "errors.backendUnavailable")
}
