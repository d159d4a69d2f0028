package ui

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/shipping"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
	shippingtpl "github.com/MKdir98/vendor-panel/internal/panel/templates/shipping"
)

// ServiceZones lists the service zones shipping options can be created for.
func (h *Handlers) ServiceZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	loc, err := h.stock.Get(ctx, tok, chi.URLParam(r, "locationID"))
	if err != nil {
		h.renderLocationError(w, r, err)
		return
	}
	zones, err := h.shipping.ServiceZones(ctx, tok)
	if err != nil {
		observability.FromContext(ctx).Error("shipping: load service zones failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}
	chrome := Chrome(r, layout.NavLocations)
	Render(w, r, http.StatusOK, shippingtpl.Zones(chrome, shippingtpl.BuildZones(chrome.L, chrome.BasePath, loc.ID, loc.Name, zones)))
}

// ShippingOptionNew renders the create shipping option form for a zone.
func (h *Handlers) ShippingOptionNew(w http.ResponseWriter, r *http.Request) {
	isReturn, _ := strconv.ParseBool(r.URL.Query().Get("is_return"))
	form := shipping.NewForm(r.URL.Query().Get("kind"), chi.URLParam(r, "zoneID"), isReturn)
	h.shippingOptionForm(w, r, form, false)
}

// ShippingOptionCreate validates the form and creates the shipping option.
func (h *Handlers) ShippingOptionCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.shippingOptionForm(w, r, shipping.FormFromValues(r.PostForm), true)
}

func (h *Handlers) shippingOptionForm(w http.ResponseWriter, r *http.Request, form shipping.Form, submit bool) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	logger := observability.FromContext(ctx)
	l := custommw.LocalizerFromContext(ctx)

	loc, err := h.stock.Get(ctx, tok, chi.URLParam(r, "locationID"))
	if err != nil {
		h.renderLocationError(w, r, err)
		return
	}
	choices, err := shipping.LoadChoices(ctx, h.shipping, tok)
	if err != nil {
		logger.Error("shipping: load form choices failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}
	zone, ok := choices.Zone(chi.URLParam(r, "zoneID"))
	if !ok {
		NotFound(w, r)
		return
	}

	in := shippingtpl.FormInput{
		L:          l,
		BasePath:   custommw.BasePathFromContext(ctx),
		CSRFToken:  custommw.CSRFTokenFromContext(ctx),
		LocationID: loc.ID,
		Zone:       zone,
		Form:       form,
		Choices:    choices,
	}
	if !submit {
		h.renderShippingOption(w, r, http.StatusOK, in)
		return
	}

	if errs := form.Validate(); errs != nil {
		in.Errors = errs
		h.renderShippingOption(w, r, http.StatusUnprocessableEntity, in)
		return
	}
	if errs := form.Check(choices); errs != nil {
		in.Errors = errs
		h.renderShippingOption(w, r, http.StatusUnprocessableEntity, in)
		return
	}

	created, err := h.shipping.Create(ctx, tok, form.Input())
	if err != nil {
		logger.Warn("shipping: create option failed", zap.String("zone_id", form.ServiceZoneID), zap.Error(err))
		in.RootError = backendMessage(l, err, "errors.generic")
		h.renderShippingOption(w, r, http.StatusUnprocessableEntity, in)
		return
	}
	if created != nil {
		logger.Info("shipping: option created",
			zap.String("shipping_option_id", created.ID),
			zap.String("provider_id", created.ProviderID),
		)
	}

	zonesPath := layout.Join(in.BasePath, "/locations/"+url.PathEscape(loc.ID)+"/service-zones")
	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, zonesPath, http.StatusSeeOther)
		return
	}
	addToasts(w, toast{Message: l.T("stockLocations.shippingOptions.toast.create"), Tone: toneSuccess})
	in.Form = shipping.NewForm(form.Kind, zone.ID, form.IsReturn)
	h.renderShippingOption(w, r, http.StatusOK, in)
}

func (h *Handlers) renderShippingOption(w http.ResponseWriter, r *http.Request, status int, in shippingtpl.FormInput) {
	data := shippingtpl.BuildForm(in)
	if custommw.IsHTMXRequest(r.Context()) {
		Render(w, r, status, shippingtpl.FormFragment(data))
		return
	}
	Render(w, r, status, shippingtpl.FormPage(Chrome(r, layout.NavLocations), data))
}
