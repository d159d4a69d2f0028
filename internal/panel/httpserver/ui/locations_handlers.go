package ui

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
	locationstpl "github.com/MKdir98/vendor-panel/internal/panel/templates/locations"
)

// LocationsList renders the seller's stock locations.
func (h *Handlers) LocationsList(w http.ResponseWriter, r *http.Request) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	list, err := h.stock.List(r.Context(), tok)
	if err != nil {
		observability.FromContext(r.Context()).Error("locations: list failed", zap.Error(err))
		RenderError(w, r, http.StatusBadGateway, "errors.backendUnavailable")
		return
	}
	chrome := Chrome(r, layout.NavLocations)
	Render(w, r, http.StatusOK, locationstpl.List(chrome, locationstpl.BuildList(chrome.L, chrome.BasePath, list)))
}

// LocationNew renders an empty create form.
func (h *Handlers) LocationNew(w http.ResponseWriter, r *http.Request) {
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	form := locations.NewCreateForm(h.countryCode)
	h.renderLocationForm(w, r, http.StatusOK, tok, locationForm{form: form})
}

// LocationEdit renders the edit form. The state is derived from the stored
// city before the form is shown.
func (h *Handlers) LocationEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "locationID")
	loc, err := h.stock.Get(ctx, tok, id)
	if err != nil {
		h.renderLocationError(w, r, err)
		return
	}
	form, err := h.bootstrapEditForm(ctx, tok, *loc)
	if err != nil {
		observability.FromContext(ctx).Warn("locations: resolve stored city failed", zap.String("location_id", id), zap.Error(err))
	}
	h.renderLocationForm(w, r, http.StatusOK, tok, locationForm{form: form, id: loc.ID})
}

// LocationCreate validates and creates a stock location.
func (h *Handlers) LocationCreate(w http.ResponseWriter, r *http.Request) {
	h.saveLocation(w, r, "")
}

// LocationUpdate validates and updates a stock location.
func (h *Handlers) LocationUpdate(w http.ResponseWriter, r *http.Request) {
	h.saveLocation(w, r, chi.URLParam(r, "locationID"))
}

// LocationCities re-renders the city selector after a state change.
func (h *Handlers) LocationCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	l := custommw.LocalizerFromContext(ctx)
	form := locations.StateChangeFromValues(r.PostForm)

	var (
		cities []locations.City
		errMsg string
	)
	if form.Address.StateID != "" {
		list, err := h.references.Cities(ctx, tok, form.Address.StateID)
		if err != nil {
			observability.FromContext(ctx).Warn("locations: load cities failed", zap.String("state_id", form.Address.StateID), zap.Error(err))
			errMsg = l.T("errors.referenceData")
		}
		cities = list
	}
	Render(w, r, http.StatusOK, locationstpl.CityField(locationstpl.BuildCityField(l, form, cities, errMsg)))
}

type locationForm struct {
	form      *locations.Form
	id        string
	errors    locations.FieldErrors
	rootError string
}

func (h *Handlers) saveLocation(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	l := custommw.LocalizerFromContext(ctx)
	logger := observability.FromContext(ctx)
	form := locations.FormFromValues(r.PostForm)
	state := locationForm{form: form, id: id}

	if errs := form.Validate(); errs != nil {
		state.errors = errs
		h.renderLocationForm(w, r, http.StatusUnprocessableEntity, tok, state)
		return
	}

	states, cities, err := h.referenceData(ctx, tok, form)
	if err != nil {
		logger.Warn("locations: load reference data failed", zap.Error(err))
		state.rootError = l.T("errors.referenceData")
		h.renderLocationForm(w, r, http.StatusUnprocessableEntity, tok, state)
		return
	}
	payload, err := form.BuildPayload(states, cities)
	if err != nil {
		state.errors = payloadErrors(err)
		h.renderLocationForm(w, r, http.StatusUnprocessableEntity, tok, state)
		return
	}

	var saved *locations.StockLocation
	toastKey := "stockLocations.toast.create"
	if id == "" {
		saved, err = h.stock.Create(ctx, tok, payload)
	} else {
		toastKey = "stockLocations.toast.update"
		saved, err = h.stock.Update(ctx, tok, id, payload)
	}
	if err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			h.renderLocationError(w, r, err)
			return
		}
		logger.Warn("locations: save failed", zap.String("location_id", id), zap.Error(err))
		state.rootError = backendMessage(l, err, "errors.generic")
		h.renderLocationForm(w, r, http.StatusUnprocessableEntity, tok, state)
		return
	}

	editPath := layout.Join(custommw.BasePathFromContext(ctx), "/locations/"+url.PathEscape(saved.ID)+"/edit")
	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, editPath, http.StatusSeeOther)
		return
	}

	edit, err := h.bootstrapEditForm(ctx, tok, *saved)
	if err != nil {
		logger.Warn("locations: resolve stored city failed", zap.String("location_id", saved.ID), zap.Error(err))
	}
	addToasts(w, toast{Message: l.T(toastKey), Tone: toneSuccess})
	if id == "" {
		w.Header().Set("HX-Push-Url", editPath)
	}
	h.renderLocationForm(w, r, http.StatusOK, tok, locationForm{form: edit, id: saved.ID})
}

// bootstrapEditForm pre-fills the form from loc and derives its state from
// the stored city. A failed city lookup leaves the state unselected.
func (h *Handlers) bootstrapEditForm(ctx context.Context, tok string, loc locations.StockLocation) (*locations.Form, error) {
	form := locations.NewEditForm(loc)
	if loc.Address.CityID == "" {
		form.Bootstrap(nil)
		return form, nil
	}
	city, err := h.references.City(ctx, tok, loc.Address.CityID)
	form.Bootstrap(city)
	return form, err
}

func (h *Handlers) referenceData(ctx context.Context, tok string, form *locations.Form) ([]locations.State, []locations.City, error) {
	states, err := h.references.States(ctx, tok, form.Address.CountryCode)
	if err != nil {
		return nil, nil, err
	}
	if form.Address.StateID == "" {
		return states, nil, nil
	}
	cities, err := h.references.Cities(ctx, tok, form.Address.StateID)
	if err != nil {
		return nil, nil, err
	}
	return states, cities, nil
}

func (h *Handlers) renderLocationForm(w http.ResponseWriter, r *http.Request, status int, tok string, state locationForm) {
	ctx := r.Context()
	l := custommw.LocalizerFromContext(ctx)

	rootError := state.rootError
	if key, ok := state.errors[""]; ok && rootError == "" {
		rootError = l.T(key)
	}
	states, cities, err := h.referenceData(ctx, tok, state.form)
	if err != nil {
		observability.FromContext(ctx).Warn("locations: load reference data failed", zap.Error(err))
		if rootError == "" {
			rootError = l.T("errors.referenceData")
		}
	}

	data := locationstpl.BuildForm(locationstpl.FormInput{
		L:          l,
		BasePath:   custommw.BasePathFromContext(ctx),
		CSRFToken:  custommw.CSRFTokenFromContext(ctx),
		LocationID: state.id,
		Form:       state.form,
		States:     states,
		Cities:     cities,
		Errors:     state.errors,
		RootError:  rootError,
	})
	if custommw.IsHTMXRequest(ctx) {
		Render(w, r, status, locationstpl.FormFragment(data))
		return
	}
	Render(w, r, status, locationstpl.FormPage(Chrome(r, layout.NavLocations), data))
}

func (h *Handlers) renderLocationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, locations.ErrNotFound) {
		NotFound(w, r)
		return
	}
	observability.FromContext(r.Context()).Error("locations: backend request failed", zap.Error(err))
	RenderError(w, r, backendStatus(err), "errors.backendUnavailable")
}

func payloadErrors(err error) locations.FieldErrors {
	switch {
	case errors.Is(err, locations.ErrCityNotInState):
		return locations.FieldErrors{"address.city_id": "validation.cityNotInState"}
	case errors.Is(err, locations.ErrUnknownState):
		return locations.FieldErrors{"address.state_id": "validation.invalidChoice"}
	case errors.Is(err, locations.ErrUnknownCity):
		return locations.FieldErrors{"address.city_id": "validation.invalidChoice"}
	default:
		return locations.FieldErrors{"": "errors.generic"}
	}
}
