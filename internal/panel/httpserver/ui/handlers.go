package ui

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	"github.com/MKdir98/vendor-panel/internal/panel/collection"
	"github.com/MKdir98/vendor-panel/internal/panel/content"
	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/locations"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/orders"
	"github.com/MKdir98/vendor-panel/internal/panel/shipping"
	"github.com/MKdir98/vendor-panel/internal/panel/status"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/dashboard"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/pages"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Orders          orders.Service
	Collection      collection.Service
	CollectionStore *collection.Store
	References      locations.ReferenceService
	StockLocations  locations.StockLocationService
	Categories      catalog.Service
	Shipping        shipping.Service
	Metrics         *observability.Metrics

	Courier     status.Courier
	LabelBase   string
	CountryCode string
}

// Handlers exposes HTTP handlers for panel pages and fragments.
type Handlers struct {
	orders      orders.Service
	collection  collection.Service
	store       *collection.Store
	references  locations.ReferenceService
	stock       locations.StockLocationService
	categories  catalog.Service
	shipping    shipping.Service
	metrics     *observability.Metrics
	courier     status.Courier
	labelBase   string
	countryCode string
}

// NewHandlers wires the UI handler set. Missing services fall back to the
// in-memory sample implementations.
func NewHandlers(deps Dependencies) *Handlers {
	courier := deps.Courier
	if courier.ProviderKey == "" {
		courier = status.DefaultCourier
	}
	ordersSvc := deps.Orders
	if ordersSvc == nil {
		ordersSvc = orders.NewStaticService()
	}
	collectionSvc := deps.Collection
	if collectionSvc == nil {
		collectionSvc = collection.NewStaticService(orders.SampleOrders(time.Now()), courier)
	}
	store := deps.CollectionStore
	if store == nil {
		store = collection.NewStore(2 * time.Hour)
	}
	references := deps.References
	if references == nil {
		references = locations.NewStaticReferenceService()
	}
	stock := deps.StockLocations
	if stock == nil {
		stock = locations.NewStaticStockLocationService(locations.SampleStockLocations()...)
	}
	categories := deps.Categories
	if categories == nil {
		categories = catalog.NewStaticService(catalog.SampleCategories()...)
	}
	shippingSvc := deps.Shipping
	if shippingSvc == nil {
		shippingSvc = shipping.NewStaticService()
	}
	country := deps.CountryCode
	if country == "" {
		country = locations.DefaultCountry
	}
	return &Handlers{
		orders:      ordersSvc,
		collection:  collectionSvc,
		store:       store,
		references:  references,
		stock:       stock,
		categories:  categories,
		shipping:    shippingSvc,
		metrics:     deps.Metrics,
		courier:     courier,
		labelBase:   deps.LabelBase,
		countryCode: country,
	}
}

// Chrome builds the page frame for the current request.
func Chrome(r *http.Request, active string) layout.Chrome {
	ctx := r.Context()
	l := custommw.LocalizerFromContext(ctx)
	switchLang := i18n.English
	if l.Lang() == i18n.English {
		switchLang = i18n.Persian
	}
	chrome := layout.Chrome{
		L:           l,
		BasePath:    custommw.BasePathFromContext(ctx),
		CSRFToken:   custommw.CSRFTokenFromContext(ctx),
		Environment: custommw.EnvironmentFromContext(ctx),
		ActiveNav:   active,
		SwitchLang:  switchLang,
		RequestPath: custommw.RequestPathFromContext(ctx),
	}
	if user, ok := custommw.UserFromContext(ctx); ok && user != nil {
		chrome.SellerEmail = user.Email
	}
	return chrome
}

// Render writes component with the given status code.
func Render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

// RenderError renders the error page. htmx requests get a danger toast and
// an empty body so the current view stays in place.
func RenderError(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	l := custommw.LocalizerFromContext(r.Context())
	message := l.T(messageKey)
	if custommw.IsHTMXRequest(r.Context()) {
		addToasts(w, toast{Message: message, Tone: toneDanger})
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(status)
		return
	}
	chrome := Chrome(r, "")
	Render(w, r, status, pages.Error(chrome, pages.ErrorData{
		L:        l,
		Status:   status,
		Message:  message,
		HomeHref: chrome.Href("/"),
	}))
}

// NotFound renders the not found page.
func NotFound(w http.ResponseWriter, r *http.Request) {
	RenderError(w, r, http.StatusNotFound, "errors.notFound")
}

// Dashboard renders the seller landing page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	pending, err := h.collection.Candidates(ctx, user.Token)
	if err != nil {
		observability.FromContext(ctx).Warn("dashboard: load collection candidates failed", zap.Error(err))
		pending = nil
	}

	chrome := Chrome(r, layout.NavDashboard)
	data := dashboard.Build(chrome.L, chrome.BasePath, user.Email, pending)
	Render(w, r, http.StatusOK, dashboard.Page(chrome, data))
}

// Terms renders the terms and conditions page.
func (h *Handlers) Terms(w http.ResponseWriter, r *http.Request) {
	body, err := content.Terms()
	if err != nil {
		observability.FromContext(r.Context()).Error("terms: render failed", zap.Error(err))
		RenderError(w, r, http.StatusInternalServerError, "errors.generic")
		return
	}
	chrome := Chrome(r, "")
	Render(w, r, http.StatusOK, pages.Terms(chrome, pages.TermsData{
		L:        chrome.L,
		Body:     body,
		HomeHref: chrome.Href("/"),
	}))
}

func token(r *http.Request) (string, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok || user == nil || user.Token == "" {
		return "", false
	}
	return user.Token, true
}

func sessionID(r *http.Request) string {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		return sess.ID()
	}
	if user, ok := custommw.UserFromContext(r.Context()); ok && user != nil {
		return user.UID
	}
	return ""
}

// backendMessage returns the backend's error message, or the translated
// fallback key.
func backendMessage(l *i18n.Localizer, err error, fallbackKey string) string {
	if msg := backend.MessageOf(err); msg != "" {
		return msg
	}
	return l.T(fallbackKey)
}

func backendStatus(err error) int {
	if backend.StatusOf(err) == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
