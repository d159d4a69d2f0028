// Package shipping creates shipping options for the vendor's service zones.
package shipping

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

// Price types and option kinds.
const (
	PriceTypeFlat       = "flat"
	PriceTypeCalculated = "calculated"

	KindShipping = "shipping"
	KindPickup   = "pickup"
)

// Profile is a shipping profile products are grouped by.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label drops the "<seller>:" prefix the backend puts on profile names.
func (p Profile) Label() string {
	if parts := strings.Split(p.Name, ":"); len(parts) > 1 {
		return parts[1]
	}
	return p.Name
}

// Provider is a fulfillment provider such as postex_postex.
type Provider struct {
	ID        string `json:"id"`
	IsEnabled bool   `json:"is_enabled"`
}

// ServiceZone is a geographic zone shipping options apply to.
type ServiceZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option is a created shipping option.
type Option struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PriceType         string `json:"price_type"`
	ServiceZoneID     string `json:"service_zone_id"`
	ShippingProfileID string `json:"shipping_profile_id"`
	ProviderID        string `json:"provider_id"`
}

// Choices are the selectable values of the create form.
type Choices struct {
	Profiles  []Profile
	Providers []Provider
	Zones     []ServiceZone
}

// Zone returns the zone with id.
func (c Choices) Zone(id string) (ServiceZone, bool) {
	for _, z := range c.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return ServiceZone{}, false
}

// Form is the shipping option details form.
type Form struct {
	Kind              string `form:"kind" validate:"oneof=shipping pickup"`
	IsReturn          bool   `form:"is_return"`
	PriceType         string `form:"price_type" validate:"omitempty,oneof=flat calculated"`
	Name              string `form:"name" validate:"required,max=200"`
	ShippingProfileID string `form:"shipping_profile_id" validate:"required"`
	ProviderID        string `form:"provider_id" validate:"required"`
	ServiceZoneID     string `form:"service_zone_id" validate:"required"`
}

// FieldErrors maps form field names to message keys.
type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	})
	return v
}

var messageKeys = map[string]string{
	"kind":                "validation.invalidChoice",
	"price_type":          "validation.invalidChoice",
	"name":                "validation.nameRequired",
	"shipping_profile_id": "validation.profileRequired",
	"provider_id":         "validation.providerRequired",
	"service_zone_id":     "validation.serviceZoneRequired",
}

// NewForm returns a form for zoneID. Pickup options are always flat rate.
func NewForm(kind, zoneID string, isReturn bool) Form {
	if kind != KindPickup {
		kind = KindShipping
	}
	return Form{Kind: kind, IsReturn: isReturn, PriceType: PriceTypeFlat, ServiceZoneID: zoneID}
}

// FormFromValues reads a submitted form.
func FormFromValues(values url.Values) Form {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	isReturn, _ := strconv.ParseBool(get("is_return"))
	f := Form{
		Kind:              get("kind"),
		IsReturn:          isReturn,
		PriceType:         get("price_type"),
		Name:              get("name"),
		ShippingProfileID: get("shipping_profile_id"),
		ProviderID:        get("provider_id"),
		ServiceZoneID:     get("service_zone_id"),
	}
	if f.Kind == KindPickup {
		f.PriceType = PriceTypeFlat
	}
	return f
}

// IsPickup reports whether the form creates a pickup option.
func (f Form) IsPickup() bool { return f.Kind == KindPickup }

// Validate checks the form. Messages are translation keys.
func (f Form) Validate() FieldErrors {
	out := FieldErrors{}
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return FieldErrors{"": "errors.generic"}
		}
		for _, fe := range verrs {
			out[fe.Field()] = messageKeys[fe.Field()]
		}
	}
	if !f.IsPickup() && f.PriceType == "" {
		out["price_type"] = "validation.invalidChoice"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Check reports selections that are not among the loaded choices.
func (f Form) Check(c Choices) FieldErrors {
	out := FieldErrors{}
	if !containsID(c.Profiles, f.ShippingProfileID, func(p Profile) string { return p.ID }) {
		out["shipping_profile_id"] = "validation.invalidChoice"
	}
	if !containsID(c.Providers, f.ProviderID, func(p Provider) string { return p.ID }) {
		out["provider_id"] = "validation.invalidChoice"
	}
	if _, ok := c.Zone(f.ServiceZoneID); !ok {
		out["service_zone_id"] = "validation.invalidChoice"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsID[T any](list []T, id string, key func(T) string) bool {
	for _, item := range list {
		if key(item) == id {
			return true
		}
	}
	return false
}

// Rule restricts where a shipping option applies.
type Rule struct {
	Attribute string `json:"attribute"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
}

// OptionType describes the option to customers.
type OptionType struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// CreateInput is the POST /vendor/shipping-options payload. Prices are set
// afterwards on the option's pricing page.
type CreateInput struct {
	Name              string     `json:"name"`
	PriceType         string     `json:"price_type"`
	ServiceZoneID     string     `json:"service_zone_id"`
	ShippingProfileID string     `json:"shipping_profile_id"`
	ProviderID        string     `json:"provider_id"`
	Type              OptionType `json:"type"`
	Rules             []Rule     `json:"rules"`
	Prices            []any      `json:"prices"`
}

// Input converts a valid form to the create payload.
func (f Form) Input() CreateInput {
	code := KindShipping
	if f.IsPickup() {
		code = KindPickup
	}
	return CreateInput{
		Name:              f.Name,
		PriceType:         f.PriceType,
		ServiceZoneID:     f.ServiceZoneID,
		ShippingProfileID: f.ShippingProfileID,
		ProviderID:        f.ProviderID,
		Type:              OptionType{Label: f.Name, Description: f.Name, Code: code},
		Rules: []Rule{
			{Attribute: "enabled_in_store", Operator: "eq", Value: "true"},
			{Attribute: "is_return", Operator: "eq", Value: strconv.FormatBool(f.IsReturn)},
		},
		Prices: []any{},
	}
}

// Service loads the form choices and creates shipping options.
type Service interface {
	Profiles(ctx context.Context, token string) ([]Profile, error)
	Providers(ctx context.Context, token string) ([]Provider, error)
	ServiceZones(ctx context.Context, token string) ([]ServiceZone, error)
	Create(ctx context.Context, token string, in CreateInput) (*Option, error)
}

// LoadChoices fetches profiles, providers and zones concurrently.
func LoadChoices(ctx context.Context, svc Service, token string) (Choices, error) {
	var c Choices
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.Profiles, err = svc.Profiles(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		c.Providers, err = svc.Providers(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		c.Zones, err = svc.ServiceZones(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return Choices{}, err
	}
	return c, nil
}

// HTTPService implements Service over the vendor API.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs an HTTPService.
func NewHTTPService(client *backend.Client) (*HTTPService, error) {
	if client == nil {
		return nil, errors.New("shipping: backend client is required")
	}
	return &HTTPService{client: client}, nil
}

// Profiles implements Service.
func (s *HTTPService) Profiles(ctx context.Context, token string) ([]Profile, error) {
	var payload struct {
		ShippingProfiles []struct {
			ShippingProfile Profile `json:"shipping_profile"`
		} `json:"shipping_profiles"`
	}
	if err := s.client.GetJSON(ctx, "shipping.profiles", token, "/vendor/shipping-profiles", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(payload.ShippingProfiles))
	for _, p := range payload.ShippingProfiles {
		out = append(out, p.ShippingProfile)
	}
	return out, nil
}

// Providers implements Service.
func (s *HTTPService) Providers(ctx context.Context, token string) ([]Provider, error) {
	var payload struct {
		FulfillmentProviders []Provider `json:"fulfillment_providers"`
	}
	if err := s.client.GetJSON(ctx, "shipping.providers", token, "/vendor/fulfillment-providers", nil, &payload); err != nil {
		return nil, err
	}
	return payload.FulfillmentProviders, nil
}

// ServiceZones implements Service.
func (s *HTTPService) ServiceZones(ctx context.Context, token string) ([]ServiceZone, error) {
	var payload struct {
		ServiceZones []ServiceZone `json:"service_zones"`
	}
	if err := s.client.GetJSON(ctx, "shipping.service_zones", token, "/vendor/service-zones", nil, &payload); err != nil {
		return nil, err
	}
	return payload.ServiceZones, nil
}

// Create implements Service.
func (s *HTTPService) Create(ctx context.Context, token string, in CreateInput) (*Option, error) {
	var payload struct {
		ShippingOption *Option `json:"shipping_option"`
	}
	if err := s.client.SendJSON(ctx, "shipping.create_option", http.MethodPost, token, "/vendor/shipping-options", in, &payload); err != nil {
		return nil, err
	}
	return payload.ShippingOption, nil
}

// StaticService serves sample choices and keeps created options in memory.
type StaticService struct {
	mu      sync.Mutex
	choices Choices
	created []Option
}

// NewStaticService returns a service with the sample choices.
func NewStaticService() *StaticService {
	return &StaticService{choices: SampleChoices()}
}

// SampleChoices are the development profiles, providers and zones.
func SampleChoices() Choices {
	return Choices{
		Profiles: []Profile{
			{ID: "sp_default", Name: "sel_01:پیش‌فرض"},
			{ID: "sp_fragile", Name: "sel_01:شکستنی"},
		},
		Providers: []Provider{
			{ID: "postex_postex", IsEnabled: true},
			{ID: "manual_manual", IsEnabled: true},
		},
		Zones: []ServiceZone{
			{ID: "serzo_tehran", Name: "تهران"},
			{ID: "serzo_iran", Name: "سراسر ایران"},
		},
	}
}

// Profiles implements Service.
func (s *StaticService) Profiles(context.Context, string) ([]Profile, error) {
	return append([]Profile(nil), s.choices.Profiles...), nil
}

// Providers implements Service.
func (s *StaticService) Providers(context.Context, string) ([]Provider, error) {
	return append([]Provider(nil), s.choices.Providers...), nil
}

// ServiceZones implements Service.
func (s *StaticService) ServiceZones(context.Context, string) ([]ServiceZone, error) {
	return append([]ServiceZone(nil), s.choices.Zones...), nil
}

// Create implements Service.
func (s *StaticService) Create(_ context.Context, _ string, in CreateInput) (*Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := Option{
		ID:                "so_" + strings.ToLower(ulid.Make().String()),
		Name:              in.Name,
		PriceType:         in.PriceType,
		ServiceZoneID:     in.ServiceZoneID,
		ShippingProfileID: in.ShippingProfileID,
		ProviderID:        in.ProviderID,
	}
	s.created = append(s.created, o)
	return &o, nil
}

// Created returns the options created so far.
func (s *StaticService) Created() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Option(nil), s.created...)
}
