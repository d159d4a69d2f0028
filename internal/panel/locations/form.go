package locations

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrCityNotInState is returned when the chosen city belongs to another state.
	ErrCityNotInState = errors.New("locations: city does not belong to state")
	// ErrUnknownState is returned when the chosen state is not in the reference list.
	ErrUnknownState = errors.New("locations: unknown state")
	// ErrUnknownCity is returned when the chosen city is not in the reference list.
	ErrUnknownCity = errors.New("locations: unknown city")
)

// Phase distinguishes the edit-mode bootstrap from user-driven edits.
type Phase int

const (
	// Bootstrapping derives the state from a persisted city without clearing it.
	Bootstrapping Phase = iota
	// Ready applies user edits: a state change clears the city.
	Ready
)

// DefaultCountry is used when no country is given.
const DefaultCountry = "ir"

// FormAddress is the editable address of a stock location.
type FormAddress struct {
	Address1    string `form:"address_1" validate:"required"`
	Address2    string `form:"address_2"`
	CountryCode string `form:"country_code" validate:"len=2"`
	StateID     string `form:"state_id" validate:"required"`
	CityID      string `form:"city_id" validate:"required"`
	PostalCode  string `form:"postal_code"`
	Company     string `form:"company"`
	Phone       string `form:"phone"`
}

// Form is the create/edit stock location form.
type Form struct {
	Name    string      `form:"name" validate:"required"`
	Address FormAddress `form:"address"`

	phase Phase
}

// FieldErrors maps form field names (e.g. "address.city_id") to message keys.
type FieldErrors map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var messageKeys = map[string]string{
	"name.required":              "validation.nameRequired",
	"address.address_1.required": "validation.addressRequired",
	"address.country_code.len":   "validation.invalidChoice",
	"address.state_id.required":  "validation.stateRequired",
	"address.city_id.required":   "validation.cityRequired",
}

// NewCreateForm returns an empty form ready for input.
func NewCreateForm(countryCode string) *Form {
	if strings.TrimSpace(countryCode) == "" {
		countryCode = DefaultCountry
	}
	return &Form{Address: FormAddress{CountryCode: countryCode}, phase: Ready}
}

// NewEditForm pre-fills the form from a persisted location. The state is not
// stored on the location; call Bootstrap with the persisted city to derive it.
func NewEditForm(loc StockLocation) *Form {
	country := loc.Address.CountryCode
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}
	return &Form{
		Name: loc.Name,
		Address: FormAddress{
			Address1:    loc.Address.Address1,
			Address2:    loc.Address.Address2,
			CountryCode: country,
			CityID:      loc.Address.CityID,
			PostalCode:  loc.Address.PostalCode,
			Company:     loc.Address.Company,
			Phone:       loc.Address.Phone,
		},
		phase: Bootstrapping,
	}
}

// FormFromValues reads a submitted form.
func FormFromValues(values url.Values) *Form {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	country := get("country_code")
	if country == "" {
		country = DefaultCountry
	}
	return &Form{
		Name: get("name"),
		Address: FormAddress{
			Address1:    get("address_1"),
			Address2:    get("address_2"),
			CountryCode: strings.ToLower(country),
			StateID:     get("state_id"),
			CityID:      get("city_id"),
			PostalCode:  get("postal_code"),
			Company:     get("company"),
			Phone:       get("phone"),
		},
		phase: Ready,
	}
}

// StateChangeFromValues replays a state selection made on a rendered form.
// prev_state_id carries the state the form was rendered with, so the city is
// cleared only when the selection actually changed.
func StateChangeFromValues(values url.Values) *Form {
	f := FormFromValues(values)
	f.Address.StateID = strings.TrimSpace(values.Get("prev_state_id"))
	f.SetState(values.Get("state_id"))
	return f
}

// Phase returns the current phase.
func (f *Form) Phase() Phase { return f.phase }

// Bootstrap completes edit-mode initialisation: the state is derived from the
// persisted city and the city is kept. It is a no-op once Ready.
func (f *Form) Bootstrap(city *City) {
	if f.phase != Bootstrapping {
		return
	}
	if city != nil && f.Address.StateID == "" {
		f.Address.StateID = city.StateID
	}
	f.phase = Ready
}

// SetState changes the state. Once Ready, replacing a chosen state with a
// different one clears the city.
func (f *Form) SetState(stateID string) {
	stateID = strings.TrimSpace(stateID)
	if f.phase == Bootstrapping {
		f.Address.StateID = stateID
		return
	}
	if f.Address.StateID != "" && stateID != f.Address.StateID {
		f.Address.CityID = ""
	}
	f.Address.StateID = stateID
}

// SetCity selects a city.
func (f *Form) SetCity(cityID string) {
	f.Address.CityID = strings.TrimSpace(cityID)
}

// CityDisabled reports whether the city selector is unavailable.
func (f *Form) CityDisabled() bool {
	return f.Address.StateID == ""
}

// Validate checks required fields. Messages are translation keys.
func (f *Form) Validate() FieldErrors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": "errors.generic"}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		key, ok := messageKeys[field+"."+fe.Tag()]
		if !ok {
			key = "validation.invalidChoice"
		}
		if _, exists := out[field]; !exists {
			out[field] = key
		}
	}
	return out
}

// BuildPayload resolves the selected state and city to the names stored on
// the address. The state id itself is not submitted.
func (f *Form) BuildPayload(states []State, cities []City) (LocationInput, error) {
	state, ok := FindState(states, f.Address.StateID)
	if !ok {
		return LocationInput{}, ErrUnknownState
	}
	city, ok := FindCity(cities, f.Address.CityID)
	if !ok {
		return LocationInput{}, ErrUnknownCity
	}
	if city.StateID != state.ID {
		return LocationInput{}, ErrCityNotInState
	}
	return LocationInput{
		Name: strings.TrimSpace(f.Name),
		Address: Address{
			Address1:    f.Address.Address1,
			Address2:    f.Address.Address2,
			CountryCode: f.Address.CountryCode,
			City:        city.Name,
			CityID:      city.ID,
			Province:    state.Name,
			PostalCode:  f.Address.PostalCode,
			Company:     f.Address.Company,
			Phone:       f.Address.Phone,
		},
	}, nil
}
