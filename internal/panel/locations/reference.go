// Package locations covers stock locations and the province/city reference
// data their address forms depend on.
package locations

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

// ErrCityNotFound is returned when a city id is unknown.
var ErrCityNotFound = errors.New("locations: city not found")

// State is a province.
type State struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CountryCode        string `json:"country_code"`
	PostexProvinceCode string `json:"postex_province_code,omitempty"`
}

// City belongs to exactly one State.
type City struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CountryCode    string `json:"country_code"`
	StateID        string `json:"state_id"`
	PostexCityCode string `json:"postex_city_code,omitempty"`
}

// ReferenceService loads provinces and cities. Empty filters yield empty
// results without a backend call.
type ReferenceService interface {
	States(ctx context.Context, token, countryCode string) ([]State, error)
	Cities(ctx context.Context, token, stateID string) ([]City, error)
	City(ctx context.Context, token, cityID string) (*City, error)
}

// HTTPReferenceService implements ReferenceService over the vendor API.
type HTTPReferenceService struct {
	client *backend.Client
}

// NewHTTPReferenceService constructs an HTTPReferenceService.
func NewHTTPReferenceService(client *backend.Client) (*HTTPReferenceService, error) {
	if client == nil {
		return nil, errors.New("locations: backend client is required")
	}
	return &HTTPReferenceService{client: client}, nil
}

// States implements ReferenceService.
func (s *HTTPReferenceService) States(ctx context.Context, token, countryCode string) ([]State, error) {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		return nil, nil
	}
	var payload struct {
		States []State `json:"states"`
	}
	if err := s.client.GetJSON(ctx, "locations.states", token, "/vendor/states", url.Values{"country_code": {countryCode}}, &payload); err != nil {
		return nil, err
	}
	return payload.States, nil
}

// Cities implements ReferenceService.
func (s *HTTPReferenceService) Cities(ctx context.Context, token, stateID string) ([]City, error) {
	stateID = strings.TrimSpace(stateID)
	if stateID == "" {
		return nil, nil
	}
	var payload struct {
		Cities []City `json:"cities"`
	}
	if err := s.client.GetJSON(ctx, "locations.cities", token, "/vendor/cities", url.Values{"state_id": {stateID}}, &payload); err != nil {
		return nil, err
	}
	return payload.Cities, nil
}

// City implements ReferenceService.
func (s *HTTPReferenceService) City(ctx context.Context, token, cityID string) (*City, error) {
	cityID = strings.TrimSpace(cityID)
	if cityID == "" {
		return nil, nil
	}
	var payload struct {
		City *City `json:"city"`
	}
	if err := s.client.GetJSON(ctx, "locations.city", token, "/vendor/cities/"+url.PathEscape(cityID), nil, &payload); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	if payload.City == nil {
		return nil, ErrCityNotFound
	}
	return payload.City, nil
}

// FindState returns the state with id.
func FindState(states []State, id string) (State, bool) {
	for _, s := range states {
		if s.ID == id {
			return s, true
		}
	}
	return State{}, false
}

// FindCity returns the city with id.
func FindCity(cities []City, id string) (City, bool) {
	for _, c := range cities {
		if c.ID == id {
			return c, true
		}
	}
	return City{}, false
}
