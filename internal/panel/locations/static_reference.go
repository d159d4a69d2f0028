package locations

import (
	"context"
	"strings"
	"sync/atomic"
)

// StaticReferenceService serves a fixed set of Iranian provinces and cities.
type StaticReferenceService struct {
	states []State
	cities []City
	calls  atomic.Int64
}

// NewStaticReferenceService returns sample reference data.
func NewStaticReferenceService() *StaticReferenceService {
	return &StaticReferenceService{
		states: []State{
			{ID: "state_tehran", Name: "تهران", CountryCode: "ir", PostexProvinceCode: "1"},
			{ID: "state_isfahan", Name: "اصفهان", CountryCode: "ir", PostexProvinceCode: "4"},
			{ID: "state_fars", Name: "فارس", CountryCode: "ir", PostexProvinceCode: "7"},
		},
		cities: []City{
			{ID: "city_tehran", Name: "تهران", CountryCode: "ir", StateID: "state_tehran", PostexCityCode: "1"},
			{ID: "city_shemiranat", Name: "شمیرانات", CountryCode: "ir", StateID: "state_tehran", PostexCityCode: "12"},
			{ID: "city_isfahan", Name: "اصفهان", CountryCode: "ir", StateID: "state_isfahan", PostexCityCode: "41"},
			{ID: "city_kashan", Name: "کاشان", CountryCode: "ir", StateID: "state_isfahan", PostexCityCode: "44"},
			{ID: "city_shiraz", Name: "شیراز", CountryCode: "ir", StateID: "state_fars", PostexCityCode: "71"},
		},
	}
}

// Calls returns the number of lookups served.
func (s *StaticReferenceService) Calls() int64 {
	return s.calls.Load()
}

// States implements ReferenceService.
func (s *StaticReferenceService) States(_ context.Context, _ string, countryCode string) ([]State, error) {
	if strings.TrimSpace(countryCode) == "" {
		return nil, nil
	}
	s.calls.Add(1)
	var out []State
	for _, st := range s.states {
		if strings.EqualFold(st.CountryCode, countryCode) {
			out = append(out, st)
		}
	}
	return out, nil
}

// Cities implements ReferenceService.
func (s *StaticReferenceService) Cities(_ context.Context, _ string, stateID string) ([]City, error) {
	if strings.TrimSpace(stateID) == "" {
		return nil, nil
	}
	s.calls.Add(1)
	var out []City
	for _, c := range s.cities {
		if c.StateID == stateID {
			out = append(out, c)
		}
	}
	return out, nil
}

// City implements ReferenceService.
func (s *StaticReferenceService) City(_ context.Context, _ string, cityID string) (*City, error) {
	if strings.TrimSpace(cityID) == "" {
		return nil, nil
	}
	s.calls.Add(1)
	if c, ok := FindCity(s.cities, cityID); ok {
		return &c, nil
	}
	return nil, ErrCityNotFound
}
