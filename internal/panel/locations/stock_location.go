package locations

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

// ErrNotFound is returned when a stock location does not exist.
var ErrNotFound = errors.New("locations: stock location not found")

// Address is the persisted address of a stock location. The state is not
// stored; it is derived from the city.
type Address struct {
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2,omitempty"`
	CountryCode string `json:"country_code"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Company     string `json:"company,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CityID      string `json:"city_id,omitempty"`
}

// StockLocation is a warehouse fulfillments ship from.
type StockLocation struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// LocationInput is the create/update payload.
type LocationInput struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// StockLocationService manages the vendor's stock locations.
type StockLocationService interface {
	List(ctx context.Context, token string) ([]StockLocation, error)
	Get(ctx context.Context, token, id string) (*StockLocation, error)
	Create(ctx context.Context, token string, in LocationInput) (*StockLocation, error)
	Update(ctx context.Context, token, id string, in LocationInput) (*StockLocation, error)
}

// HTTPStockLocationService implements StockLocationService over the vendor API.
type HTTPStockLocationService struct {
	client *backend.Client
}

// NewHTTPStockLocationService constructs an HTTPStockLocationService.
func NewHTTPStockLocationService(client *backend.Client) (*HTTPStockLocationService, error) {
	if client == nil {
		return nil, errors.New("locations: backend client is required")
	}
	return &HTTPStockLocationService{client: client}, nil
}

type locationEnvelope struct {
	StockLocation *StockLocation `json:"stock_location"`
}

// List implements StockLocationService.
func (s *HTTPStockLocationService) List(ctx context.Context, token string) ([]StockLocation, error) {
	var payload struct {
		StockLocations []StockLocation `json:"stock_locations"`
	}
	query := url.Values{"fields": {"id,name,*address"}}
	if err := s.client.GetJSON(ctx, "locations.list", token, "/vendor/stock-locations", query, &payload); err != nil {
		return nil, err
	}
	return payload.StockLocations, nil
}

// Get implements StockLocationService.
func (s *HTTPStockLocationService) Get(ctx context.Context, token, id string) (*StockLocation, error) {
	var payload locationEnvelope
	query := url.Values{"fields": {"id,name,*address"}}
	if err := s.client.GetJSON(ctx, "locations.get", token, locationPath(id), query, &payload); err != nil {
		return nil, mapError(err)
	}
	if payload.StockLocation == nil {
		return nil, ErrNotFound
	}
	return payload.StockLocation, nil
}

// Create implements StockLocationService.
func (s *HTTPStockLocationService) Create(ctx context.Context, token string, in LocationInput) (*StockLocation, error) {
	var payload locationEnvelope
	if err := s.client.SendJSON(ctx, "locations.create", http.MethodPost, token, "/vendor/stock-locations", in, &payload); err != nil {
		return nil, err
	}
	return payload.StockLocation, nil
}

// Update implements StockLocationService.
func (s *HTTPStockLocationService) Update(ctx context.Context, token, id string, in LocationInput) (*StockLocation, error) {
	var payload locationEnvelope
	if err := s.client.SendJSON(ctx, "locations.update", http.MethodPost, token, locationPath(id), in, &payload); err != nil {
		return nil, mapError(err)
	}
	return payload.StockLocation, nil
}

func locationPath(id string) string {
	return "/vendor/stock-locations/" + url.PathEscape(strings.TrimSpace(id))
}

func mapError(err error) error {
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// StaticStockLocationService keeps stock locations in memory.
type StaticStockLocationService struct {
	mu        sync.Mutex
	locations map[string]StockLocation
}

// NewStaticStockLocationService returns a service seeded with list.
func NewStaticStockLocationService(list ...StockLocation) *StaticStockLocationService {
	s := &StaticStockLocationService{locations: map[string]StockLocation{}}
	for _, loc := range list {
		s.locations[loc.ID] = loc
	}
	return s
}

// SampleStockLocations returns locations matching the static reference data.
func SampleStockLocations() []StockLocation {
	return []StockLocation{
		{
			ID:   "sloc_tehran",
			Name: "انبار مرکزی تهران",
			Address: Address{
				Address1:    "خیابان ولیعصر، پلاک ۱۲",
				CountryCode: "ir",
				City:        "تهران",
				Province:    "تهران",
				PostalCode:  "1415913111",
				CityID:      "city_tehran",
			},
		},
	}
}

// List implements StockLocationService.
func (s *StaticStockLocationService) List(context.Context, string) ([]StockLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StockLocation, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements StockLocationService.
func (s *StaticStockLocationService) Get(_ context.Context, _ string, id string) (*StockLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &loc, nil
}

// Create implements StockLocationService.
func (s *StaticStockLocationService) Create(_ context.Context, _ string, in LocationInput) (*StockLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc := StockLocation{ID: "sloc_" + strings.ToLower(ulid.Make().String()), Name: in.Name, Address: in.Address}
	s.locations[loc.ID] = loc
	return &loc, nil
}

// Update implements StockLocationService.
func (s *StaticStockLocationService) Update(_ context.Context, _ string, id string, in LocationInput) (*StockLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[id]; !ok {
		return nil, ErrNotFound
	}
	loc := StockLocation{ID: id, Name: in.Name, Address: in.Address}
	s.locations[id] = loc
	return &loc, nil
}
