// Package catalog manages the vendor's product categories.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
)

// Category statuses and visibilities accepted by the backend.
const (
	StatusActive       = "active"
	StatusInactive     = "inactive"
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
)

// Category is a product category.
type Category struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Handle           string         `json:"handle"`
	Description      string         `json:"description"`
	IsActive         bool           `json:"is_active"`
	IsInternal       bool           `json:"is_internal"`
	ParentCategoryID string         `json:"parent_category_id,omitempty"`
	Rank             int            `json:"rank"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Thumbnail returns the image URL stored in the category metadata.
func (c Category) Thumbnail() string {
	v, _ := c.Metadata["thumbnail"].(string)
	return v
}

// ErrNotFound is returned when a category does not exist.
var ErrNotFound = errors.New("catalog: category not found")

// SupportedImageTypes are the content types accepted for category images.
var SupportedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"image/svg+xml",
}

// IsSupportedImage reports whether contentType may be uploaded.
func IsSupportedImage(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range SupportedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Form is the create category form.
type Form struct {
	Name        string `form:"name" validate:"required,max=200"`
	Handle      string `form:"handle" validate:"omitempty,handle"`
	Description string `form:"description"`
	Status      string `form:"status" validate:"oneof=active inactive"`
	Visibility  string `form:"visibility" validate:"oneof=public internal"`
	ParentID    string `form:"parent_category_id"`
	Rank        string `form:"rank" validate:"omitempty,numeric"`
}

// CreateInput is the POST /vendor/product-categories payload.
type CreateInput struct {
	Name             string `json:"name"`
	Handle           string `json:"handle,omitempty"`
	Description      string `json:"description,omitempty"`
	IsActive         bool   `json:"is_active"`
	IsInternal       bool   `json:"is_internal"`
	ParentCategoryID string `json:"parent_category_id,omitempty"`
	Rank             *int   `json:"rank,omitempty"`
}

// FieldErrors maps form field names to message keys.
type FieldErrors map[string]string

var (
	validate = newValidator()
	policy   = bluemonday.UGCPolicy()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return isHandle(fl.Field().String())
	})
	return v
}

func isHandle(s string) bool {
	if s == "" || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

var messageKeys = map[string]string{
	"name":       "validation.titleRequired",
	"handle":     "validation.handleInvalid",
	"status":     "validation.invalidChoice",
	"visibility": "validation.invalidChoice",
	"rank":       "validation.invalidChoice",
}

// NewForm returns a form with the default status and visibility.
func NewForm() Form {
	return Form{Status: StatusActive, Visibility: VisibilityPublic}
}

// FormFromValues reads a submitted form.
func FormFromValues(values url.Values) Form {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	return Form{
		Name:        get("name"),
		Handle:      strings.ToLower(get("handle")),
		Description: get("description"),
		Status:      get("status"),
		Visibility:  get("visibility"),
		ParentID:    get("parent_category_id"),
		Rank:        get("rank"),
	}
}

// Validate checks the form. Messages are translation keys.
func (f Form) Validate() FieldErrors {
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
		out[fe.Field()] = messageKeys[fe.Field()]
	}
	return out
}

// Input converts a valid form to the create payload. The description is
// sanitised.
func (f Form) Input() CreateInput {
	in := CreateInput{
		Name:             f.Name,
		Handle:           f.Handle,
		Description:      strings.TrimSpace(policy.Sanitize(f.Description)),
		IsActive:         f.Status == StatusActive,
		IsInternal:       f.Visibility == VisibilityInternal,
		ParentCategoryID: f.ParentID,
	}
	if rank, err := strconv.Atoi(f.Rank); err == nil {
		in.Rank = &rank
	}
	return in
}

// Service manages the vendor's categories.
type Service interface {
	Create(ctx context.Context, token string, in CreateInput) (*Category, error)
	Get(ctx context.Context, token, id string) (*Category, error)
	UpdateMetadata(ctx context.Context, token, id string, metadata map[string]any) (*Category, error)
	// Upload stores an image and returns its public URL.
	Upload(ctx context.Context, token string, file backend.File) (string, error)
}

// SetThumbnail stores url as the category thumbnail, keeping the rest of
// its metadata.
func SetThumbnail(ctx context.Context, svc Service, token string, c Category, thumbnailURL string) (*Category, error) {
	metadata := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		metadata[k] = v
	}
	metadata["thumbnail"] = thumbnailURL
	return svc.UpdateMetadata(ctx, token, c.ID, metadata)
}

// HTTPService implements Service over the vendor API.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs an HTTPService.
func NewHTTPService(client *backend.Client) (*HTTPService, error) {
	if client == nil {
		return nil, errors.New("catalog: backend client is required")
	}
	return &HTTPService{client: client}, nil
}

// Create implements Service.
func (s *HTTPService) Create(ctx context.Context, token string, in CreateInput) (*Category, error) {
	var payload struct {
		ProductCategory *Category `json:"product_category"`
	}
	if err := s.client.SendJSON(ctx, "catalog.create_category", http.MethodPost, token, "/vendor/product-categories", in, &payload); err != nil {
		return nil, err
	}
	return payload.ProductCategory, nil
}

type categoryEnvelope struct {
	ProductCategory *Category `json:"product_category"`
}

// Get implements Service.
func (s *HTTPService) Get(ctx context.Context, token, id string) (*Category, error) {
	var payload categoryEnvelope
	if err := s.client.GetJSON(ctx, "catalog.get_category", token, categoryPath(id), nil, &payload); err != nil {
		return nil, mapError(err)
	}
	if payload.ProductCategory == nil {
		return nil, ErrNotFound
	}
	return payload.ProductCategory, nil
}

// UpdateMetadata implements Service.
func (s *HTTPService) UpdateMetadata(ctx context.Context, token, id string, metadata map[string]any) (*Category, error) {
	var payload categoryEnvelope
	in := map[string]any{"metadata": metadata}
	if err := s.client.SendJSON(ctx, "catalog.update_category", http.MethodPost, token, categoryPath(id), in, &payload); err != nil {
		return nil, mapError(err)
	}
	return payload.ProductCategory, nil
}

// Upload implements Service.
func (s *HTTPService) Upload(ctx context.Context, token string, file backend.File) (string, error) {
	var payload struct {
		Files []struct {
			URL string `json:"url"`
		} `json:"files"`
	}
	if err := s.client.SendMultipart(ctx, "catalog.upload", token, "/vendor/uploads", "files", []backend.File{file}, &payload); err != nil {
		return "", err
	}
	if len(payload.Files) == 0 {
		return "", nil
	}
	return payload.Files[0].URL, nil
}

func categoryPath(id string) string {
	return "/vendor/product-categories/" + url.PathEscape(strings.TrimSpace(id))
}

func mapError(err error) error {
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// StaticService keeps categories in memory.
type StaticService struct {
	mu      sync.Mutex
	seeded  []Category
	created []Category
	uploads []string
}

// NewStaticService returns a StaticService seeded with list.
func NewStaticService(list ...Category) *StaticService {
	return &StaticService{seeded: append([]Category(nil), list...)}
}

// SampleCategories are the development categories.
func SampleCategories() []Category {
	return []Category{
		{
			ID:          "pcat_books",
			Name:        "کتاب",
			Handle:      "books",
			Description: "کتاب‌های چاپی و دست‌دوم",
			IsActive:    true,
		},
	}
}

// Get implements Service.
func (s *StaticService) Get(_ context.Context, _ string, id string) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findLocked(id); c != nil {
		copied := *c
		return &copied, nil
	}
	return nil, ErrNotFound
}

// UpdateMetadata implements Service.
func (s *StaticService) UpdateMetadata(_ context.Context, _ string, id string, metadata map[string]any) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil {
		return nil, ErrNotFound
	}
	c.Metadata = metadata
	copied := *c
	return &copied, nil
}

// Upload implements Service.
func (s *StaticService) Upload(_ context.Context, _ string, file backend.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, file.Name)
	return "https://cdn.example.ir/uploads/" + url.PathEscape(file.Name), nil
}

// Uploads returns the names of the uploaded files.
func (s *StaticService) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

func (s *StaticService) findLocked(id string) *Category {
	for i := range s.created {
		if s.created[i].ID == id {
			return &s.created[i]
		}
	}
	for i := range s.seeded {
		if s.seeded[i].ID == id {
			return &s.seeded[i]
		}
	}
	return nil
}

// Create implements Service.
func (s *StaticService) Create(_ context.Context, _ string, in CreateInput) (*Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := in.Handle
	if handle == "" {
		handle = strings.ToLower(strings.Join(strings.Fields(in.Name), "-"))
	}
	c := Category{
		ID:               "pcat_" + strings.ToLower(ulid.Make().String()),
		Name:             in.Name,
		Handle:           handle,
		Description:      in.Description,
		IsActive:         in.IsActive,
		IsInternal:       in.IsInternal,
		ParentCategoryID: in.ParentCategoryID,
	}
	if in.Rank != nil {
		c.Rank = *in.Rank
	}
	s.created = append(s.created, c)
	return &c, nil
}

// Created returns the categories created so far.
func (s *StaticService) Created() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Category(nil), s.created...)
}
