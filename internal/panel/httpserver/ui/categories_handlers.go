package ui

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	"github.com/MKdir98/vendor-panel/internal/panel/catalog"
	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/categories"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// CategoryNew renders the create category page.
func (h *Handlers) CategoryNew(w http.ResponseWriter, r *http.Request) {
	h.renderCategoryForm(w, r, http.StatusOK, catalog.NewForm(), nil)
}

// CategoryCreate validates the form and creates the category.
func (h *Handlers) CategoryCreate(w http.ResponseWriter, r *http.Request) {
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
	form := catalog.FormFromValues(r.PostForm)
	if errs := form.Validate(); errs != nil {
		h.renderCategoryForm(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	created, err := h.categories.Create(ctx, tok, form.Input())
	if err != nil {
		observability.FromContext(ctx).Warn("categories: create failed", zap.Error(err))
		h.renderCategoryForm(w, r, http.StatusUnprocessableEntity, form, catalog.FieldErrors{"": "errors.generic"}, backendMessage(l, err, "errors.generic"))
		return
	}
	next := "/categories/new"
	if created != nil {
		observability.FromContext(ctx).Info("categories: created", zap.String("category_id", created.ID))
		next = categories.DetailPath(created.ID)
	}

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(ctx), next), http.StatusSeeOther)
		return
	}
	addToasts(w, toast{Message: l.T("categories.toast.create"), Tone: toneSuccess})
	h.renderCategoryForm(w, r, http.StatusOK, catalog.NewForm(), nil)
}

// renderCategoryForm renders the page or, for htmx requests, the form
// fragment. An optional root message replaces the translated root error.
func (h *Handlers) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, form catalog.Form, errs catalog.FieldErrors, root ...string) {
	ctx := r.Context()
	l := custommw.LocalizerFromContext(ctx)
	data := categories.Build(l, custommw.BasePathFromContext(ctx), custommw.CSRFTokenFromContext(ctx), form, errs)
	if len(root) > 0 && root[0] != "" {
		data.RootError = root[0]
	}
	if custommw.IsHTMXRequest(ctx) {
		Render(w, r, status, categories.Form(data))
		return
	}
	Render(w, r, status, categories.Page(Chrome(r, layout.NavCategories), data))
}

const maxImageUpload = 10 << 20

// CategoryDetail renders the general section of a category.
func (h *Handlers) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	category, err := h.categories.Get(ctx, tok, chi.URLParam(r, "categoryID"))
	if err != nil {
		h.renderCategoryError(w, r, err)
		return
	}
	h.renderCategoryDetail(w, r, http.StatusOK, *category)
}

// CategoryImage uploads the posted file and stores it as the category
// thumbnail.
func (h *Handlers) CategoryImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, ok := token(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	logger := observability.FromContext(ctx)
	l := custommw.LocalizerFromContext(ctx)

	category, err := h.categories.Get(ctx, tok, chi.URLParam(r, "categoryID"))
	if err != nil {
		h.renderCategoryError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		addToasts(w, toast{Message: l.T("products.media.failedToUpload"), Tone: toneDanger})
		h.renderCategoryDetail(w, r, http.StatusBadRequest, *category)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		addToasts(w, toast{Message: l.T("products.media.failedToUpload"), Tone: toneDanger})
		h.renderCategoryDetail(w, r, http.StatusBadRequest, *category)
		return
	}
	defer file.Close()

	contentType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !catalog.IsSupportedImage(contentType) {
		addToasts(w, toast{Message: l.T("products.media.invalidFileType"), Tone: toneDanger})
		h.renderCategoryDetail(w, r, http.StatusUnprocessableEntity, *category)
		return
	}

	uploaded, err := h.categories.Upload(ctx, tok, backend.File{Name: header.Filename, ContentType: contentType, Body: file})
	if err != nil || uploaded == "" {
		logger.Warn("categories: image upload failed", zap.String("category_id", category.ID), zap.Error(err))
		addToasts(w, toast{Message: l.T("products.media.failedToUpload"), Tone: toneDanger})
		h.renderCategoryDetail(w, r, http.StatusUnprocessableEntity, *category)
		return
	}
	updated, err := catalog.SetThumbnail(ctx, h.categories, tok, *category, uploaded)
	if err != nil {
		logger.Warn("categories: thumbnail update failed", zap.String("category_id", category.ID), zap.Error(err))
		addToasts(w, toast{Message: backendMessage(l, err, "errors.generic"), Tone: toneDanger})
		h.renderCategoryDetail(w, r, http.StatusUnprocessableEntity, *category)
		return
	}
	logger.Info("categories: thumbnail updated", zap.String("category_id", updated.ID))

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, layout.Join(custommw.BasePathFromContext(ctx), categories.DetailPath(updated.ID)), http.StatusSeeOther)
		return
	}
	addToasts(w, toast{Message: l.T("categories.edit.imageSuccessToast"), Tone: toneSuccess})
	h.renderCategoryDetail(w, r, http.StatusOK, *updated)
}

func (h *Handlers) renderCategoryDetail(w http.ResponseWriter, r *http.Request, status int, c catalog.Category) {
	ctx := r.Context()
	data := categories.BuildDetail(custommw.LocalizerFromContext(ctx), custommw.BasePathFromContext(ctx), custommw.CSRFTokenFromContext(ctx), c)
	if custommw.IsHTMXRequest(ctx) {
		Render(w, r, status, categories.General(data))
		return
	}
	Render(w, r, status, categories.Detail(Chrome(r, layout.NavCategories), data))
}

func (h *Handlers) renderCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		NotFound(w, r)
		return
	}
	observability.FromContext(r.Context()).Error("categories: backend request failed", zap.Error(err))
	RenderError(w, r, backendStatus(err), "errors.backendUnavailable")
}
