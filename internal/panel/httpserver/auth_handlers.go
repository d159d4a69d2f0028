package httpserver

import (
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/auth"
	"github.com/MKdir98/vendor-panel/internal/panel/backend"
	custommw "github.com/MKdir98/vendor-panel/internal/panel/httpserver/middleware"
	"github.com/MKdir98/vendor-panel/internal/panel/httpserver/ui"
	"github.com/MKdir98/vendor-panel/internal/panel/observability"
	authtpl "github.com/MKdir98/vendor-panel/internal/panel/templates/auth"
)

type authHandlers struct {
	service       auth.Service
	authenticator custommw.Authenticator
	ui            *ui.Handlers
	basePath      string
	loginPath     string
}

func newAuthHandlers(service auth.Service, authenticator custommw.Authenticator, handlers *ui.Handlers, basePath, loginPath string) *authHandlers {
	if service == nil {
		panic("auth: service is required")
	}
	if authenticator == nil {
		panic("auth: authenticator is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		loginPath = resolveLoginPath(basePath, "")
	}
	return &authHandlers{
		service:       service,
		authenticator: authenticator,
		ui:            handlers,
		basePath:      basePath,
		loginPath:     loginPath,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) {
		http.Redirect(w, r, h.redirectTarget(r.URL.Query().Get("next")), http.StatusFound)
		return
	}

	data := h.loginData(r)
	data.Next = h.normalizeNext(r.URL.Query().Get("next"))
	data.Expired = r.URL.Query().Get("reason") == "expired" || custommw.SessionExpired(r.Context())
	h.renderLogin(w, r, http.StatusOK, data)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	l := custommw.LocalizerFromContext(ctx)
	data := h.loginData(r)

	if err := r.ParseForm(); err != nil {
		data.RootError = l.T("login.failed")
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	}

	form := auth.LoginFormFromValues(r.PostForm)
	data.Email = form.Email
	data.Remember = form.Remember
	data.Next = h.normalizeNext(r.PostFormValue("next"))

	if errs := form.Validate(); errs != nil {
		data.Errors, data.RootError = authtpl.Translate(l, errs)
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	token, err := h.service.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		logger.Info("login failed", zap.String("email", form.Email), zap.Error(err))
		if errors.Is(err, auth.ErrInvalidCredentials) {
			data.Errors["email"] = l.T("login.invalidCredentials")
		} else {
			data.RootError = l.T("login.failed")
		}
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	user, err := h.authenticator.Authenticate(r, token)
	if err != nil || user == nil {
		logger.Warn("login token rejected", zap.String("email", form.Email), zap.Error(err))
		data.RootError = l.T("login.failed")
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	if user.Email == "" {
		user.Email = form.Email
	}

	if sess, ok := custommw.SessionFromContext(ctx); ok && sess != nil {
		h.ui.DropCollection(sess.ID())
		if err := sess.SignIn(custommw.SellerFromUser(user)); err != nil {
			logger.Error("login: rotate session failed", zap.Error(err))
			data.RootError = l.T("login.failed")
			h.renderLogin(w, r, http.StatusInternalServerError, data)
			return
		}
		sess.SetRememberMe(form.Remember)
	}
	logger.Info("login succeeded", zap.String("actor_id", user.UID))

	target := h.redirectTarget(data.Next)
	if custommw.IsHTMXRequest(ctx) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, h.registerData(r))
}

func (h *authHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := custommw.LocalizerFromContext(ctx)
	data := h.registerData(r)

	if err := r.ParseForm(); err != nil {
		data.RootError = l.T("register.failed")
		h.renderRegister(w, r, http.StatusBadRequest, data)
		return
	}

	form := auth.RegisterFormFromValues(r.PostForm)
	data.Name = form.Name
	data.Email = form.Email

	if errs := form.Validate(); errs != nil {
		data.Errors, data.RootError = authtpl.Translate(l, errs)
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if err := h.service.Register(ctx, form.Registration()); err != nil {
		observability.FromContext(ctx).Info("registration failed", zap.String("email", form.Email), zap.Error(err))
		if errors.Is(err, auth.ErrEmailTaken) {
			msg := backend.MessageOf(err)
			if msg == "" {
				msg = l.T("register.emailTaken")
			}
			data.Errors["email"] = msg
		} else {
			data.RootError = l.T("register.failed")
		}
		h.renderRegister(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	data.Success = true
	h.renderRegister(w, r, http.StatusOK, data)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		h.ui.DropCollection(sess.ID())
		sess.Destroy()
	}

	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", h.loginPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}

func (h *authHandlers) loginData(r *http.Request) authtpl.LoginData {
	ctx := r.Context()
	return authtpl.NewLogin(custommw.LocalizerFromContext(ctx), h.basePath, custommw.CSRFTokenFromContext(ctx))
}

func (h *authHandlers) registerData(r *http.Request) authtpl.RegisterData {
	ctx := r.Context()
	return authtpl.NewRegister(custommw.LocalizerFromContext(ctx), h.basePath, custommw.CSRFTokenFromContext(ctx))
}

func (h *authHandlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, data authtpl.LoginData) {
	if custommw.IsHTMXRequest(r.Context()) {
		ui.Render(w, r, status, authtpl.LoginForm(data))
		return
	}
	ui.Render(w, r, status, authtpl.Login(ui.Chrome(r, ""), data))
}

func (h *authHandlers) renderRegister(w http.ResponseWriter, r *http.Request, status int, data authtpl.RegisterData) {
	if custommw.IsHTMXRequest(r.Context()) {
		ui.Render(w, r, status, authtpl.RegisterForm(data))
		return
	}
	ui.Render(w, r, status, authtpl.Register(ui.Chrome(r, ""), data))
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok || sess == nil || strings.TrimSpace(sess.Token()) == "" {
		return false
	}
	user, err := h.authenticator.Authenticate(r, sess.Token())
	return err == nil && user != nil
}

func (h *authHandlers) redirectTarget(raw string) string {
	if next := h.normalizeNext(raw); next != "" {
		return next
	}
	if h.basePath == "/" {
		return "/"
	}
	return h.basePath + "/"
}

func (h *authHandlers) normalizeNext(raw string) string {
	sanitized := sanitizeNextTarget(h.basePath, raw)
	if sanitized == "" {
		return ""
	}
	if samePath(pathOnly(sanitized), h.loginPath) {
		return ""
	}
	return sanitized
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	trim := func(p string) string {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		for len(p) > 1 && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		return p
	}
	return trim(a) == trim(b)
}

// sanitizeNextTarget accepts only same-origin paths under basePath.
func sanitizeNextTarget(basePath, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}

	pathValue := parsed.Path
	if pathValue == "" {
		pathValue = "/"
	}
	unescaped, err := url.PathUnescape(pathValue)
	if err != nil {
		return ""
	}
	if strings.Contains(unescaped, "\\") {
		return ""
	}

	cleaned := path.Clean(unescaped)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return ""
	}

	base := custommw.NormalizeBasePath(basePath)
	if base != "/" && !hasSafePrefix(cleaned, base) {
		return ""
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	return target
}

func hasSafePrefix(pathValue, base string) bool {
	if base == "/" {
		return strings.HasPrefix(pathValue, "/")
	}
	if !strings.HasPrefix(pathValue, base) {
		return false
	}
	if len(pathValue) == len(base) {
		return true
	}
	return pathValue[len(base)] == '/'
}

func pathOnly(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
