package auth

import (
	"github.com/MKdir98/vendor-panel/internal/panel/i18n"
	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

// LoginData is the sign-in page payload.
type LoginData struct {
	L            *i18n.Localizer
	Action       string
	RegisterHref string
	TermsHref    string
	CSRFToken    string
	Email        string
	Remember     bool
	Next         string
	Expired      bool
	Errors       map[string]string
	RootError    string
}

// RegisterData is the registration page payload.
type RegisterData struct {
	L         *i18n.Localizer
	Action    string
	LoginHref string
	TermsHref string
	CSRFToken string
	Name      string
	Email     string
	Errors    map[string]string
	RootError string
	Success   bool
}

// NewLogin returns an empty sign-in page.
func NewLogin(l *i18n.Localizer, basePath, csrf string) LoginData {
	return LoginData{
		L:            l,
		Action:       layout.Join(basePath, "/login"),
		RegisterHref: layout.Join(basePath, "/register"),
		TermsHref:    layout.Join(basePath, "/terms"),
		CSRFToken:    csrf,
		Errors:       map[string]string{},
	}
}

// NewRegister returns an empty registration page.
func NewRegister(l *i18n.Localizer, basePath, csrf string) RegisterData {
	return RegisterData{
		L:         l,
		Action:    layout.Join(basePath, "/register"),
		LoginHref: layout.Join(basePath, "/login"),
		TermsHref: layout.Join(basePath, "/terms"),
		CSRFToken: csrf,
		Errors:    map[string]string{},
	}
}

// Translate resolves message keys into the error map. The empty key is the
// form-level message.
func Translate(l *i18n.Localizer, keys map[string]string) (fields map[string]string, root string) {
	fields = map[string]string{}
	for field, key := range keys {
		if field == "" {
			root = l.T(key)
			continue
		}
		fields[field] = l.T(key)
	}
	return fields, root
}
