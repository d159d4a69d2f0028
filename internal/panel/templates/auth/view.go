// Package auth renders the sign-in and registration pages.
package auth

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/MKdir98/vendor-panel/internal/panel/templates/layout"
)

//go:embed *.html
var files embed.FS

var (
	loginTmpl    = layout.Parse(files, "login.html")
	registerTmpl = layout.Parse(files, "register.html")
)

// Login renders the sign-in page.
func Login(chrome layout.Chrome, data LoginData) templ.Component {
	chrome.Title = data.L.T("login.title")
	chrome.Bare = true
	return layout.Page(loginTmpl, chrome, data)
}

// LoginForm renders the sign-in form fragment.
func LoginForm(data LoginData) templ.Component {
	return layout.Fragment(loginTmpl, "login-form", data)
}

// Register renders the registration page.
func Register(chrome layout.Chrome, data RegisterData) templ.Component {
	chrome.Title = data.L.T("register.title")
	chrome.Bare = true
	return layout.Page(registerTmpl, chrome, data)
}

// RegisterForm renders the registration form fragment.
func RegisterForm(data RegisterData) templ.Component {
	return layout.Fragment(registerTmpl, "register-form", data)
}
