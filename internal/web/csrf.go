package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	csrfField  = "_csrf"
	csrfCookie = "donorform_csrf"
)

// csrfGuard implements the double-submit cookie pattern: the token stored in
// a cookie must be echoed back in the form field.
type csrfGuard struct {
	random func([]byte) (int, error)
}

func newCSRFGuard() *csrfGuard {
	return &csrfGuard{random: rand.Read}
}

// token returns the request's token, issuing a cookie when missing.
func (g *csrfGuard) token(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	buf := make([]byte, 32)
	if _, err := g.random(buf); err != nil {
		return ""
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return value
}

func (g *csrfGuard) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(csrfCookie)
		if err != nil || cookie.Value == "" {
			http.Error(w, "missing csrf token", http.StatusForbidden)
			return
		}
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && err != http.ErrNotMultipart {
			http.Error(w, "invalid form payload", http.StatusBadRequest)
			return
		}
		sent := r.PostFormValue(csrfField)
		if subtle.ConstantTimeCompare([]byte(sent), []byte(cookie.Value)) != 1 {
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
