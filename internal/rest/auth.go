package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pershin-daniil/bsa-site/pkg/models"
)

const dashboardPath = "/admin/dashboard"

func (s *Server) adminRootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, dashboardPath, http.StatusFound)
}

func (s *Server) loginPageHandler(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "login", view{"Title": "Admin Login"})
}

// loginHandler trades the credentials for a token at the API and keeps it in
// the session cookie.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login", view{"Title": "Admin Login", "Error": "Invalid form."})
		return
	}
	creds := models.LoginCredentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	data := view{"Title": "Admin Login", "Email": creds.Email}
	if creds.Email == "" || creds.Password == "" {
		data["Error"] = "Email and password are required."
		s.render(w, http.StatusUnprocessableEntity, "login", data)
		return
	}
	auth, err := s.api.Login(r.Context(), creds)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		data["Error"] = "Invalid email or password."
		s.render(w, http.StatusUnauthorized, "login", data)
		return
	case err != nil:
		s.log.Warnf("err during login: %v", err)
		data["Error"] = "Login is unavailable right now, please try again."
		s.render(w, http.StatusBadGateway, "login", data)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    auth.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.log.Infof("admin %s logged in", auth.Data.Admin.Email)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
