package rest

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/pkg/metrics"
	"github.com/pershin-daniil/bsa-site/pkg/models"
)

const (
	tokenCookie = "adminToken"
	loginPath   = "/admin/login"
)

type ctxClaimsType string

const ctxClaimsStr ctxClaimsType = "claims"

var ErrUnauthorised = errors.New("unauthorized")

// TokenVerifier decides whether a stored admin token opens the admin pages.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// PresenceVerifier accepts any non-empty token.
type PresenceVerifier struct{}

func (PresenceVerifier) Verify(token string) (*models.Claims, error) {
	if token == "" {
		return nil, ErrUnauthorised
	}
	return &models.Claims{}, nil
}

// JWTVerifier accepts RS256 tokens signed by the API's key.
type JWTVerifier struct {
	key *rsa.PublicKey
}

func NewJWTVerifier(publicKeyPEM string) (*JWTVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("err parsing public key: %w", err)
	}
	return &JWTVerifier{key: key}, nil
}

func (v *JWTVerifier) Verify(token string) (*models.Claims, error) {
	if token == "" {
		return nil, ErrUnauthorised
	}
	return parseToken(token, v.key)
}

// adminOnly sends visitors without a valid token to the login page. No
// message is shown.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookie)
		if err != nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		claims, err := s.verifier.Verify(cookie.Value)
		if err != nil {
			s.log.Debugf("rejected admin token: %v", err)
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), ctxClaimsStr, claims))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getClaims(ctx context.Context) *models.Claims {
	claims, ok := ctx.Value(ctxClaimsStr).(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}

func parseToken(accessToken string, key *rsa.PublicKey) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("invalid signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("err parsing token: %w", err)
	}
	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		}).Debug("request served")
	})
}
