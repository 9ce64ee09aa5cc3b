package handlers

import (
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"quintal/internal/auth"
	"quintal/internal/costing"
	applog "quintal/internal/log"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
)

// API bundles the dependencies shared by the HTTP handlers. Handlers keep
// no package-level state; everything is injected at construction time.
type API struct {
	db        *gorm.DB
	sessions  *scs.SessionManager
	tokens    *auth.TokenIssuer
	materials *costing.MaterialStore
	products  *costing.ProductStore
}

// New wires an API around the database handle, session manager, and token
// issuer. The token issuer may be nil when bearer authentication is not
// configured; session auth keeps working without it.
func New(database *gorm.DB, sessions *scs.SessionManager, tokens *auth.TokenIssuer) *API {
	return &API{
		db:        database,
		sessions:  sessions,
		tokens:    tokens,
		materials: costing.NewMaterialStore(database),
		products:  costing.NewProductStore(database),
	}
}

// currentUserID resolves the requesting tenant. A bearer token takes
// precedence when the Authorization header is present; otherwise the
// session cookie is consulted.
func (a *API) currentUserID(r *http.Request) (uint, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		if a.tokens == nil {
			return 0, false
		}
		value, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return 0, false
		}
		claims, err := a.tokens.Parse(strings.TrimSpace(value))
		if err != nil {
			applog.Debug(r.Context(), "bearer token rejected", "error", err)
			return 0, false
		}
		return claims.UserID, true
	}

	if a.sessions == nil {
		return 0, false
	}
	if !a.sessions.GetBool(r.Context(), sessionAuthenticatedKey) {
		return 0, false
	}
	if id := a.sessions.GetInt(r.Context(), sessionUserIDKey); id > 0 {
		return uint(id), true
	}
	return 0, false
}

// RequireAuthentication rejects requests that carry no resolvable tenant.
func (a *API) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.currentUserID(r); !ok {
			applog.Debug(r.Context(), "request without authenticated user", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
