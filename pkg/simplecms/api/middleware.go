package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// roleContextKey is the context key under which RoleResolver stores the
// resolved role.
type roleContextKey struct{}

// RoleResolver decides the caller's role from the token verified by
// jwtauth.Verifier earlier in the chain. Requests without a valid token are
// served as the public role rather than rejected; the permission checks
// decide what each role may read.
func RoleResolver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := simplecms.RolePublic
		if token, _, err := jwtauth.FromContext(r.Context()); err == nil && token != nil {
			role = simplecms.RoleAuthenticated
		}
		ctx := context.WithValue(r.Context(), roleContextKey{}, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleFromContext returns the role resolved for the request, defaulting to
// public.
func RoleFromContext(ctx context.Context) simplecms.RoleKind {
	if role, ok := ctx.Value(roleContextKey{}).(simplecms.RoleKind); ok {
		return role
	}
	return simplecms.RolePublic
}

// Router assembles the public content API: bearer token verification, role
// resolution and the collection routes.
func Router(service simplecms.Service, jwtSecret string) chi.Router {
	r := chi.NewRouter()

	tokenAuth := jwtauth.New("HS256", []byte(jwtSecret), nil)
	r.Use(jwtauth.Verifier(tokenAuth))
	r.Use(RoleResolver)

	r.Mount("/", NewContentHandler(service).Routes())
	return r
}
