// Package controllers holds the HTTP handlers for every resource.
package controllers

import (
	"net/http"
	"strings"

	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/delivery/http/middleware"
	"compassevent/internal/domain"
)

// DefaultMaxUploadBytes bounds multipart bodies when the controller is built without a limit.
const DefaultMaxUploadBytes = 5 << 20

// requirePrincipal returns the authenticated principal or writes 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

func uploadLimit(n int64) int64 {
	if n <= 0 {
		return DefaultMaxUploadBytes
	}
	return n
}
