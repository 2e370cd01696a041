package manager

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rundetips/platform/modules/auth"
)

// Router returns the manager area routes. Every route requires an
// authenticated session with the ADMIN role; everyone else is sent
// back to the start page.
func Router() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleAdmin))

	r.Get("/", dashboard)

	return r
}

// dashboard greets the manager with their own projection. The tipping
// round administration screens hang off this entry point.
func dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"area": "manager",
		"user": user,
	})
}
