package api

import (
	"database/sql"
	"net/http"

	"github.com/morskmorsk/personal-item-tracker/internal/blob"
)

// NewRouter creates the API router with all endpoints registered.
// Every route except login sits behind the auth middleware, so an
// unauthenticated caller never reaches validator or store logic.
func NewRouter(db *sql.DB, jwtSecret string, blobs *blob.Store) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db, Blobs: blobs}
	locationsHandler := &LocationsHandler{DB: db, Blobs: blobs}
	itemsHandler := &ItemsHandler{DB: db, Blobs: blobs}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login/{$}", authHandler.Login)

	// Authenticated session management.
	mux.Handle("POST /api/auth/logout/{$}", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password/{$}", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}/{$}", authMW(RequireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Categories.
	mux.Handle("GET /api/categories/{$}", authMW(http.HandlerFunc(categoriesHandler.List)))
	mux.Handle("POST /api/categories/{$}", authMW(http.HandlerFunc(categoriesHandler.Create)))
	mux.Handle("GET /api/categories/{id}/{$}", authMW(http.HandlerFunc(categoriesHandler.Get)))
	mux.Handle("PUT /api/categories/{id}/{$}", authMW(http.HandlerFunc(categoriesHandler.Update)))
	mux.Handle("PATCH /api/categories/{id}/{$}", authMW(http.HandlerFunc(categoriesHandler.Update)))
	mux.Handle("DELETE /api/categories/{id}/{$}", authMW(http.HandlerFunc(categoriesHandler.Delete)))

	// Locations.
	mux.Handle("GET /api/locations/{$}", authMW(http.HandlerFunc(locationsHandler.List)))
	mux.Handle("POST /api/locations/{$}", authMW(http.HandlerFunc(locationsHandler.Create)))
	mux.Handle("GET /api/locations/{id}/{$}", authMW(http.HandlerFunc(locationsHandler.Get)))
	mux.Handle("PUT /api/locations/{id}/{$}", authMW(http.HandlerFunc(locationsHandler.Update)))
	mux.Handle("PATCH /api/locations/{id}/{$}", authMW(http.HandlerFunc(locationsHandler.Update)))
	mux.Handle("DELETE /api/locations/{id}/{$}", authMW(http.HandlerFunc(locationsHandler.Delete)))

	// Items. The grouped_by literals are more specific than {id}, so
	// the mux routes them first.
	mux.Handle("GET /api/items/{$}", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items/{$}", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/grouped_by_category/{$}", authMW(http.HandlerFunc(itemsHandler.GroupedByCategory)))
	mux.Handle("GET /api/items/grouped_by_location/{$}", authMW(http.HandlerFunc(itemsHandler.GroupedByLocation)))
	mux.Handle("GET /api/items/{id}/{$}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}/{$}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("PATCH /api/items/{id}/{$}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}/{$}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("GET /api/items/{id}/image/{$}", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	return mux
}
