package server

import (
	"context"
	"net/http"

	"quintal/internal/handlers"
	applog "quintal/internal/log"
)

func newRouter(api *handlers.API, limit func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.Handle("/signup", limit(http.HandlerFunc(api.Signup)))
	mux.Handle("/login", limit(http.HandlerFunc(api.Login)))
	mux.HandleFunc("/logout", api.Logout)
	mux.Handle("/api/token", limit(http.HandlerFunc(api.Token)))

	materials := api.RequireAuthentication(http.HandlerFunc(api.RawMaterialResource))
	mux.Handle("/app/api/raw-materials", materials)
	mux.Handle("/app/api/raw-materials/", materials)

	products := api.RequireAuthentication(http.HandlerFunc(api.ProductResource))
	mux.Handle("/app/api/products", products)
	mux.Handle("/app/api/products/", products)

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
