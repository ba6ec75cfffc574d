package httpsrv

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// RouteRegistrar lets every domain package hang its handlers on the shared
// router.
type RouteRegistrar interface {
	RegisterRoutes(public, protected *mux.Router)
}

// NewRouter builds the API router: everything under the protected subrouter
// requires a valid session token.
func NewRouter(auth Authenticator, registrars ...RouteRegistrar) http.Handler {
	root := mux.NewRouter()

	public := root.NewRoute().Subrouter()

	protected := root.NewRoute().Subrouter()
	protected.Use(RequireAuth(auth))

	for _, reg := range registrars {
		reg.RegisterRoutes(public, protected)
	}

	return root
}

// NewServer wraps the router with the standard middleware chain and CORS
// settings for the browser client.
func NewServer(bind string, handler http.Handler, allowedOrigins []string) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	chain := alice.New(RecoverPanic, LogRequest, c.Handler).Then(handler)

	return &http.Server{
		Addr:              bind,
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
