package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/middleware"
)

// DefaultRoutePolicy is the access table for the routes registered by NewRouter.
func DefaultRoutePolicy() *middleware.RoutePolicy {
	return middleware.NewRoutePolicy(
		middleware.PolicyRule{Pattern: "/health", Policy: middleware.PolicyIgnored},
		middleware.PolicyRule{Pattern: "/api/users/signup", Policy: middleware.PolicyPublic},
		middleware.PolicyRule{Pattern: "/api/users/login", Policy: middleware.PolicyPublic},
		middleware.PolicyRule{Pattern: "/api/users/reissue", Policy: middleware.PolicyPublic},
		middleware.PolicyRule{Pattern: "/api/users/*", Policy: middleware.PolicyAuthenticated},
	)
}

// NewRouter registers the routes and wraps the whole router with logging and
// the policy gate, so paths mux cannot match still go through the table.
func NewRouter(
	authHandlers *AuthHandlers,
	authMiddleware *middleware.AuthMiddleware,
	policy *middleware.RoutePolicy,
	logger *logrus.Logger,
) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	users := router.PathPrefix("/api/users").Subrouter()
	users.HandleFunc("/signup", authHandlers.SignUp).Methods("POST")
	users.HandleFunc("/login", authHandlers.Login).Methods("POST")
	users.HandleFunc("/reissue", authHandlers.Reissue).Methods("POST")
	users.HandleFunc("/logout", authHandlers.Logout).Methods("POST")
	users.HandleFunc("/me", authHandlers.MyInfo).Methods("GET")

	return middleware.LoggingMiddleware(logger)(authMiddleware.Enforce(policy)(router))
}
