package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"compassevent/internal/delivery/http/controllers"
	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/delivery/http/middleware"
	"compassevent/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	Verifier       domain.TokenVerifier
	Access         domain.AccessService
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes and the
// global middleware stack.
func NewRouter(c Controllers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	confirmed := middleware.RequireEmailConfirmed(cfg.Access, cfg.Logger)
	selfOrAdmin := middleware.RequireSelfOrAdmin(cfg.Access, cfg.Logger, "id")
	adminOnly := middleware.RequireRoles(cfg.Access, cfg.Logger, domain.RoleAdmin)
	publishers := middleware.RequireRoles(cfg.Access, cfg.Logger, domain.RoleAdmin, domain.RoleOrganizer)

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /auth/confirm-email", c.Auth.ConfirmEmail)

	// Users
	mux.HandleFunc("POST /users", c.User.Create)
	mux.HandleFunc("PATCH /users/me", middleware.Chain(c.User.UpdateMe, auth, confirmed))
	mux.HandleFunc("GET /users", middleware.Chain(c.User.FindAll, auth, confirmed, adminOnly))
	mux.HandleFunc("GET /users/{id}", middleware.Chain(c.User.FindByID, auth, confirmed, selfOrAdmin))
	mux.HandleFunc("DELETE /users/{id}", middleware.Chain(c.User.Delete, auth, confirmed, selfOrAdmin))

	// Events
	mux.HandleFunc("POST /events", middleware.Chain(c.Event.Create, auth, publishers))
	mux.HandleFunc("GET /events", middleware.Chain(c.Event.FindAll, auth))
	mux.HandleFunc("GET /events/{id}", middleware.Chain(c.Event.FindOne, auth))
	mux.HandleFunc("PATCH /events/{id}", middleware.Chain(c.Event.Update, auth, publishers))
	mux.HandleFunc("DELETE /events/{id}", middleware.Chain(c.Event.Delete, auth, publishers))

	// Registrations
	mux.HandleFunc("POST /registrations", middleware.Chain(c.Registration.Create, auth))
	mux.HandleFunc("GET /registrations", middleware.Chain(c.Registration.List, auth))
	mux.HandleFunc("DELETE /registrations/{id}", middleware.Chain(c.Registration.Cancel, auth))

	mux.HandleFunc("GET /health", health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RequestID(handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	return handler
}

// health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /health [get]
func health(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
