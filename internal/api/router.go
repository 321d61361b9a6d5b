package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/feirahub/marketplace-api/internal/api/handler"
	"github.com/feirahub/marketplace-api/internal/api/middleware"
	"github.com/feirahub/marketplace-api/internal/core/auth"
	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

// RouterDeps carries everything the HTTP surface needs. Services and the
// auth core are constructed in main; the router only wires them to routes.
type RouterDeps struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Accounts ports.AccountService
	Stores   ports.StoreService
	Verifier *auth.Verifier
	Guard    *auth.Guard
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Route guards ---
	managerOnly := middleware.Authenticate(deps.Guard, domain.RoleManager)
	anyPrincipal := middleware.Authenticate(deps.Guard)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Verifier)
	profileHandler := handler.NewProfileHandler(deps.Accounts)
	storeHandler := handler.NewStoreHandler(deps.Stores)

	// --- Public surface ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "marketplace-api"})
	})
	e.POST("/managers", authHandler.RegisterManager)
	e.POST("/customers", authHandler.RegisterCustomer)
	e.POST("/login/manager", authHandler.LoginManager)
	e.POST("/login/customer", authHandler.LoginCustomer)
	e.GET("/auth/status", authHandler.Status)
	e.GET("/stores", storeHandler.ListAll)
	e.GET("/stores/:id/photo", storeHandler.Photo)

	// --- Authenticated, either role ---
	e.GET("/me", profileHandler.Me, anyPrincipal)
	e.PUT("/me", profileHandler.UpdateMe, anyPrincipal)
	e.DELETE("/me", profileHandler.DeleteMe, anyPrincipal)

	// --- Manager-only ---
	e.GET("/managers", profileHandler.ListManagers, managerOnly)
	e.GET("/managers/me/stores", storeHandler.ListMine, managerOnly)
	e.POST("/stores", storeHandler.Create, managerOnly)
	e.PUT("/stores/:id", storeHandler.Update, managerOnly)
	e.DELETE("/stores/:id", storeHandler.Delete, managerOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
