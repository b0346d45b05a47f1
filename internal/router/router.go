package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/auth"
	"fieldtrack/internal/config"
	"fieldtrack/internal/handler"
	"fieldtrack/internal/model"
	"fieldtrack/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	workerHandler *handler.WorkerHandler,
	siteHandler *handler.SiteHandler,
	sheetHandler *handler.WorkSheetHandler,
	fileHandler *handler.FileHandler,
	jobHandler *handler.JobHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if !cfg.S3Configured() {
		// Local storage backend: serve uploads straight from disk.
		e.Static("/uploads", cfg.UploadDir)
	}

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/register", authHandler.Register)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized(c)
		},
	}), identityMiddleware(tokenStore))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/me", authHandler.Me)

	// Worker routes: reads for everyone authenticated, writes for managers.
	secured.GET("/workers", workerHandler.List)
	secured.GET("/workers/:id", workerHandler.Get)
	secured.GET("/workers/:id/stats", workerHandler.Stats)
	secured.POST("/workers", workerHandler.Create, requireManager)
	secured.PUT("/workers/:id", workerHandler.Update, requireManager)
	secured.PATCH("/workers/:id/actif", workerHandler.SetActive, requireManager)
	secured.DELETE("/workers/:id", workerHandler.Delete, requireAdmin)

	// Site routes
	secured.GET("/sites", siteHandler.List)
	secured.GET("/sites/:id", siteHandler.Get)
	secured.GET("/sites/:id/stats", siteHandler.Stats)
	secured.POST("/sites", siteHandler.Create, requireManager)
	secured.PUT("/sites/:id", siteHandler.Update, requireManager)
	secured.PATCH("/sites/:id/actif", siteHandler.SetActive, requireManager)
	secured.DELETE("/sites/:id", siteHandler.Delete, requireAdmin)

	// Work-sheet routes. Per-sheet authorization and MONTEUR scoping live in
	// the workflow engine; validation privilege is enforced there too.
	secured.GET("/worksheets", sheetHandler.List)
	secured.POST("/worksheets", sheetHandler.Create)
	secured.GET("/worksheets/:id", sheetHandler.Get)
	secured.PUT("/worksheets/:id", sheetHandler.Update)
	secured.DELETE("/worksheets/:id", sheetHandler.Delete)
	secured.POST("/worksheets/:id/submit", sheetHandler.Submit)
	secured.POST("/worksheets/:id/validate", sheetHandler.Validate)
	secured.POST("/worksheets/:id/reject", sheetHandler.Reject)
	secured.GET("/worksheets/:id/frais", sheetHandler.ListExpenses)
	secured.POST("/worksheets/:id/frais", sheetHandler.AddExpense)
	secured.DELETE("/worksheets/:id/frais/:fraisId", sheetHandler.DeleteExpense)

	// File routes
	secured.POST("/files", fileHandler.Upload)
	secured.POST("/files/multiple", fileHandler.UploadMultiple)
	secured.GET("/files", fileHandler.List)
	secured.GET("/files/:id", fileHandler.Get)
	secured.DELETE("/files/:id", fileHandler.Delete)
	secured.PATCH("/files/:id/attach", fileHandler.Attach)
	secured.PATCH("/files/:id/detach", fileHandler.Detach)

	// Job registry routes
	secured.GET("/jobs", jobHandler.List, requireJobAccess)
	secured.PATCH("/jobs/:name", jobHandler.Toggle, requireJobAccess)
	secured.POST("/jobs/:name/run", jobHandler.Run, requireJobAccess)
}

// identityMiddleware converts validated JWT claims into the service-layer
// identity and rejects blacklisted access tokens.
func identityMiddleware(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return unauthorized(c)
			}

			if claims.ID != "" {
				blacklisted, _ := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
				if blacklisted {
					return unauthorized(c)
				}
			}

			handler.SetIdentity(c, service.Identity{
				UserID:   claims.UserID,
				Email:    claims.Email,
				Role:     claims.Role,
				WorkerID: claims.WorkerID,
			})
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, handler.Response{
		Success: false,
		Message: apperr.MsgInvalidToken,
	})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, handler.Response{
		Success: false,
		Message: apperr.MsgAccessDenied,
	})
}

func requireManager(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !handler.CurrentIdentity(c).Role.CanManageResources() {
			return forbidden(c)
		}
		return next(c)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if handler.CurrentIdentity(c).Role != model.RoleAdmin {
			return forbidden(c)
		}
		return next(c)
	}
}

func requireJobAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !handler.CurrentIdentity(c).Role.CanManageJobs() {
			return forbidden(c)
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
