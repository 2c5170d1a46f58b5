package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"stayledger/internal/access"
	"stayledger/internal/auth"
	"stayledger/internal/cache"
	"stayledger/internal/errors"
	"stayledger/internal/handler"
	appmw "stayledger/internal/middleware"
)

// Deps carries what the routes need.
type Deps struct {
	JWTSecret      string
	Cache          *cache.Client
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
	PaymentHandler *handler.PaymentHandler
	LedgerHandler  *handler.LedgerHandler
	AdminHandler   *handler.AdminHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(d.JWTSecret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:    appmw.ContextKeyUser,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or missing token",
				Code:  "UNAUTHORIZED",
			})
		},
	}))
	idempotent := appmw.Idempotency(d.Cache)

	payments := api.Group("/payments")
	payments.POST("", d.PaymentHandler.CreatePayment, appmw.RequireAction(access.ActionProcessPayment), idempotent)
	payments.GET("/:id", d.PaymentHandler.GetPayment, appmw.RequireAction(access.ActionViewReceipt))
	payments.GET("/:id/receipt", d.PaymentHandler.GetReceipt, appmw.RequireAction(access.ActionViewReceipt))
	payments.POST("/:id/refund", d.PaymentHandler.RefundPayment, appmw.RequireAction(access.ActionRefundPayment), idempotent)

	api.GET("/ledger/central", d.LedgerHandler.GetCentralBalance, appmw.RequireAction(access.ActionViewCentralBalance))

	admin := api.Group("/admin")
	admin.POST("/seed", d.AdminHandler.SeedLedgers, appmw.RequireAction(access.ActionSeedLedgers))
	admin.POST("/reconcile", d.AdminHandler.Reconcile, appmw.RequireAction(access.ActionReconcile))
	admin.GET("/reconcile/latest", d.AdminHandler.LatestReconciliation, appmw.RequireAction(access.ActionReconcile))
}

func requestLogger(l *zap.Logger) echo.MiddlewareFunc {
	l = l.Named("http")
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			l.Info("request", fields...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
