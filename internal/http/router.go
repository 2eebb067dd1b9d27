package http

import (
	"log/slog"
	"net/http"

	goversion "github.com/caarlos0/go-version"
	"github.com/geocoder89/userroster/internal/http/handlers"
	"github.com/geocoder89/userroster/internal/http/middlewares"
	"github.com/geocoder89/userroster/internal/observability"
	"github.com/geocoder89/userroster/internal/roster"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Env         string
	ServiceName string

	Store    *roster.Store
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Version  goversion.Info

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	// tests set gin.TestMode themselves
	if deps.Env != "dev" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if deps.ServiceName != "" {
		r.Use(otelgin.Middleware(deps.ServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSAllowedOrigins))

	status := func() (string, string) {
		s, loadErr := deps.Store.Status()
		return string(s), loadErr
	}

	// health
	h := handlers.NewHealthHandler(status)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v := handlers.NewVersionHandler(deps.Version)
	r.GET("/version", v.Version)

	// roster

	rosterHandler := handlers.NewRosterHandler(deps.Store)

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// the full view reports loading and failed loads itself
	r.GET("/roster", rosterHandler.GetRoster)

	g := r.Group("/roster")
	g.Use(middlewares.RequireReady(status))
	g.Use(middlewares.MaxBodyBytes(maxBody))
	g.Use(middlewares.RequireJSON())

	g.GET("/users", rosterHandler.ListUsers)
	g.GET("/users/:id", rosterHandler.GetUser)
	g.POST("/users", rosterHandler.AddUser)
	g.DELETE("/users/:id", rosterHandler.DeleteUser)

	g.GET("/form", rosterHandler.GetForm)
	g.PUT("/form/:field", rosterHandler.SetField)

	g.POST("/edit", rosterHandler.BeginEdit)
	g.PUT("/edit", rosterHandler.UpdateUser)
	g.DELETE("/edit", rosterHandler.CancelEdit)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
