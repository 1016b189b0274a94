package bootstrap

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-backend/config"
	httpapi "github.com/devfolio/portfolio-backend/internal/api/http"
	"github.com/devfolio/portfolio-backend/internal/api/http/middleware"
	authhttp "github.com/devfolio/portfolio-backend/internal/auth/http"
	authmw "github.com/devfolio/portfolio-backend/internal/auth/middleware"
	"github.com/devfolio/portfolio-backend/internal/contacts"
	"github.com/devfolio/portfolio-backend/internal/media"
	projecthttp "github.com/devfolio/portfolio-backend/internal/projects/http"
	"github.com/devfolio/portfolio-backend/internal/skills"
	"github.com/devfolio/portfolio-backend/internal/store"
	"github.com/devfolio/portfolio-backend/internal/technologies"
)

// credential endpoints get a fixed, stricter budget than the contact form
const (
	authPerMinute = 10
	authBurst     = 5
)

type RouterDeps struct {
	Config *config.Config
	Log    *zap.Logger
	Store  store.Store
	Gate   *authmw.Gate
	// Admin guards every mutating route.
	Admin gin.HandlerFunc

	Projects     *projecthttp.Handler
	Skills       *skills.Handler
	Technologies *technologies.Handler
	Contacts     *contacts.Handler
	Media        *media.Handler
	Auth         *authhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ZapLogger(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(dep.Gate.Handler())

	healthHandler := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")

	dep.Projects.Register(api.Group("/projects"), dep.Admin)
	dep.Skills.Register(api.Group("/skills"), dep.Admin)
	dep.Technologies.Register(api.Group("/technologies"), dep.Admin)

	contactLimit := middleware.NewIPRateLimiter(cfg.RateLimit.ContactPerMinute, cfg.RateLimit.ContactBurst)
	dep.Contacts.RegisterPublic(api, contactLimit.Middleware())

	admin := api.Group("/admin")
	dep.Contacts.RegisterAdmin(admin, dep.Admin)
	dep.Media.Register(admin, dep.Admin)

	authLimit := middleware.NewIPRateLimiter(authPerMinute, authBurst)
	dep.Auth.Register(api.Group("/auth"), authLimit.Middleware())

	r.NoRoute(notFound(cfg.Server.StaticDir))

	return r
}

// notFound serves the exported site from dir for page paths. API paths, and
// every path when dir is empty, get a JSON 404.
func notFound(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if files == nil || p == "/api" || strings.HasPrefix(p, "/api/") {
			c.JSON(http.StatusNotFound, httpapi.ErrorResponse{Error: "Not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
