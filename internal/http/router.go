package api

import (
	"database/sql"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	intconfig "simplecrud/internal/config"
	intdb "simplecrud/internal/db"
	"simplecrud/internal/domain"
	"simplecrud/internal/domain/models"
	"simplecrud/internal/events"
	"simplecrud/internal/forms"
	h "simplecrud/internal/http/handlers"
	"simplecrud/internal/http/middleware"
	"simplecrud/internal/repositories"
	"simplecrud/internal/services"
	"simplecrud/internal/utils"
)

// Deps are the collaborators the router wires into every resource.
type Deps struct {
	Env    intconfig.Env
	DB     *sql.DB
	Events events.Dispatcher
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it.
	BcryptCost int
}

func NewRouter(deps Deps) *gin.Engine {
	env := deps.Env
	dialect := intdb.For(env.DBDriver)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.Metrics(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route tidak ditemukan",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := repositories.UserRepository{
		SQLRepository: repositories.NewSQLRepository(deps.DB, dialect, repositories.UserTable()),
	}
	auth := services.AuthService{Users: users, Secret: []byte(env.JWTSecret), TTL: 24 * time.Hour}
	system := &h.SystemHandler{DB: deps.DB, Router: r}

	api := r.Group("/api")
	api.Use(middleware.RateLimit(env.RateLimitRPS, env.RateLimitBurst), middleware.Auth(auth))
	{
		api.GET("/health", system.Health)
		staff := middleware.RequireRoles(models.RoleOwner, models.RoleAdmin)
		api.GET("/db-check", staff, system.DBCheck)
		api.GET("/routes", staff, system.Routes)

		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.AuthHandler{Auth: auth}.Login)

		settings := resourceSettings{env: env, db: deps.DB, dialect: dialect, events: deps.Events}

		mountResource(api.Group("/vehicles"), settings, services.Definition[*models.Vehicle]{
			Name:      "vehicles",
			New:       func() *models.Vehicle { return &models.Vehicle{} },
			NewFilter: func() any { return &models.VehicleFilter{} },
		}, repositories.VehicleTable(), forms.VehicleForm())

		mountResource(api.Group("/drivers"), settings, services.Definition[*models.Driver]{
			Name:      "drivers",
			New:       func() *models.Driver { return &models.Driver{} },
			NewFilter: func() any { return &models.DriverFilter{} },
		}, repositories.DriverTable(), forms.DriverForm())

		mountResourceWith(api.Group("/users"), settings, services.Definition[*models.User]{
			Name:      "users",
			New:       func() *models.User { return &models.User{} },
			NewFilter: func() any { return &models.UserFilter{} },
		}, users, repositories.NewSQLManager(deps.DB, dialect, repositories.UserTable()), forms.UserForm(deps.BcryptCost))
	}

	return r
}

type resourceSettings struct {
	env     intconfig.Env
	db      *sql.DB
	dialect intdb.Dialect
	events  events.Dispatcher
}

func mountResource[T domain.Resource, P any](g *gin.RouterGroup, s resourceSettings, def services.Definition[T], table *repositories.Table[T], form forms.StructForm[T, P]) {
	mountResourceWith(g, s, def,
		repositories.NewSQLRepository(s.db, s.dialect, table),
		repositories.NewSQLManager(s.db, s.dialect, table),
		form,
	)
}

func mountResourceWith[T domain.Resource](g *gin.RouterGroup, s resourceSettings, def services.Definition[T], repo services.Repository, manager services.Manager, form forms.Form[T]) {
	def.ListLimit = s.env.ListLimit
	def.PushdownPagination = s.env.ListPushdown

	handler := &h.ResourceHandler[T]{
		Service: services.ResourceService[T]{
			Def:     def,
			Repo:    repo,
			Manager: manager,
			Filters: repositories.FilterBuilder{},
			Form:    form,
			Events:  s.events,
		},
		PublicURL: s.env.PublicURL,
	}
	handler.Mount(g)
}
