package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/classgrid/classgrid-backend/internal/config"
	"github.com/classgrid/classgrid-backend/internal/handler"
	"github.com/classgrid/classgrid-backend/internal/middleware"
	"github.com/classgrid/classgrid-backend/internal/response"
	"github.com/classgrid/classgrid-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Org    *handler.OrgHandler
	Class  *handler.ClassHandler
	Join   *handler.JoinHandler
	Access *handler.AccessHandler
	Undo   *handler.UndoHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	accessService *service.AccessService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the auth and join surfaces, the two places an
	// anonymous or freshly-registered IP can hammer.
	limiter := middleware.NewRateLimiter(cfg.RateLimitBurst, cfg.RateLimitInterval)

	auth := router.Group("/api/v1/auth")
	auth.Use(limiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		// Join codes. Lookup and redemption are rate limited: codes are
		// short enough that enumeration has to be made expensive.
		joinGroup := api.Group("/join")
		joinGroup.Use(limiter.Middleware())
		{
			joinGroup.GET("/:code", handlers.Join.LookupCode)
			joinGroup.GET("/:code/students", handlers.Join.ClassStudents)
			joinGroup.POST("", handlers.Join.Join)
		}

		// Undo: one pending slot per caller, no scope guard needed.
		api.GET("/undo", handlers.Undo.GetPending)
		api.POST("/undo", handlers.Undo.Undo)

		// Organizations.
		api.GET("/orgs", handlers.Org.ListOrgs)
		api.POST("/orgs", handlers.Org.CreateOrg)

		orgGroup := api.Group("/orgs/:org_id")
		{
			orgGroup.GET("",
				middleware.RequireMember(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.GetOrg,
			)
			orgGroup.GET("/access", handlers.Access.GetOrgAccess)
			orgGroup.PUT("",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.UpdateOrg,
			)
			orgGroup.DELETE("",
				middleware.RequireOwner(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.DeleteOrg,
			)
			orgGroup.POST("/members",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.GrantRole,
			)
			orgGroup.DELETE("/members",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.RevokeRole,
			)
			orgGroup.GET("/audit",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Org.GetOrgAudit,
			)

			orgGroup.GET("/classes",
				middleware.RequireMember(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Class.ListClasses,
			)
			orgGroup.POST("/classes",
				middleware.RequireTeacherOrAbove(accessService, middleware.ScopeOrg, "org_id"),
				handlers.Class.CreateClass,
			)
		}

		// Classes.
		classGroup := api.Group("/classes/:class_id")
		{
			classGroup.GET("",
				middleware.RequireMember(accessService, middleware.ScopeClass, "class_id"),
				handlers.Class.GetClass,
			)
			classGroup.GET("/access", handlers.Access.GetClassAccess)
			classGroup.PUT("",
				middleware.RequireTeacherOrAbove(accessService, middleware.ScopeClass, "class_id"),
				handlers.Class.UpdateClass,
			)
			classGroup.DELETE("",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeClass, "class_id"),
				handlers.Class.DeleteClass,
			)
			classGroup.POST("/join-codes",
				middleware.RequireOwnerOrAdmin(accessService, middleware.ScopeClass, "class_id"),
				handlers.Class.ReissueJoinCodes,
			)
			classGroup.DELETE("/members",
				middleware.RequireTeacherOrAbove(accessService, middleware.ScopeClass, "class_id"),
				handlers.Class.RemoveMember,
			)
		}
	}

	// WebSocket group: token comes in the query string, membership is
	// still enforced before the upgrade.
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/classes/:class_id/events",
			middleware.RequireMember(accessService, middleware.ScopeClass, "class_id"),
			handlers.WS.ClassEventStream,
		)
	}

	return router
}
