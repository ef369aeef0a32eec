package httpx

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/campusauth/internal/http/handlers"
	"github.com/you/campusauth/internal/http/middleware"
)

// Routes is everything the router mounts
type Routes struct {
	Auth        *handlers.AuthHandlers
	Admin       *handlers.AdminHandlers
	University  *handlers.UniversityHandlers
	Policy      *handlers.PolicyHandlers
	External    *handlers.ExternalAuthzHandlers
	JWT         *middleware.AuthMW
	Casbin      middleware.CasbinMiddleware
	Logger      *zap.Logger
	Development bool
}

func BuildRouter(rt Routes) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(rt.Logger), middleware.Recovery(rt.Logger, rt.Development))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/universities/list", rt.University.List)

	external := r.Group("/external")
	external.POST("/authz", rt.External.Authorize)
	external.GET("/health", rt.External.Health)

	auth := r.Group("/auth")
	auth.POST("/request-otp", rt.Auth.RequestOTP)
	auth.POST("/verify-otp", rt.Auth.VerifyOTP)

	session := r.Group("/").Use(rt.JWT.WithJWT())
	session.GET("/auth/me", rt.Auth.Me)
	session.POST("/auth/logout", rt.Auth.Logout)
	session.PUT("/users/me", middleware.RequireTenantContext(), rt.Auth.UpdateMe)

	r.POST("/auth/logout-all", rt.JWT.WithJWT(), rt.Casbin.Enforce(), rt.Auth.LogoutAll)
	r.POST("/admin/login", rt.Admin.Login)

	adm := r.Group("/admin").Use(rt.JWT.WithJWT(), rt.Casbin.Enforce())
	adm.GET("/profile", rt.Admin.Profile)
	adm.PUT("/profile", rt.Admin.UpdateProfile)
	adm.PUT("/change-password", rt.Admin.ChangePassword)
	adm.GET("/universities", rt.Admin.ListUniversities)
	adm.POST("/universities", rt.Admin.CreateUniversity)
	adm.GET("/universities/:id", rt.Admin.GetUniversity)
	adm.PUT("/universities/:id", rt.Admin.UpdateUniversity)
	adm.DELETE("/universities/:id", rt.Admin.DeleteUniversity)
	adm.PATCH("/universities/:id/subscription", rt.Admin.UpdateSubscription)
	adm.GET("/users", rt.Admin.ListUsers)
	adm.GET("/university/:universityId/users", rt.Admin.UniversityUsers)
	adm.GET("/university/:universityId/stats", rt.Admin.UniversityStats)
	adm.GET("/policies", rt.Policy.List)
	adm.POST("/policies", rt.Policy.Add)
	adm.DELETE("/policies", rt.Policy.Remove)

	return r
}
