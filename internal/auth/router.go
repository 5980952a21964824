package auth

import (
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller *Controller
	jwt        config.JWTConfig
}

func NewRouter(controller *Controller, jwtCfg config.JWTConfig) *Router {
	return &Router{
		controller: controller,
		jwt:        jwtCfg,
	}
}

// SetupRoutes registers all auth routes
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", authRouter.controller.Signup)
		auth.POST("/signin", authRouter.controller.Signin)
		auth.GET("/verify-email", authRouter.controller.VerifyEmail)
		auth.POST("/refresh", authRouter.controller.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.JWTAuth(authRouter.jwt))
		{
			protected.GET("/me", authRouter.controller.GetMe)
		}
	}
}
