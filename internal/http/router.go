package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado-api/internal/domain"
	"mercado-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	adminH *AdminHandler,
	productH *ProductHandler,
	aiH *AIHandler,
	jwtSvc *service.JWTService,
	versions EpochChecker,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is working!"})
	})

	authRequired := JWTAuthMiddleware(jwtSvc, versions)
	adminOnly := RequireRole(domain.RoleAdmin)
	sellerOnly := RequireRole(domain.RoleSeller)

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)
	auth.GET("/generate-otp", authH.GenerateOTP)
	auth.POST("/verify-otp", authH.VerifyOTP)

	auth.POST("/generate-token", authRequired, authH.GenerateToken)
	auth.GET("/users", authRequired, adminH.ListUsers)
	auth.POST("/ban-user", authRequired, adminOnly, adminH.BanUser)
	auth.POST("/unban-user", authRequired, adminOnly, adminH.UnbanUser)
	auth.GET("/banned-users", authRequired, adminOnly, adminH.BannedUsers)
	auth.POST("/create-admin", authRequired, adminOnly, adminH.CreateAdmin)
	auth.GET("/profile", authRequired, authH.Profile)
	auth.POST("/update-profile", authRequired, authH.UpdateProfile)

	api := r.Group("/api")
	api.GET("/products", productH.List)
	api.GET("/products/:id", productH.GetByID)
	api.POST("/products", authRequired, sellerOnly, productH.Create)
	api.PUT("/products/:id", authRequired, sellerOnly, productH.Update)
	api.DELETE("/products/:id", authRequired, sellerOnly, productH.Delete)

	api.POST("/ai/fashion/recommend", aiH.FashionRecommend)
	api.POST("/ai/sales/forecast", aiH.SalesForecast)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
