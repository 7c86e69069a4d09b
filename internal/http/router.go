package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nutricare/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	userH *UserHandler,
	catalogH *CatalogHandler,
	feedbackH *FeedbackHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)
	auth.POST("/password/forgot", authH.ForgotPassword)
	auth.POST("/password/verify", authH.VerifyResetCode)
	auth.POST("/password/reset", authH.ResetPassword)

	diseases := r.Group("/diseases")
	diseases.GET("", catalogH.ListDiseases)
	diseases.GET("/:id", catalogH.GetDisease)
	diseases.GET("/:id/meals", catalogH.ListMeals)

	r.GET("/faqs", feedbackH.ListFAQs)

	me := r.Group("/users/me", JWTAuthMiddleware(jwtSvc))
	me.GET("", userH.Me)
	me.PATCH("", userH.UpdateMe)
	me.POST("/password/request", userH.RequestPasswordChange)
	me.POST("/password", userH.ChangePassword)
	me.GET("/settings", userH.GetSettings)
	me.PUT("/settings", userH.UpdateSettings)

	feedback := r.Group("/feedback", JWTAuthMiddleware(jwtSvc))
	feedback.POST("", feedbackH.Create)
	feedback.GET("", feedbackH.ListMine)

	admin := r.Group("/admin", JWTAuthMiddleware(jwtSvc), AdminOnlyMiddleware())
	admin.GET("/stats", feedbackH.Stats)
	admin.GET("/feedback", feedbackH.ListAll)
	admin.POST("/feedback/:id/reply", feedbackH.Reply)
	admin.POST("/diseases", catalogH.CreateDisease)
	admin.PUT("/diseases/:id", catalogH.UpdateDisease)
	admin.DELETE("/diseases/:id", catalogH.DeleteDisease)
	admin.POST("/meals", catalogH.CreateMeal)
	admin.PUT("/meals/:id", catalogH.UpdateMeal)
	admin.DELETE("/meals/:id", catalogH.DeleteMeal)

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
