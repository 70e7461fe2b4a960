package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "goblog/internal/app"
	"goblog/internal/bootstrap"
	"goblog/internal/repository"
	"goblog/internal/transport/http/handler"
	"goblog/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.Static("/web", "web")
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/register", "web/register.html")
	router.StaticFile("/post", "web/post.html")
	router.StaticFile("/compose", "web/compose.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)
	activityRepo := repository.NewActivityRepository(app.MySQL)
	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireHour)*time.Hour,
	)
	postService := appsvc.NewPostService(postRepo, activityRepo, app.ActivityPublisher)
	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	// reads are public, mutations require a bearer token
	postGroup := v1.Group("/posts")
	postGroup.GET("", postHandler.List)
	postGroup.GET("/:id", postHandler.GetByID)
	postGroup.POST("", middleware.AuthJWT(app.Config.Auth.JWTSecret), postHandler.Create)
	postGroup.PUT("/:id", middleware.AuthJWT(app.Config.Auth.JWTSecret), postHandler.Update)
	postGroup.DELETE("/:id", middleware.AuthJWT(app.Config.Auth.JWTSecret), postHandler.Delete)

	v1.GET("/activity", postHandler.RecentActivity)

	return router
}
