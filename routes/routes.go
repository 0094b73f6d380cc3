package routes

import (
	"net/http"
	"strings"
	"time"

	"socialapi/handlers"
	"socialapi/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Handler     *handlers.Handler
	Tokens      middleware.TokenVerifier
	Log         *logrus.Logger
	CORSOrigins []string
	AuthLimiter *middleware.IPRateLimiter
	// WebSocket is mounted at /ws when set.
	WebSocket http.HandlerFunc
}

func Setup(o Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(o.Log), middleware.Recovery(o.Log))

	origins := o.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.TokenHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := o.Handler
	auth := middleware.Auth(o.Tokens)
	limit := func(c *gin.Context) { c.Next() }
	if o.AuthLimiter != nil {
		limit = middleware.RateLimit(o.AuthLimiter)
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API running")
	})

	api := router.Group("/api")
	api.GET("/health", h.Health)

	api.POST("/users", limit, h.Register)

	api.POST("/auth", limit, h.Login)
	api.GET("/auth", auth, h.Me)

	profile := api.Group("/profile")
	profile.GET("/me", auth, h.GetMyProfile)
	profile.POST("", auth, h.UpsertProfile)
	profile.GET("", h.ListProfiles)
	profile.GET("/user/:user_id", middleware.CheckObjectID("user_id"), h.GetProfileByUser)
	profile.DELETE("", auth, h.DeleteAccount)
	profile.PUT("/education", auth, h.AddEducation)
	profile.DELETE("/education/:edu_id", auth, middleware.CheckObjectID("edu_id"), h.DeleteEducation)

	posts := api.Group("/posts")
	posts.POST("", auth, h.CreatePost)
	posts.GET("", h.ListPosts)
	posts.GET("/:post_id", middleware.CheckObjectID("post_id"), h.GetPost)
	posts.DELETE("/:post_id", auth, middleware.CheckObjectID("post_id"), h.DeletePost)
	posts.PUT("/like/:post_id", auth, middleware.CheckObjectID("post_id"), h.LikePost)
	posts.DELETE("/like/:post_id", auth, middleware.CheckObjectID("post_id"), h.UnlikePost)
	posts.POST("/comment/:post_id", auth, middleware.CheckObjectID("post_id"), h.AddComment)
	posts.DELETE("/comment/:post_id/:comment_id", auth, middleware.CheckObjectID("post_id", "comment_id"), h.DeleteComment)
	posts.PUT("/comment/like/:post_id/:comment_id", auth, middleware.CheckObjectID("post_id", "comment_id"), h.LikeComment)
	posts.DELETE("/comment/like/:post_id/:comment_id", auth, middleware.CheckObjectID("post_id", "comment_id"), h.UnlikeComment)

	media := api.Group("/media", auth)
	media.POST("", h.UploadMedia)
	media.GET("", h.ListMedia)
	media.DELETE("/:media_id", middleware.CheckObjectID("media_id"), h.DeleteMedia)

	api.GET("/push/vapid-public-key", h.VapidPublicKey)
	api.POST("/push/subscribe", auth, h.SubscribePush)

	if o.WebSocket != nil {
		router.GET("/ws", gin.WrapF(o.WebSocket))
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"msg": "Endpoint not found"})
			return
		}
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}
