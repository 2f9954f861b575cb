package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/handler"
	"github.com/hahnmechanical/site/internal/middleware"
	"github.com/hahnmechanical/site/web"
	"go.uber.org/zap"
)

const sessionName = "hahn_session"

// ErrSessionSecretRequired 未提供会话密钥时返回。
var ErrSessionSecretRequired = errors.New("session secret is required")

// Options 描述路由层需要的配置。
type Options struct {
	SessionSecret string
	// TrustedProxies 为空时不信任任何代理，ClientIP 取连接的对端地址。
	TrustedProxies []string
	UploadDir      string
	UploadURLPath  string
	CORSOrigins    []string
	SecureCookies  bool
	Logger         *zap.Logger
	// FormLimiter 为空时使用默认限额：每 30 秒补充一次，突发 5 次。
	FormLimiter  *middleware.RateLimiter
	LoginLimiter *middleware.RateLimiter
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.SessionSecret == "" {
		return nil, ErrSessionSecretRequired
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	r.Use(middleware.Recovery(logger), middleware.Logger(logger), middleware.SecurityHeaders())

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 加载内嵌模板
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/assets", web.Static())
	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	uploadURL := "/" + strings.Trim(opts.UploadURLPath, "/")
	if uploadURL == "/" {
		uploadURL = "/static/uploads"
	}
	r.Static(uploadURL, uploadDir)
	if uploadURL != "/uploads" {
		r.Static("/uploads", uploadDir)
	}

	formLimiter := opts.FormLimiter
	if formLimiter == nil {
		formLimiter = middleware.NewRateLimiter(30*time.Second, 5)
	}
	loginLimiter := opts.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.NewRateLimiter(12*time.Second, 5)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	// 前台页面
	r.GET("/", api.ShowHome)
	r.GET("/services", api.ShowServices)
	r.GET("/gallery", api.ShowGallery)
	r.GET("/gallery/:id", api.ShowGalleryPhoto)
	r.GET("/testimonials", api.ShowTestimonials)
	r.GET("/contact", api.ShowContact)
	r.POST("/contact", formLimiter.Middleware(), api.SubmitContact)
	r.GET("/service-inquiry", api.ShowServiceInquiry)
	r.POST("/service-inquiry", formLimiter.Middleware(), api.SubmitServiceInquiry)

	// 后台管理路由
	admin := r.Group("/admin")
	admin.Use(middleware.NoIndex())
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", loginLimiter.Middleware(), api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/gallery", api.ListGalleryImages)
				apiGroup.POST("/gallery", api.CreateGalleryImage)
				apiGroup.DELETE("/gallery/:id", api.DeleteGalleryImage)

				apiGroup.GET("/testimonials", api.ListTestimonials)
				apiGroup.POST("/testimonials", api.CreateTestimonial)
				apiGroup.PATCH("/testimonials/:id", api.UpdateTestimonialPublished)
				apiGroup.DELETE("/testimonials/:id", api.DeleteTestimonial)

				apiGroup.GET("/settings", api.GetSiteSettings)
				apiGroup.PUT("/settings", api.UpdateSiteSettings)

				apiGroup.GET("/inquiries", api.ListInquiries)
				apiGroup.POST("/upload", api.UploadImage)
			}
		}
	}

	r.NoRoute(api.NotFound)

	return r, nil
}
