package handler

import (
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/config"
	"github.com/hahnmechanical/site/internal/mail"
	"github.com/hahnmechanical/site/internal/service"
	"github.com/hahnmechanical/site/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	galleries    *service.GalleryService
	testimonials *service.TestimonialService
	settings     *service.SiteSettingService
	contacts     *service.ContactService
	uploader     *storage.Uploader
	business     config.BusinessInfo
	baseURL      string
	logger       *zap.Logger
}

// Options 汇总 NewAPI 的可选依赖，零值时使用安全的默认实现。
type Options struct {
	Uploader    *storage.Uploader
	Mailer      mail.Sender
	NotifyTo    string
	Business    config.BusinessInfo
	SiteBaseURL string
	Logger      *zap.Logger
}

type siteViewModel struct {
	Name      string
	Phone     string
	PhoneHref string
	Email     string
	License   string
	BaseURL   string
	Settings  service.SiteSettings
}

type navItem struct {
	Label  string
	Path   string
	Active bool
}

const siteSettingsContextKey = "__site_settings"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	uploader := opts.Uploader
	if uploader == nil {
		uploader = storage.NewUploader(storage.NewLocalStore("web/static/uploads", "/static/uploads"), 0, logger)
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = mail.NewLogSender(logger)
	}

	business := opts.Business
	if business.Name == "" {
		business.Name = "Hahn Mechanical"
	}

	return &API{
		db:           gdb,
		galleries:    service.NewGalleryService(gdb),
		testimonials: service.NewTestimonialService(gdb),
		settings:     service.NewSiteSettingService(gdb),
		contacts:     service.NewContactService(gdb, mailer, opts.NotifyTo, business.Name, logger),
		uploader:     uploader,
		business:     business,
		baseURL:      strings.TrimRight(opts.SiteBaseURL, "/"),
		logger:       logger,
	}
}

func (a *API) siteSettings(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteSettingsContextKey); exists {
		if view, ok := cached.(siteViewModel); ok {
			return view
		}
	}

	settings, err := a.settings.Cached()
	if err != nil {
		// 读取失败时按默认值渲染，导航中不显示评价
		c.Error(err)
		a.logger.Warn("load site settings failed", zap.Error(err))
	}

	view := siteViewModel{
		Name:      a.business.Name,
		Phone:     a.business.Phone,
		PhoneHref: phoneHref(a.business.Phone),
		Email:     a.business.Email,
		License:   a.business.License,
		BaseURL:   a.baseURL,
		Settings:  settings,
	}

	c.Set(siteSettingsContextKey, view)
	return view
}

func (a *API) navigation(c *gin.Context, view siteViewModel) []navItem {
	items := []navItem{
		{Label: "Home", Path: "/"},
		{Label: "Services", Path: "/services"},
		{Label: "Gallery", Path: "/gallery"},
	}
	if view.Settings.TestimonialsEnabled {
		items = append(items, navItem{Label: "Testimonials", Path: "/testimonials"})
	}
	items = append(items, navItem{Label: "Contact", Path: "/contact"})

	current := c.Request.URL.Path
	for i := range items {
		if items[i].Path == "/" {
			items[i].Active = current == "/"
			continue
		}
		items[i].Active = current == items[i].Path || strings.HasPrefix(current, items[i].Path+"/")
	}
	return items
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	view := a.siteSettings(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":      view.Name,
			"phone":     view.Phone,
			"phoneHref": view.PhoneHref,
			"email":     view.Email,
			"license":   view.License,
			"baseUrl":   view.BaseURL,
		}
	}
	if _, exists := payload["nav"]; !exists {
		payload["nav"] = a.navigation(c, view)
	}
	if _, exists := payload["testimonialsEnabled"]; !exists {
		payload["testimonialsEnabled"] = view.Settings.TestimonialsEnabled
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}
	if _, exists := payload["canonical"]; !exists && view.BaseURL != "" {
		payload["canonical"] = view.BaseURL + c.Request.URL.Path
	}

	c.HTML(status, template, payload)
}

// phoneHref 将展示用号码转换为 tel: 链接，默认补全美国区号前缀。
func phoneHref(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = "1" + digits
	}
	return "tel:+" + digits
}
