package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/service"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type siteSettingsRequest struct {
	TestimonialsEnabled *bool `json:"testimonials_enabled"`
}

func siteSettingsPayload(settings service.SiteSettings) gin.H {
	return gin.H{
		"testimonials_enabled": settings.TestimonialsEnabled,
	}
}

// GetSiteSettings 返回当前站点设置。
func (a *API) GetSiteSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": siteSettingsPayload(settings)})
}

// UpdateSiteSettings 保存站点设置，记录不存在时自动创建。
func (a *API) UpdateSiteSettings(c *gin.Context) {
	var payload siteSettingsRequest
	if !bindJSON(c, &payload, "Invalid request body") {
		return
	}
	if payload.TestimonialsEnabled == nil {
		respondError(c, http.StatusBadRequest, "testimonials_enabled is required")
		return
	}

	settings, err := a.settings.UpdateSettings(service.SiteSettingsInput{
		TestimonialsEnabled: *payload.TestimonialsEnabled,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings saved",
		"settings": siteSettingsPayload(settings),
	})
}
