package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/hahnmechanical/site/internal/db"
	"github.com/hahnmechanical/site/internal/view"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	recentInquiryLimit = 20
)

var dashboardTabs = []string{"gallery", "testimonials", "settings", "inquiries"}

// ShowLoginPage 渲染登录页面，已登录时直接进入后台
func (a *API) ShowLoginPage(c *gin.Context) {
	if sessions.Default(c).Get(sessionUserIDKey) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"title": "Admin Login",
	})
}

// Login 校验账号密码并写入会话
func (a *API) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	user, err := db.Authenticate(a.db, username, password)
	if err != nil {
		if !errors.Is(err, db.ErrInvalidCredentials) {
			a.logger.Error("admin login failed", zap.Error(err))
		}
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"title":    "Admin Login",
			"username": username,
			"error":    "Invalid username or password",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.logger.Error("save admin session failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "admin_login.html", gin.H{
			"title": "Admin Login",
			"error": "Could not start a session, please try again",
		})
		return
	}

	a.logger.Info("admin signed in", zap.String("username", user.Username))
	c.Redirect(http.StatusFound, "/admin")
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.logger.Warn("clear admin session failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板，按 tab 展示对应的管理模块
func (a *API) ShowDashboard(c *gin.Context) {
	tab := strings.ToLower(strings.TrimSpace(c.DefaultQuery("tab", "gallery")))
	if !isDashboardTab(tab) {
		tab = "gallery"
	}

	data := gin.H{
		"title":      "Dashboard",
		"tab":        tab,
		"tabs":       dashboardTabs,
		"username":   sessions.Default(c).Get(sessionUsernameKey),
		"categories": view.CategoryOptions(),
	}

	var loadErr error
	switch tab {
	case "gallery":
		items, err := a.galleries.ListAll()
		data["galleryItems"] = toGalleryViews(items)
		loadErr = err
	case "testimonials":
		items, err := a.testimonials.List(true)
		data["testimonials"] = items
		loadErr = err
	case "settings":
		settings, err := a.settings.GetSettings()
		data["settings"] = settings
		loadErr = err
	case "inquiries":
		items, err := a.contacts.ListRecent(recentInquiryLimit)
		data["inquiries"] = items
		loadErr = err
	}

	if total, err := a.galleries.Count(); err == nil {
		data["galleryCount"] = total
	}
	if total, err := a.contacts.Count(); err == nil {
		data["inquiryCount"] = total
	}

	status := http.StatusOK
	if loadErr != nil {
		a.logger.Error("load dashboard failed", zap.String("tab", tab), zap.Error(loadErr))
		data["error"] = "Failed to load data, please refresh"
		status = http.StatusInternalServerError
	}

	c.HTML(status, "admin.html", data)
}

// ListInquiries 返回最近的访客留言（只读）
func (a *API) ListInquiries(c *gin.Context) {
	items, err := a.contacts.ListRecent(recentInquiryLimit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load inquiries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// AuthRequired 校验后台会话；接口请求返回 401，页面请求跳转登录页
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			if isAPIRequest(c) {
				respondError(c, http.StatusUnauthorized, "Authentication required")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func isDashboardTab(tab string) bool {
	for _, candidate := range dashboardTabs {
		if candidate == tab {
			return true
		}
	}
	return false
}
